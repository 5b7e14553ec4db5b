package store

import (
	"context"
	"time"

	"github.com/vantage-platform/vantage/internal/model"
)

// ServiceMetricKey identifies a (service, metric) pair.
type ServiceMetricKey struct {
	ServiceName string
	MetricName  string
}

// QueryResult is the shaped result of a raw SQL execution, used by the
// VQL executor (C12) and the ad-hoc query handlers.
type QueryResult struct {
	Columns  []string
	Rows     [][]any
	RowCount int
	Elapsed  time.Duration
}

// Repository is the store contract consumed by every analytical
// subsystem. The Postgres implementation lives in postgres_repository.go;
// tests exercise it through an in-memory fake (repository_fake_test.go
// style fakes live beside each consumer package).
type Repository interface {
	// Writer-side (C7).
	InsertMetricsTx(ctx context.Context, tx DBTX, metrics []model.Metric) (inserted int, err error)
	UpsertTraceTx(ctx context.Context, tx DBTX, trace model.Trace) error
	UpsertSpanTx(ctx context.Context, tx DBTX, span model.Span) error

	// Downsampling (C9) and alerting (C10) read/replace raw rows.
	DistinctRawPairs(ctx context.Context, from, to time.Time) ([]ServiceMetricKey, error)
	SelectRawMetrics(ctx context.Context, service, metricName string, from, to time.Time) ([]model.Metric, error)
	ReplaceWindowTx(ctx context.Context, tx DBTX, key ServiceMetricKey, from, to time.Time, aggregates []model.Metric) error
	CountQueryLogSince(ctx context.Context, service, metricName string, since time.Time) (int, error)

	// Alerts (C10).
	GetFiringAlert(ctx context.Context, service, metricName string) (*model.Alert, error)
	UpsertAlert(ctx context.Context, alert model.Alert) error
	ListAlerts(ctx context.Context, activeOnly bool) ([]model.Alert, error)

	// VQL + direct reads (C11/C12/C14).
	ExecuteQuery(ctx context.Context, query string, args []any) (QueryResult, error)
	AppendQueryLog(ctx context.Context, entry model.QueryLog) error
	ListServices(ctx context.Context) ([]string, error)
	GetTimeseries(ctx context.Context, service string, from, to time.Time) ([]model.Metric, error)

	// Traces (C14).
	GetTrace(ctx context.Context, traceID string) (*model.Trace, []model.Span, error)
	SearchTraces(ctx context.Context, service string, from, to time.Time, limit int) ([]model.Trace, error)

	// Health/analytics (C13) raw inputs.
	GetRequestStats(ctx context.Context, service string, from, to time.Time) (requests, errs int, p95Ms float64, err error)

	UnitOfWork() UnitOfWork
}
