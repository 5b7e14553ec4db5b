package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vantage-platform/vantage/internal/model"
)

// PostgresRepository implements Repository against the schema described
// in §3, using raw SQL over database/sql (the pgx stdlib driver), the
// same style as the teacher's pkg/database repositories: no ORM, explicit
// column lists, context-scoped everything.
type PostgresRepository struct {
	db  *sql.DB
	uow UnitOfWork
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, uow: NewUnitOfWork(db)}
}

func (r *PostgresRepository) UnitOfWork() UnitOfWork { return r.uow }

func (r *PostgresRepository) InsertMetricsTx(ctx context.Context, tx DBTX, metrics []model.Metric) (int, error) {
	if len(metrics) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO metrics (
		timestamp, service_name, metric_name, kind, value, tags,
		endpoint, method, status_code, duration_ms, trace_id, span_id,
		aggregated, resolution_minutes, min, max, p50, p95, p99,
		sample_count, error_count
	) VALUES `)

	args := make([]any, 0, len(metrics)*21)
	for i, m := range metrics {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 21
		sb.WriteString("(")
		for j := 0; j < 21; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", base+j+1)
		}
		sb.WriteString(")")

		var endpoint, method, traceID, spanID *string
		var statusCode *int
		var durationMs *float64
		if m.Endpoint != "" {
			endpoint = &m.Endpoint
		}
		if m.Method != "" {
			method = &m.Method
		}
		if m.Endpoint != "" || m.Method != "" {
			statusCode = &m.StatusCode
			durationMs = &m.DurationMs
		}
		if m.TraceID != "" {
			traceID = &m.TraceID
		}
		if m.SpanID != "" {
			spanID = &m.SpanID
		}

		var resolutionMinutes *int
		var min, max, p50, p95, p99 *float64
		var sampleCount, errorCount *int
		if m.Downsample != nil {
			resolutionMinutes = &m.Downsample.ResolutionMinutes
			min = &m.Downsample.Min
			max = &m.Downsample.Max
			p50 = &m.Downsample.P50
			p95 = &m.Downsample.P95
			p99 = &m.Downsample.P99
			sampleCount = &m.Downsample.SampleCount
			errorCount = &m.Downsample.ErrorCount
		}

		args = append(args,
			m.Timestamp, m.ServiceName, m.MetricName, string(m.Kind), m.Value, m.Tags,
			endpoint, method, statusCode, durationMs, traceID, spanID,
			m.Aggregated, resolutionMinutes, min, max, p50, p95, p99,
			sampleCount, errorCount,
		)
	}

	res, err := tx.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("store: insert metrics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: insert metrics rows affected: %w", err)
	}
	return int(n), nil
}

func (r *PostgresRepository) UpsertTraceTx(ctx context.Context, tx DBTX, t model.Trace) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO traces (trace_id, service_name, start_time, end_time, duration_ms, status, error_flag)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (trace_id) DO UPDATE SET
			end_time = GREATEST(traces.end_time, EXCLUDED.end_time),
			duration_ms = EXTRACT(EPOCH FROM (GREATEST(traces.end_time, EXCLUDED.end_time) - traces.start_time)) * 1000,
			status = CASE WHEN traces.status = 'error' OR EXCLUDED.status = 'error' THEN 'error' ELSE 'ok' END,
			error_flag = traces.error_flag OR EXCLUDED.error_flag
	`, t.TraceID, t.ServiceName, t.StartTime, t.EndTime, t.DurationMs, string(t.Status), t.ErrorFlag)
	if err != nil {
		return fmt.Errorf("store: upsert trace: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpsertSpanTx(ctx context.Context, tx DBTX, s model.Span) error {
	var parentID *string
	if s.ParentSpanID != "" {
		parentID = &s.ParentSpanID
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO spans (span_id, trace_id, parent_span_id, service_name, operation_name, start_time, end_time, duration_ms, status, error_flag)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (span_id) DO UPDATE SET
			end_time = EXCLUDED.end_time,
			duration_ms = EXCLUDED.duration_ms,
			status = EXCLUDED.status,
			error_flag = EXCLUDED.error_flag
	`, s.SpanID, s.TraceID, parentID, s.ServiceName, s.OperationName, s.StartTime, s.EndTime, s.DurationMs, string(s.Status), s.ErrorFlag)
	if err != nil {
		return fmt.Errorf("store: upsert span: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DistinctRawPairs(ctx context.Context, from, to time.Time) ([]ServiceMetricKey, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT service_name, metric_name FROM metrics
		WHERE aggregated = false AND timestamp >= $1 AND timestamp < $2
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("store: distinct raw pairs: %w", err)
	}
	defer rows.Close()

	var out []ServiceMetricKey
	for rows.Next() {
		var k ServiceMetricKey
		if err := rows.Scan(&k.ServiceName, &k.MetricName); err != nil {
			return nil, fmt.Errorf("store: scan raw pair: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SelectRawMetrics(ctx context.Context, service, metricName string, from, to time.Time) ([]model.Metric, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT timestamp, service_name, metric_name, kind, value, tags, trace_id, span_id
		FROM metrics
		WHERE aggregated = false AND service_name = $1 AND metric_name = $2
		  AND timestamp >= $3 AND timestamp < $4
		ORDER BY timestamp ASC
	`, service, metricName, from, to)
	if err != nil {
		return nil, fmt.Errorf("store: select raw metrics: %w", err)
	}
	defer rows.Close()

	var out []model.Metric
	for rows.Next() {
		var m model.Metric
		var kind string
		var traceID, spanID sql.NullString
		if err := rows.Scan(&m.Timestamp, &m.ServiceName, &m.MetricName, &kind, &m.Value, &m.Tags, &traceID, &spanID); err != nil {
			return nil, fmt.Errorf("store: scan raw metric: %w", err)
		}
		m.Kind = model.Kind(kind)
		m.TraceID = traceID.String
		m.SpanID = spanID.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// ReplaceWindowTx deletes the raw rows for key within [from, to) and
// inserts aggregates in their place, atomically, per §4.9's downsampling
// contract: the aggregate replaces the raw rows it was computed from.
func (r *PostgresRepository) ReplaceWindowTx(ctx context.Context, tx DBTX, key ServiceMetricKey, from, to time.Time, aggregates []model.Metric) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM metrics
		WHERE aggregated = false AND service_name = $1 AND metric_name = $2
		  AND timestamp >= $3 AND timestamp < $4
	`, key.ServiceName, key.MetricName, from, to)
	if err != nil {
		return fmt.Errorf("store: delete raw window: %w", err)
	}
	if _, err := r.InsertMetricsTx(ctx, tx, aggregates); err != nil {
		return fmt.Errorf("store: insert aggregates: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountQueryLogSince(ctx context.Context, service, metricName string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM query_log
		WHERE service_name = $1 AND metric_name = $2 AND timestamp >= $3
	`, service, metricName, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count query log: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) GetFiringAlert(ctx context.Context, service, metricName string) (*model.Alert, error) {
	a, err := scanAlert(r.db.QueryRowContext(ctx, `
		SELECT alert_id, service_name, metric_name, severity, status, message,
		       current_value, expected_min, expected_max, breach_count,
		       first_triggered, last_triggered, resolved_at
		FROM alerts
		WHERE service_name = $1 AND metric_name = $2 AND status = 'firing'
		ORDER BY first_triggered DESC LIMIT 1
	`, service, metricName))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get firing alert: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) UpsertAlert(ctx context.Context, a model.Alert) error {
	if a.AlertID == "" {
		a.AlertID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (alert_id, service_name, metric_name, severity, status, message,
			current_value, expected_min, expected_max, breach_count, first_triggered, last_triggered, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (alert_id) DO UPDATE SET
			severity = EXCLUDED.severity,
			status = EXCLUDED.status,
			message = EXCLUDED.message,
			current_value = EXCLUDED.current_value,
			expected_min = EXCLUDED.expected_min,
			expected_max = EXCLUDED.expected_max,
			breach_count = EXCLUDED.breach_count,
			last_triggered = EXCLUDED.last_triggered,
			resolved_at = EXCLUDED.resolved_at
	`, a.AlertID, a.ServiceName, a.MetricName, string(a.Severity), string(a.Status), a.Message,
		a.CurrentValue, a.ExpectedMin, a.ExpectedMax, a.BreachCount, a.FirstTriggered, a.LastTriggered, a.ResolvedAt)
	if err != nil {
		return fmt.Errorf("store: upsert alert: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListAlerts(ctx context.Context, activeOnly bool) ([]model.Alert, error) {
	query := `
		SELECT alert_id, service_name, metric_name, severity, status, message,
		       current_value, expected_min, expected_max, breach_count,
		       first_triggered, last_triggered, resolved_at
		FROM alerts`
	if activeOnly {
		query += ` WHERE status = 'firing'`
	}
	query += ` ORDER BY first_triggered DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list alerts: %w", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		a, err := scanAlertRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ExecuteQuery runs validator-approved SQL text with bound positional
// parameters and shapes the result into a generic column/row grid, for
// VQL (C12) and ad-hoc read endpoints.
func (r *PostgresRepository) ExecuteQuery(ctx context.Context, query string, args []any) (QueryResult, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return QueryResult{}, fmt.Errorf("store: execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return QueryResult{}, fmt.Errorf("store: columns: %w", err)
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return QueryResult{}, fmt.Errorf("store: scan row: %w", err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return QueryResult{}, err
	}

	return QueryResult{Columns: cols, Rows: out, RowCount: len(out), Elapsed: time.Since(start)}, nil
}

func (r *PostgresRepository) AppendQueryLog(ctx context.Context, entry model.QueryLog) error {
	if entry.QueryID == "" {
		entry.QueryID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO query_log (query_id, service_name, metric_name, timestamp, duration_ms, query_text, row_count, error, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.QueryID, entry.ServiceName, entry.MetricName, entry.Timestamp, entry.DurationMs,
		nullIfEmpty(entry.QueryText), entry.RowCount, nullIfEmpty(entry.Error), nullIfEmpty(entry.Source))
	if err != nil {
		return fmt.Errorf("store: append query log: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *PostgresRepository) ListServices(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT service_name FROM metrics ORDER BY service_name`)
	if err != nil {
		return nil, fmt.Errorf("store: list services: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetTimeseries(ctx context.Context, service string, from, to time.Time) ([]model.Metric, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT timestamp, service_name, metric_name, kind, value, tags, aggregated
		FROM metrics
		WHERE service_name = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp ASC
	`, service, from, to)
	if err != nil {
		return nil, fmt.Errorf("store: get timeseries: %w", err)
	}
	defer rows.Close()

	var out []model.Metric
	for rows.Next() {
		var m model.Metric
		var kind string
		if err := rows.Scan(&m.Timestamp, &m.ServiceName, &m.MetricName, &kind, &m.Value, &m.Tags, &m.Aggregated); err != nil {
			return nil, err
		}
		m.Kind = model.Kind(kind)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetTrace(ctx context.Context, traceID string) (*model.Trace, []model.Span, error) {
	var t model.Trace
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT trace_id, service_name, start_time, end_time, duration_ms, status, error_flag
		FROM traces WHERE trace_id = $1
	`, traceID).Scan(&t.TraceID, &t.ServiceName, &t.StartTime, &t.EndTime, &t.DurationMs, &status, &t.ErrorFlag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("store: get trace: %w", err)
	}
	t.Status = model.TraceStatus(status)

	rows, err := r.db.QueryContext(ctx, `
		SELECT span_id, trace_id, parent_span_id, service_name, operation_name, start_time, end_time, duration_ms, status, error_flag
		FROM spans WHERE trace_id = $1 ORDER BY start_time ASC
	`, traceID)
	if err != nil {
		return nil, nil, fmt.Errorf("store: get spans: %w", err)
	}
	defer rows.Close()

	var spans []model.Span
	for rows.Next() {
		var s model.Span
		var sStatus string
		var parentID sql.NullString
		if err := rows.Scan(&s.SpanID, &s.TraceID, &parentID, &s.ServiceName, &s.OperationName, &s.StartTime, &s.EndTime, &s.DurationMs, &sStatus, &s.ErrorFlag); err != nil {
			return nil, nil, err
		}
		s.ParentSpanID = parentID.String
		s.Status = model.TraceStatus(sStatus)
		spans = append(spans, s)
	}
	return &t, spans, rows.Err()
}

func (r *PostgresRepository) SearchTraces(ctx context.Context, service string, from, to time.Time, limit int) ([]model.Trace, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT trace_id, service_name, start_time, end_time, duration_ms, status, error_flag
		FROM traces
		WHERE ($1 = '' OR service_name = $1) AND start_time >= $2 AND start_time < $3
		ORDER BY start_time DESC LIMIT $4
	`, service, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search traces: %w", err)
	}
	defer rows.Close()

	var out []model.Trace
	for rows.Next() {
		var t model.Trace
		var status string
		if err := rows.Scan(&t.TraceID, &t.ServiceName, &t.StartTime, &t.EndTime, &t.DurationMs, &status, &t.ErrorFlag); err != nil {
			return nil, err
		}
		t.Status = model.TraceStatus(status)
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetRequestStats feeds the health score (C13): request volume, error
// volume and p95 latency for an http.request_duration style metric over
// the window.
func (r *PostgresRepository) GetRequestStats(ctx context.Context, service string, from, to time.Time) (int, int, float64, error) {
	var requests, errs sql.NullInt64
	var p95 sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status_code IS NOT NULL),
			COUNT(*) FILTER (WHERE status_code >= 500),
			percentile_cont(0.95) WITHIN GROUP (ORDER BY duration_ms)
		FROM metrics
		WHERE service_name = $1 AND timestamp >= $2 AND timestamp < $3 AND endpoint IS NOT NULL
	`, service, from, to).Scan(&requests, &errs, &p95)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("store: get request stats: %w", err)
	}
	return int(requests.Int64), int(errs.Int64), p95.Float64, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*model.Alert, error) {
	var a model.Alert
	var severity, status string
	var resolvedAt sql.NullTime
	err := row.Scan(&a.AlertID, &a.ServiceName, &a.MetricName, &severity, &status, &a.Message,
		&a.CurrentValue, &a.ExpectedMin, &a.ExpectedMax, &a.BreachCount,
		&a.FirstTriggered, &a.LastTriggered, &resolvedAt)
	if err != nil {
		return nil, err
	}
	a.Severity = model.Severity(severity)
	a.Status = model.AlertStatus(status)
	if resolvedAt.Valid {
		a.ResolvedAt = &resolvedAt.Time
	}
	return &a, nil
}

func scanAlertRows(rows *sql.Rows) (*model.Alert, error) {
	return scanAlert(rows)
}
