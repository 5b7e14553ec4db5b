package writer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-platform/vantage/internal/bus"
	"github.com/vantage-platform/vantage/internal/model"
	"github.com/vantage-platform/vantage/internal/store"
	"github.com/vantage-platform/vantage/pkg/observability/noop"
)

type fakeUnitOfWork struct {
	fail bool
}

func (f *fakeUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx store.DBTX) error) error {
	if f.fail {
		return assert.AnError
	}
	return fn(ctx, nil)
}

type fakeRepository struct {
	store.Repository
	uow           *fakeUnitOfWork
	insertedCount int
	tracesUpserted int
	spansUpserted  int
}

func (f *fakeRepository) UnitOfWork() store.UnitOfWork { return f.uow }

func (f *fakeRepository) InsertMetricsTx(ctx context.Context, tx store.DBTX, metrics []model.Metric) (int, error) {
	f.insertedCount += len(metrics)
	return len(metrics), nil
}

func (f *fakeRepository) UpsertTraceTx(ctx context.Context, tx store.DBTX, t model.Trace) error {
	f.tracesUpserted++
	return nil
}

func (f *fakeRepository) UpsertSpanTx(ctx context.Context, tx store.DBTX, s model.Span) error {
	f.spansUpserted++
	return nil
}

func newTestWriter(repo *fakeRepository) *Writer {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.MaxRetries = 1
	return &Writer{
		cfg:            cfg,
		repo:           repo,
		o11y:           noop.New(),
		dlq:            newDeadLetterQueue(noop.New().Logger()),
		batchesWritten: noop.New().Metrics().Counter("x", "x"),
		recordsWritten: noop.New().Metrics().Counter("x", "x"),
		dlqDepth:       noop.New().Metrics().Gauge("x", "x"),
		flushDuration:  noop.New().Metrics().Histogram("x", "x", nil),
	}
}

func TestPersist_InsertsMetricsAndDerivesSpan(t *testing.T) {
	repo := &fakeRepository{uow: &fakeUnitOfWork{}}
	w := newTestWriter(repo)

	metrics := []model.Metric{
		{
			Timestamp: time.Now(), ServiceName: "checkout", MetricName: "http.request_duration",
			Kind: model.KindHistogram, Value: 42, Endpoint: "/cart", Method: "POST",
			StatusCode: 200, DurationMs: 42, TraceID: "t1", SpanID: "s1",
		},
		{
			Timestamp: time.Now(), ServiceName: "checkout", MetricName: "queue.depth",
			Kind: model.KindGauge, Value: 3,
		},
	}

	err := w.persist(context.Background(), nil, metrics)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.insertedCount)
	assert.Equal(t, 1, repo.tracesUpserted)
	assert.Equal(t, 1, repo.spansUpserted)
}

func TestProcessBatch_DecodeErrorsGoStraightToDLQ(t *testing.T) {
	repo := &fakeRepository{uow: &fakeUnitOfWork{}}
	w := newTestWriter(repo)

	records := []bus.Record{
		{RawValue: []byte("not json"), DecodeErr: errors.New("malformed payload")},
	}

	err := w.processBatch(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 0, repo.insertedCount)
	assert.Equal(t, 1, w.dlq.Len())
}

func TestRetryOldestDeadLetter_NoEntriesIsNoop(t *testing.T) {
	repo := &fakeRepository{uow: &fakeUnitOfWork{}}
	w := newTestWriter(repo)
	w.retryOldestDeadLetter(context.Background())
	assert.Equal(t, 0, repo.insertedCount)
}
