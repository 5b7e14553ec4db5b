// Package writer is C7: the stream-processing worker that drains the
// log-bus consumer group, persists decoded metrics (and the trace/span
// records they imply) through a single UnitOfWork per batch, and
// commits consumer offsets only after that transaction succeeds --
// giving the pipeline at-least-once delivery.
package writer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vantage-platform/vantage/internal/bus"
	"github.com/vantage-platform/vantage/internal/model"
	"github.com/vantage-platform/vantage/internal/store"
	"github.com/vantage-platform/vantage/pkg/observability"
)

// Config tunes batching and retry behavior.
type Config struct {
	PollTimeout  time.Duration
	MaxBatchSize int
	MaxRetries   uint64
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollTimeout:  time.Second,
		MaxBatchSize: 500,
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
	}
}

// Writer is the C7 worker loop.
type Writer struct {
	cfg      Config
	consumer *bus.Consumer
	repo     store.Repository
	o11y     observability.Observability
	dlq      *deadLetterQueue

	batchesWritten observability.Counter
	recordsWritten observability.Counter
	dlqDepth       observability.Gauge
	flushDuration  observability.Histogram
}

func New(consumer *bus.Consumer, repo store.Repository, o11y observability.Observability, cfg Config) *Writer {
	metrics := o11y.Metrics()
	return &Writer{
		cfg:            cfg,
		consumer:       consumer,
		repo:           repo,
		o11y:           o11y,
		dlq:            newDeadLetterQueue(o11y.Logger()),
		batchesWritten: metrics.Counter("writer_batches_written_total", "batches committed to the store"),
		recordsWritten: metrics.Counter("writer_records_written_total", "metric records committed to the store"),
		dlqDepth:       metrics.Gauge("writer_dlq_depth", "batches currently parked in the dead-letter queue"),
		flushDuration:  metrics.Histogram("writer_flush_duration_seconds", "time spent flushing a batch", []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2}),
	}
}

// Run polls and flushes until ctx is cancelled.
func (w *Writer) Run(ctx context.Context) error {
	w.o11y.Logger().Info(ctx, "writer starting")

	for {
		select {
		case <-ctx.Done():
			w.o11y.Logger().Info(ctx, "writer stopping")
			return ctx.Err()
		default:
		}

		records, err := w.consumer.Poll(ctx, w.cfg.PollTimeout, w.cfg.MaxBatchSize)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.o11y.Logger().Warn(ctx, "poll failed", observability.Error(err))
			continue
		}

		if len(records) == 0 {
			w.retryOldestDeadLetter(ctx)
			continue
		}

		if err := w.processBatch(ctx, records); err != nil {
			w.o11y.Logger().Error(ctx, "batch processing failed permanently, parking in DLQ", observability.Error(err))
			continue
		}

		if err := w.consumer.Commit(ctx, records); err != nil {
			w.o11y.Logger().Error(ctx, "commit failed, batch will be redelivered", observability.Error(err))
		}
	}
}

// processBatch decodes, validates and persists one poll's worth of
// records inside a single transaction. Records that failed decoding
// are parked in the DLQ immediately; well-formed records are retried
// with exponential backoff before falling back to the DLQ.
func (w *Writer) processBatch(ctx context.Context, records []bus.Record) error {
	start := time.Now()
	defer func() { w.flushDuration.Observe(time.Since(start).Seconds()) }()

	var metrics []model.Metric
	var raw [][]byte

	for _, rec := range records {
		if rec.DecodeErr != nil {
			w.dlq.Push(deadLetter{RawValues: [][]byte{rec.RawValue}, FailedAt: time.Now(), LastError: rec.DecodeErr})
			w.dlqDepth.Set(float64(w.dlq.Len()))
			continue
		}
		metrics = append(metrics, rec.Metric)
		raw = append(raw, rec.RawValue)
	}

	if len(metrics) == 0 {
		return nil
	}

	op := func() error {
		return w.repo.UnitOfWork().Do(ctx, func(ctx context.Context, tx store.DBTX) error {
			return w.persist(ctx, tx, metrics)
		})
	}

	b := backoff.WithContext(backoff.WithMaxRetries(newExponentialBackoff(w.cfg), w.cfg.MaxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		w.dlq.Push(deadLetter{RawValues: raw, FailedAt: time.Now(), LastError: err})
		w.dlqDepth.Set(float64(w.dlq.Len()))
		return err
	}

	w.batchesWritten.Inc()
	w.recordsWritten.Add(float64(len(metrics)))
	return nil
}

// persist inserts the batch of metrics and, for any metric carrying an
// HTTP facet plus trace/span identifiers, upserts the trace and span it
// represents -- each metric sample doubles as that request's span
// summary since the bus carries no independent span record.
func (w *Writer) persist(ctx context.Context, tx store.DBTX, metrics []model.Metric) error {
	if _, err := w.repo.InsertMetricsTx(ctx, tx, metrics); err != nil {
		return err
	}

	for _, m := range metrics {
		if m.TraceID == "" || m.SpanID == "" || m.Endpoint == "" {
			continue
		}

		endTime := m.Timestamp.Add(time.Duration(m.DurationMs) * time.Millisecond)
		status := model.StatusOK
		if m.StatusCode >= 500 {
			status = model.StatusError
		}
		durationMs := m.DurationMs

		if err := w.repo.UpsertTraceTx(ctx, tx, model.Trace{
			TraceID:     m.TraceID,
			ServiceName: m.ServiceName,
			StartTime:   m.Timestamp,
			EndTime:     &endTime,
			DurationMs:  &durationMs,
			Status:      status,
			ErrorFlag:   status == model.StatusError,
		}); err != nil {
			return err
		}

		if err := w.repo.UpsertSpanTx(ctx, tx, model.Span{
			SpanID:        m.SpanID,
			TraceID:       m.TraceID,
			ParentSpanID:  "",
			ServiceName:   m.ServiceName,
			OperationName: m.Method + " " + m.Endpoint,
			StartTime:     m.Timestamp,
			EndTime:       &endTime,
			DurationMs:    durationMs,
			Status:        status,
			ErrorFlag:     status == model.StatusError,
		}); err != nil {
			return err
		}
	}

	return nil
}

// retryOldestDeadLetter gives the single longest-waiting failed batch
// one more attempt each time the consumer has nothing new to poll.
func (w *Writer) retryOldestDeadLetter(ctx context.Context) {
	entry, ok := w.dlq.PopOldest()
	if !ok {
		return
	}

	var metrics []model.Metric
	for _, raw := range entry.RawValues {
		m, err := bus.Decode(raw)
		if err != nil {
			continue
		}
		metrics = append(metrics, m)
	}
	if len(metrics) == 0 {
		return
	}

	err := w.repo.UnitOfWork().Do(ctx, func(ctx context.Context, tx store.DBTX) error {
		return w.persist(ctx, tx, metrics)
	})
	if err != nil {
		entry.RetryCount++
		entry.LastError = err
		entry.FailedAt = time.Now()
		w.dlq.Push(entry)
		return
	}

	w.o11y.Logger().Info(ctx, "dead-letter batch recovered",
		observability.Int("records", len(metrics)),
		observability.Int("prior_retries", entry.RetryCount),
	)
	w.batchesWritten.Inc()
	w.recordsWritten.Add(float64(len(metrics)))
	w.dlqDepth.Set(float64(w.dlq.Len()))
}

func newExponentialBackoff(cfg Config) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialDelay
	b.MaxInterval = cfg.MaxDelay
	b.MaxElapsedTime = 0 // bounded externally by MaxRetries
	return b
}
