// Package downsample is C9: the periodic engine that coarsens aging raw
// metrics into resolution-bucketed aggregates, gated by an importance
// score so high-variance or frequently-queried series stay at full
// resolution longer than quiet ones. It runs as its own binary
// (cmd/downsampler) on a fixed ticker, the shape pkg/cron_worker uses
// for periodic work -- reused in spirit as a plain time.Ticker loop
// here since the cadence is a fixed interval, not a cron expression.
package downsample

import (
	"context"
	"time"

	"github.com/vantage-platform/vantage/internal/store"
	"github.com/vantage-platform/vantage/pkg/observability"
)

// DefaultInterval is the default cycle cadence per §4.8.
const DefaultInterval = 6 * time.Hour

// Engine owns one full downsampling cycle: walk every age tier, score
// each (service, metric) pair seen in that tier's window, and replace
// the window with aggregates when the score falls below the tier's
// cutoff.
type Engine struct {
	repo store.Repository
	o11y observability.Observability
	now  func() time.Time

	windowsProcessed observability.Counter
	windowsAggregated observability.Counter
	windowsFailed     observability.Counter
	cycleDuration     observability.Histogram
}

func New(repo store.Repository, o11y observability.Observability) *Engine {
	metrics := o11y.Metrics()
	return &Engine{
		repo: repo,
		o11y: o11y,
		now:  time.Now,
		windowsProcessed:  metrics.Counter("downsample_windows_processed_total", "service/metric windows evaluated"),
		windowsAggregated: metrics.Counter("downsample_windows_aggregated_total", "windows replaced with aggregates"),
		windowsFailed:     metrics.Counter("downsample_windows_failed_total", "windows whose replace transaction failed"),
		cycleDuration:     metrics.Histogram("downsample_cycle_duration_seconds", "time spent in one full downsampling cycle", []float64{1, 5, 10, 30, 60, 120, 300}),
	}
}

// Run ticks every interval until ctx is cancelled, running one full
// cycle per tick. The first cycle runs immediately rather than waiting
// for the first tick.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	e.runCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.runCycle(ctx)
		}
	}
}

func (e *Engine) runCycle(ctx context.Context) {
	start := e.now()
	defer func() { e.cycleDuration.Observe(time.Since(start).Seconds()) }()

	e.o11y.Logger().Info(ctx, "downsampling cycle starting")

	for _, age := range ages() {
		if err := e.processAge(ctx, age); err != nil {
			e.o11y.Logger().Error(ctx, "downsampling age tier failed",
				observability.Int("max_age_days", age), observability.Error(err))
		}
	}

	e.o11y.Logger().Info(ctx, "downsampling cycle complete")
}

func (e *Engine) processAge(ctx context.Context, ageDays int) error {
	now := e.now()
	to := now.AddDate(0, 0, -(ageDays - 1))
	from := now.AddDate(0, 0, -ageDays)

	pairs, err := e.repo.DistinctRawPairs(ctx, from, to)
	if err != nil {
		return err
	}

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.processWindow(ctx, pair, ageDays, from, to)
	}
	return nil
}

func (e *Engine) processWindow(ctx context.Context, pair store.ServiceMetricKey, ageDays int, from, to time.Time) {
	e.windowsProcessed.Inc()

	samples, err := e.repo.SelectRawMetrics(ctx, pair.ServiceName, pair.MetricName, from, to)
	if err != nil || len(samples) == 0 {
		return
	}

	queryCount, err := e.repo.CountQueryLogSince(ctx, pair.ServiceName, pair.MetricName, e.now().AddDate(0, 0, -7))
	if err != nil {
		queryCount = 0
	}

	score := importance(samples, queryCount)
	resolution := resolutionFor(ageDays, score)
	if resolution == 0 {
		return
	}

	aggregates := aggregate(samples, resolution)
	if len(aggregates) == 0 {
		return
	}

	err = e.repo.UnitOfWork().Do(ctx, func(ctx context.Context, tx store.DBTX) error {
		return e.repo.ReplaceWindowTx(ctx, tx, pair, from, to, aggregates)
	})
	if err != nil {
		e.windowsFailed.Inc()
		e.o11y.Logger().Warn(ctx, "window replace failed, raw rows left untouched",
			observability.String("service_name", pair.ServiceName),
			observability.String("metric_name", pair.MetricName),
			observability.Error(err),
		)
		return
	}

	e.windowsAggregated.Inc()
	e.o11y.Logger().Info(ctx, "window aggregated",
		observability.String("service_name", pair.ServiceName),
		observability.String("metric_name", pair.MetricName),
		observability.Int("resolution_minutes", resolution),
		observability.Int("raw_samples", len(samples)),
		observability.Int("buckets", len(aggregates)),
		observability.Float64("importance", score),
	)
}
