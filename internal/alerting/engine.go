// Package alerting is C10: the periodic engine that maintains one
// firing/resolved alert per (service_name, metric_name), comparing the
// latest raw sample against an IQR-filtered baseline computed from the
// preceding week. It runs as its own binary (cmd/alertengine) on a
// fixed ticker, the same shape downsample's engine uses.
package alerting

import (
	"context"
	"time"

	"github.com/vantage-platform/vantage/internal/model"
	"github.com/vantage-platform/vantage/internal/store"
	"github.com/vantage-platform/vantage/pkg/observability"
)

// DefaultInterval is the default evaluation cadence per §4.9.
const DefaultInterval = 1 * time.Minute

const (
	baselineWindow = 8 * 24 * time.Hour
	baselineLag    = 1 * 24 * time.Hour
	currentWindow  = 1 * time.Hour
)

// Engine evaluates every (service, metric) pair seen recently against
// its baseline once per tick.
type Engine struct {
	repo        store.Repository
	o11y        observability.Observability
	sensitivity Sensitivity
	now         func() time.Time

	pairsEvaluated observability.Counter
	alertsFired    observability.Counter
	alertsResolved observability.Counter
	cycleDuration  observability.Histogram
}

func New(repo store.Repository, o11y observability.Observability, sensitivity Sensitivity) *Engine {
	metrics := o11y.Metrics()
	return &Engine{
		repo:           repo,
		o11y:           o11y,
		sensitivity:    sensitivity,
		now:            time.Now,
		pairsEvaluated: metrics.Counter("alerting_pairs_evaluated_total", "service/metric pairs evaluated"),
		alertsFired:    metrics.Counter("alerting_alerts_fired_total", "alerts newly transitioned to firing"),
		alertsResolved: metrics.Counter("alerting_alerts_resolved_total", "alerts transitioned to resolved"),
		cycleDuration:  metrics.Histogram("alerting_cycle_duration_seconds", "time spent in one evaluation cycle", []float64{.1, .5, 1, 5, 10, 30}),
	}
}

// Run ticks every interval until ctx is cancelled.
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

	now := e.now()
	pairs, err := e.repo.DistinctRawPairs(ctx, now.Add(-currentWindow), now)
	if err != nil {
		e.o11y.Logger().Error(ctx, "alerting: failed to list active pairs", observability.Error(err))
		return
	}

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return
		}
		e.evaluate(ctx, pair, now)
	}
}

func (e *Engine) evaluate(ctx context.Context, pair store.ServiceMetricKey, now time.Time) {
	e.pairsEvaluated.Inc()

	baselineSamples, err := e.repo.SelectRawMetrics(ctx, pair.ServiceName, pair.MetricName, now.Add(-baselineWindow), now.Add(-baselineLag))
	if err != nil {
		e.o11y.Logger().Warn(ctx, "alerting: baseline query failed", observability.Error(err))
		return
	}

	values := make([]float64, len(baselineSamples))
	for i, s := range baselineSamples {
		values[i] = s.Value
	}

	baseline, ok := ComputeBaseline(values, e.sensitivity)
	if !ok {
		return
	}

	currentSamples, err := e.repo.SelectRawMetrics(ctx, pair.ServiceName, pair.MetricName, now.Add(-currentWindow), now)
	if err != nil || len(currentSamples) == 0 {
		return
	}
	current := latestValue(currentSamples)

	existing, err := e.repo.GetFiringAlert(ctx, pair.ServiceName, pair.MetricName)
	if err != nil {
		e.o11y.Logger().Warn(ctx, "alerting: firing alert lookup failed", observability.Error(err))
		return
	}

	breached := current < baseline.Lower || current > baseline.Upper

	switch {
	case breached && existing == nil:
		e.fire(ctx, pair, current, baseline, now)
	case breached && existing != nil:
		e.update(ctx, existing, current, now)
	case !breached && existing != nil:
		e.resolve(ctx, existing, now)
	}
}

func (e *Engine) fire(ctx context.Context, pair store.ServiceMetricKey, current float64, baseline Baseline, now time.Time) {
	dev := deviation(current, baseline.Lower, baseline.Upper)
	alert := model.Alert{
		ServiceName:    pair.ServiceName,
		MetricName:     pair.MetricName,
		Severity:       severityFor(dev),
		Status:         model.AlertFiring,
		Message:        breachMessage(current, baseline.Lower, baseline.Upper),
		CurrentValue:   current,
		ExpectedMin:    baseline.Lower,
		ExpectedMax:    baseline.Upper,
		BreachCount:    1,
		FirstTriggered: now,
		LastTriggered:  now,
	}

	if err := e.repo.UpsertAlert(ctx, alert); err != nil {
		e.o11y.Logger().Error(ctx, "alerting: failed to persist new alert", observability.Error(err))
		return
	}
	e.alertsFired.Inc()
	e.o11y.Logger().Warn(ctx, "alert firing",
		observability.String("service_name", pair.ServiceName),
		observability.String("metric_name", pair.MetricName),
		observability.String("severity", string(alert.Severity)),
		observability.Float64("current_value", current),
	)
}

func (e *Engine) update(ctx context.Context, existing *model.Alert, current float64, now time.Time) {
	existing.BreachCount++
	existing.CurrentValue = current
	existing.LastTriggered = now

	if err := e.repo.UpsertAlert(ctx, *existing); err != nil {
		e.o11y.Logger().Error(ctx, "alerting: failed to update firing alert", observability.Error(err))
	}
}

func (e *Engine) resolve(ctx context.Context, existing *model.Alert, now time.Time) {
	if existing.Status != model.AlertFiring {
		return
	}
	existing.Status = model.AlertResolved
	existing.ResolvedAt = &now

	if err := e.repo.UpsertAlert(ctx, *existing); err != nil {
		e.o11y.Logger().Error(ctx, "alerting: failed to resolve alert", observability.Error(err))
		return
	}
	e.alertsResolved.Inc()
	e.o11y.Logger().Info(ctx, "alert resolved",
		observability.String("service_name", existing.ServiceName),
		observability.String("metric_name", existing.MetricName),
	)
}

func latestValue(samples []model.Metric) float64 {
	latest := samples[0]
	for _, s := range samples[1:] {
		if s.Timestamp.After(latest.Timestamp) {
			latest = s
		}
	}
	return latest.Value
}
