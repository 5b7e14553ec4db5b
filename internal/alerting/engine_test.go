package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-platform/vantage/internal/model"
	"github.com/vantage-platform/vantage/internal/store"
	"github.com/vantage-platform/vantage/pkg/observability/noop"
)

type fakeAlertRepository struct {
	store.Repository

	pairs    []store.ServiceMetricKey
	baseline []model.Metric
	current  []model.Metric
	firing   *model.Alert
	upserted []model.Alert
}

func (f *fakeAlertRepository) DistinctRawPairs(ctx context.Context, from, to time.Time) ([]store.ServiceMetricKey, error) {
	return f.pairs, nil
}

func (f *fakeAlertRepository) SelectRawMetrics(ctx context.Context, service, metricName string, from, to time.Time) ([]model.Metric, error) {
	if from.Before(to.Add(-2 * time.Hour)) {
		return f.baseline, nil
	}
	return f.current, nil
}

func (f *fakeAlertRepository) GetFiringAlert(ctx context.Context, service, metricName string) (*model.Alert, error) {
	return f.firing, nil
}

func (f *fakeAlertRepository) UpsertAlert(ctx context.Context, alert model.Alert) error {
	f.upserted = append(f.upserted, alert)
	return nil
}

func steadyBaseline(n int, value float64) []model.Metric {
	out := make([]model.Metric, n)
	for i := range out {
		out[i] = model.Metric{Value: value}
	}
	return out
}

func TestEvaluate_FiresNewAlertOnBreach(t *testing.T) {
	repo := &fakeAlertRepository{
		pairs:    []store.ServiceMetricKey{{ServiceName: "checkout", MetricName: "latency_ms"}},
		baseline: steadyBaseline(20, 100),
		current:  []model.Metric{{Value: 900, Timestamp: time.Now()}},
	}
	e := New(repo, noop.New(), DefaultSensitivity)
	e.evaluate(context.Background(), repo.pairs[0], time.Now())

	require.Len(t, repo.upserted, 1)
	assert.Equal(t, model.AlertFiring, repo.upserted[0].Status)
	assert.Equal(t, "checkout", repo.upserted[0].ServiceName)
}

func TestEvaluate_UpdatesExistingFiringAlert(t *testing.T) {
	existing := &model.Alert{ServiceName: "checkout", MetricName: "latency_ms", Status: model.AlertFiring, BreachCount: 1}
	repo := &fakeAlertRepository{
		pairs:    []store.ServiceMetricKey{{ServiceName: "checkout", MetricName: "latency_ms"}},
		baseline: steadyBaseline(20, 100),
		current:  []model.Metric{{Value: 900, Timestamp: time.Now()}},
		firing:   existing,
	}
	e := New(repo, noop.New(), DefaultSensitivity)
	e.evaluate(context.Background(), repo.pairs[0], time.Now())

	require.Len(t, repo.upserted, 1)
	assert.Equal(t, 2, repo.upserted[0].BreachCount)
}

func TestEvaluate_ResolvesWhenBackWithinBounds(t *testing.T) {
	existing := &model.Alert{ServiceName: "checkout", MetricName: "latency_ms", Status: model.AlertFiring, BreachCount: 3}
	repo := &fakeAlertRepository{
		pairs:    []store.ServiceMetricKey{{ServiceName: "checkout", MetricName: "latency_ms"}},
		baseline: steadyBaseline(20, 100),
		current:  []model.Metric{{Value: 100, Timestamp: time.Now()}},
		firing:   existing,
	}
	e := New(repo, noop.New(), DefaultSensitivity)
	e.evaluate(context.Background(), repo.pairs[0], time.Now())

	require.Len(t, repo.upserted, 1)
	assert.Equal(t, model.AlertResolved, repo.upserted[0].Status)
	assert.NotNil(t, repo.upserted[0].ResolvedAt)
}

func TestEvaluate_NoFiringAndNoBreachDoesNothing(t *testing.T) {
	repo := &fakeAlertRepository{
		pairs:    []store.ServiceMetricKey{{ServiceName: "checkout", MetricName: "latency_ms"}},
		baseline: steadyBaseline(20, 100),
		current:  []model.Metric{{Value: 100, Timestamp: time.Now()}},
	}
	e := New(repo, noop.New(), DefaultSensitivity)
	e.evaluate(context.Background(), repo.pairs[0], time.Now())

	assert.Empty(t, repo.upserted)
}

func TestEvaluate_InsufficientBaselineSkipsPair(t *testing.T) {
	repo := &fakeAlertRepository{
		pairs:    []store.ServiceMetricKey{{ServiceName: "checkout", MetricName: "latency_ms"}},
		baseline: steadyBaseline(3, 100),
		current:  []model.Metric{{Value: 9000, Timestamp: time.Now()}},
	}
	e := New(repo, noop.New(), DefaultSensitivity)
	e.evaluate(context.Background(), repo.pairs[0], time.Now())

	assert.Empty(t, repo.upserted)
}
