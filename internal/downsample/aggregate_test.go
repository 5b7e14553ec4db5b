package downsample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-platform/vantage/internal/model"
)

func TestAggregate_BucketsByResolution(t *testing.T) {
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	samples := []model.Metric{
		{Timestamp: base, ServiceName: "svc", MetricName: "lat", Kind: model.KindHistogram, Value: 10},
		{Timestamp: base.Add(2 * time.Minute), ServiceName: "svc", MetricName: "lat", Kind: model.KindHistogram, Value: 20, StatusCode: 500},
		{Timestamp: base.Add(16 * time.Minute), ServiceName: "svc", MetricName: "lat", Kind: model.KindHistogram, Value: 100},
	}

	out := aggregate(samples, 15)
	require.Len(t, out, 2)

	first := out[0]
	assert.True(t, first.Aggregated)
	require.NotNil(t, first.Downsample)
	assert.Equal(t, 2, first.Downsample.SampleCount)
	assert.Equal(t, 1, first.Downsample.ErrorCount)
	assert.InDelta(t, 15, first.Value, 1e-9)
	assert.Equal(t, base.UnixMilli(), first.Timestamp.UnixMilli())

	second := out[1]
	assert.Equal(t, 1, second.Downsample.SampleCount)
	assert.Equal(t, base.Add(15*time.Minute).UnixMilli(), second.Timestamp.UnixMilli())
}

func TestAggregate_EmptyInput(t *testing.T) {
	assert.Nil(t, aggregate(nil, 15))
	assert.Nil(t, aggregate([]model.Metric{{Value: 1}}, 0))
}
