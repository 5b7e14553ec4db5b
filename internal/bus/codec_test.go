package bus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-platform/vantage/internal/bus"
	"github.com/vantage-platform/vantage/internal/model"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	m := model.Metric{
		Timestamp:   time.UnixMilli(time.Now().UnixMilli()),
		ServiceName: "svc-a",
		MetricName:  "http.request.duration",
		Kind:        model.KindHistogram,
		Value:       123.45,
		Endpoint:    "/x",
		Method:      "GET",
		StatusCode:  200,
		DurationMs:  123.45,
		Tags:        model.Tags{"region": "us"},
		TraceID:     "trace-1",
		SpanID:      "span-1",
	}

	raw, err := bus.Encode(m)
	require.NoError(t, err)

	decoded, err := bus.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, m.ServiceName, decoded.ServiceName)
	assert.Equal(t, m.MetricName, decoded.MetricName)
	assert.Equal(t, m.Kind, decoded.Kind)
	assert.InDelta(t, m.Value, decoded.Value, 0.0001)
	assert.Equal(t, m.Tags, decoded.Tags)
	assert.Equal(t, m.TraceID, decoded.TraceID)
	assert.Equal(t, m.Timestamp.UnixMilli(), decoded.Timestamp.UnixMilli())
}

func TestEncodeDecode_AggregatedFacet(t *testing.T) {
	m := model.Metric{
		Timestamp:   time.Now(),
		ServiceName: "svc-b",
		MetricName:  "m1",
		Kind:        model.KindGauge,
		Aggregated:  true,
		Downsample: &model.DownsampleFacet{
			ResolutionMinutes: 5,
			Min:               0,
			Max:               99,
			P50:               50,
			SampleCount:       120,
		},
	}

	raw, err := bus.Encode(m)
	require.NoError(t, err)

	decoded, err := bus.Decode(raw)
	require.NoError(t, err)

	require.NotNil(t, decoded.Downsample)
	assert.Equal(t, 5, decoded.Downsample.ResolutionMinutes)
	assert.Equal(t, 120, decoded.Downsample.SampleCount)
}

func TestDecode_MalformedPayload(t *testing.T) {
	_, err := bus.Decode([]byte("not json"))
	require.Error(t, err)
}
