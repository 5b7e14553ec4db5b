package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-platform/vantage/internal/breaker"
	"github.com/vantage-platform/vantage/internal/bus"
	"github.com/vantage-platform/vantage/internal/model"
	"github.com/vantage-platform/vantage/internal/ratelimit"
	"github.com/vantage-platform/vantage/pkg/observability/noop"
)

type fakeProducer struct {
	failNext  bool
	flushErr  error
	produced  int
}

func (f *fakeProducer) Produce(ctx context.Context, m model.Metric, partitionKey string) *bus.Future {
	f.produced++
	if f.failNext {
		return bus.NewResolvedFuture(assert.AnError)
	}
	return bus.NewResolvedFuture(nil)
}

func (f *fakeProducer) Flush() error { return f.flushErr }

func newTestHandler(producer Producer, apiKey string) *Handler {
	h := New(producer, breaker.New(), ratelimit.New(ratelimit.WithMaxRequests(1000)), noop.New(), apiKey)
	h.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

func validBatchBody() []byte {
	batch := model.MetricBatch{
		ServiceName: "checkout",
		Environment: "test",
		Metrics: []model.Metric{
			{
				Timestamp:   time.Date(2026, 8, 1, 11, 59, 0, 0, time.UTC),
				ServiceName: "checkout",
				MetricName:  "http.request_duration",
				Kind:        model.KindHistogram,
				Value:       42,
				Endpoint:    "/cart",
				Method:      "POST",
				StatusCode:  200,
				DurationMs:  42,
			},
		},
	}
	b, _ := json.Marshal(batch)
	return b
}

func TestIngestMetrics_AllAccepted(t *testing.T) {
	producer := &fakeProducer{}
	h := newTestHandler(producer, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/metrics", bytes.NewReader(validBatchBody()))
	w := httptest.NewRecorder()

	h.IngestMetrics(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, 1, resp.MetricsAccepted)
	assert.Equal(t, 0, resp.MetricsRejected)
	assert.Equal(t, 1, producer.produced)
}

func TestIngestMetrics_MissingAPIKeyRejected(t *testing.T) {
	h := newTestHandler(&fakeProducer{}, "secret")

	req := httptest.NewRequest(http.MethodPost, "/v1/metrics", bytes.NewReader(validBatchBody()))
	w := httptest.NewRecorder()

	h.IngestMetrics(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIngestMetrics_BreakerOpenShortCircuits(t *testing.T) {
	producer := &fakeProducer{failNext: true}
	h := New(producer, breaker.New(breaker.WithFailureThreshold(1)), ratelimit.New(ratelimit.WithMaxRequests(1000)), noop.New(), "")
	h.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }

	// First request trips the breaker (single metric, single failure).
	req := httptest.NewRequest(http.MethodPost, "/v1/metrics", bytes.NewReader(validBatchBody()))
	w := httptest.NewRecorder()
	h.IngestMetrics(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	// Second request should be rejected fast with 503, no produce attempted.
	producer.produced = 0
	req2 := httptest.NewRequest(http.MethodPost, "/v1/metrics", bytes.NewReader(validBatchBody()))
	w2 := httptest.NewRecorder()
	h.IngestMetrics(w2, req2)

	assert.Equal(t, http.StatusServiceUnavailable, w2.Code)
	assert.NotEmpty(t, w2.Header().Get("Retry-After"))
	assert.Equal(t, 0, producer.produced)
}

func TestIngestMetrics_FutureTimestampRejected(t *testing.T) {
	producer := &fakeProducer{}
	h := newTestHandler(producer, "")

	batch := model.MetricBatch{
		ServiceName: "checkout",
		Metrics: []model.Metric{
			{
				Timestamp:   time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC), // 2h in the future
				ServiceName: "checkout",
				MetricName:  "http.request_duration",
				Kind:        model.KindHistogram,
				Value:       1,
			},
		},
	}
	body, _ := json.Marshal(batch)

	req := httptest.NewRequest(http.MethodPost, "/v1/metrics", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.IngestMetrics(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rejected", resp.Status)
	assert.Equal(t, 1, resp.MetricsRejected)
	assert.Equal(t, 0, producer.produced)
}

func TestStats_ReportsCounters(t *testing.T) {
	producer := &fakeProducer{}
	h := newTestHandler(producer, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/metrics", bytes.NewReader(validBatchBody()))
	h.IngestMetrics(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var stats StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.MetricsAccepted)
	assert.Equal(t, "closed", stats.BreakerState)
}
