// Package ingest is C5: the HTTP ingest API. It chains API-key auth,
// per-IP rate limiting (C4), schema validation and breaker-guarded
// publication to the log-bus (C2/C3) behind a single POST /v1/metrics
// endpoint, tallying per-metric accept/reject outcomes into one
// response rather than failing the whole batch on a partial error.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/vantage-platform/vantage/internal/breaker"
	"github.com/vantage-platform/vantage/internal/bus"
	"github.com/vantage-platform/vantage/internal/httpserver"
	"github.com/vantage-platform/vantage/internal/model"
	"github.com/vantage-platform/vantage/internal/ratelimit"
	"github.com/vantage-platform/vantage/pkg/observability"
)

const (
	traceIDHeader = "X-Vantage-Trace-Id"
	spanIDHeader  = "X-Vantage-Span-Id"
)

// IngestResponse is the body returned to an agent for every
// POST /v1/metrics call, successful or partially successful.
type IngestResponse struct {
	Status          string   `json:"status"`
	MetricsReceived int      `json:"metrics_received"`
	MetricsAccepted int      `json:"metrics_accepted"`
	MetricsRejected int      `json:"metrics_rejected"`
	Errors          []string `json:"errors,omitempty"`
}

// Producer is the subset of *bus.Producer the ingest pipeline depends
// on, extracted so handler tests can substitute a fake log-bus instead
// of standing up a real broker.
type Producer interface {
	Produce(ctx context.Context, m model.Metric, partitionKey string) *bus.Future
	Flush() error
}

// Handler implements the C5 pipeline.
type Handler struct {
	producer Producer
	breaker  *breaker.Breaker
	limiter  *ratelimit.Limiter
	o11y     observability.Observability
	apiKey   string
	now      func() time.Time

	received atomic.Int64
	accepted atomic.Int64
	rejected atomic.Int64

	batchesAccepted observability.Counter
	batchesPartial  observability.Counter
	batchesRejected observability.Counter
}

// New builds the ingest Handler. apiKey empty disables authentication.
func New(producer Producer, b *breaker.Breaker, limiter *ratelimit.Limiter, o11y observability.Observability, apiKey string) *Handler {
	metrics := o11y.Metrics()
	return &Handler{
		producer:        producer,
		breaker:         b,
		limiter:         limiter,
		o11y:            o11y,
		apiKey:          apiKey,
		now:             time.Now,
		batchesAccepted: metrics.Counter("ingest_batches_accepted_total", "ingest batches fully accepted"),
		batchesPartial:  metrics.Counter("ingest_batches_partial_total", "ingest batches partially accepted"),
		batchesRejected: metrics.Counter("ingest_batches_rejected_total", "ingest batches fully rejected"),
	}
}

// IngestMetrics implements POST /v1/metrics.
func (h *Handler) IngestMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := checkAPIKey(r, h.apiKey); err != nil {
		httpserver.WriteError(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	result := h.limiter.Allow(clientIP(r))
	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
		httpserver.WriteError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var batch model.MetricBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		httpserver.WriteError(w, r, http.StatusUnprocessableEntity, "malformed request body: "+err.Error())
		return
	}
	if err := batch.Validate(); err != nil {
		httpserver.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	applyTraceHeaders(r, batch.Metrics)

	now := h.now()
	h.received.Add(int64(len(batch.Metrics)))

	var (
		accepted int
		errs     []string
	)

	for _, m := range batch.Metrics {
		if err := m.Validate(now); err != nil {
			errs = append(errs, err.Error())
			continue
		}

		produceErr := h.breaker.Do(ctx, func(ctx context.Context) error {
			return h.producer.Produce(ctx, m, batch.ServiceName).Wait(ctx)
		})
		if produceErr == nil {
			accepted++
			continue
		}

		var open *breaker.ErrOpen
		if errors.As(produceErr, &open) {
			// The circuit is open: the rest of the batch would fail the
			// same way, so fail the whole request fast instead of
			// attempting (and rejecting) every remaining metric in turn.
			h.respondBreakerOpen(w, r, open)
			return
		}

		errs = append(errs, produceErr.Error())
	}

	if err := h.producer.Flush(); err != nil {
		h.o11y.Logger().Warn(ctx, "producer flush reported an error", observability.Error(err))
	}

	rejected := len(batch.Metrics) - accepted
	h.accepted.Add(int64(accepted))
	h.rejected.Add(int64(rejected))

	status := "accepted"
	switch {
	case accepted == 0:
		status = "rejected"
		h.batchesRejected.Inc()
	case rejected > 0:
		status = "partial"
		h.batchesPartial.Inc()
	default:
		h.batchesAccepted.Inc()
	}

	writeJSON(w, http.StatusAccepted, IngestResponse{
		Status:          status,
		MetricsReceived: len(batch.Metrics),
		MetricsAccepted: accepted,
		MetricsRejected: rejected,
		Errors:          errs,
	})
}

func (h *Handler) respondBreakerOpen(w http.ResponseWriter, r *http.Request, open *breaker.ErrOpen) {
	w.Header().Set("Retry-After", strconv.Itoa(int(open.RetryAfter.Seconds())))
	h.batchesRejected.Inc()
	httpserver.WriteError(w, r, http.StatusServiceUnavailable, open.Error())
}

// applyTraceHeaders stamps the agent-supplied trace/span correlation
// headers onto every metric in the batch that doesn't already carry
// its own identifiers.
func applyTraceHeaders(r *http.Request, metrics []model.Metric) {
	traceID := r.Header.Get(traceIDHeader)
	spanID := r.Header.Get(spanIDHeader)
	if traceID == "" && spanID == "" {
		return
	}
	for i := range metrics {
		if metrics[i].TraceID == "" {
			metrics[i].TraceID = traceID
		}
		if metrics[i].SpanID == "" {
			metrics[i].SpanID = spanID
		}
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
