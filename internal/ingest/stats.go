package ingest

import "net/http"

// StatsResponse is the body served by GET /v1/stats: lifetime ingest
// counters plus the breaker's current state, useful for a human
// checking on a collector without reaching for /metrics.
type StatsResponse struct {
	MetricsReceived int64  `json:"metrics_received"`
	MetricsAccepted int64  `json:"metrics_accepted"`
	MetricsRejected int64  `json:"metrics_rejected"`
	BreakerState    string `json:"breaker_state"`
	RateLimitKeys   int    `json:"rate_limit_tracked_keys"`
}

// Stats implements GET /v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		MetricsReceived: h.received.Load(),
		MetricsAccepted: h.accepted.Load(),
		MetricsRejected: h.rejected.Load(),
		BreakerState:    h.breaker.State().String(),
		RateLimitKeys:   h.limiter.Len(),
	})
}
