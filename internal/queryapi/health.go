package queryapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vantage-platform/vantage/internal/analytics"
	"github.com/vantage-platform/vantage/internal/httpserver"
)

func healthScoreResponse(service string, hs analytics.HealthScore) map[string]any {
	return map[string]any{
		"service_name":   service,
		"overall":        hs.Overall,
		"status":         hs.Status,
		"error_score":    hs.ErrorScore,
		"latency_score":  hs.LatencyScore,
		"traffic_score":  hs.TrafficScore,
		"error_rate":     hs.ErrorRate,
		"p95_latency_ms": hs.P95LatencyMs,
		"traffic_change": hs.TrafficChange,
	}
}

func (h *Handler) scoreFor(r *http.Request, service string) (analytics.HealthScore, error) {
	window := parseRange(r)
	to := h.now()
	from := to.Add(-window)
	prevFrom := from.Add(-window)

	requests, errs, p95, err := h.repo.GetRequestStats(r.Context(), service, from, to)
	if err != nil {
		return analytics.HealthScore{}, err
	}
	prevRequests, _, _, err := h.repo.GetRequestStats(r.Context(), service, prevFrom, from)
	if err != nil {
		return analytics.HealthScore{}, err
	}

	return analytics.ComputeHealthScore(requests, errs, p95, requests > 0, requests, prevRequests), nil
}

// HealthScoreByService handles GET /health/score/{service}.
func (h *Handler) HealthScoreByService(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	if service == "" {
		httpserver.WriteError(w, r, http.StatusBadRequest, "service is required")
		return
	}

	score, err := h.scoreFor(r, service)
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to compute health score")
		return
	}
	writeJSON(w, http.StatusOK, healthScoreResponse(service, score))
}

// HealthScores handles GET /health/scores, computing a score for every
// known service.
func (h *Handler) HealthScores(w http.ResponseWriter, r *http.Request) {
	services, err := h.repo.ListServices(r.Context())
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to list services")
		return
	}

	scores := make([]map[string]any, 0, len(services))
	for _, service := range services {
		score, err := h.scoreFor(r, service)
		if err != nil {
			continue
		}
		scores = append(scores, healthScoreResponse(service, score))
	}

	writeJSON(w, http.StatusOK, map[string]any{"scores": scores})
}
