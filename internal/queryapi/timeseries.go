package queryapi

import (
	"net/http"

	"github.com/vantage-platform/vantage/internal/httpserver"
	"github.com/vantage-platform/vantage/internal/model"
)

// Timeseries handles GET /api/metrics/timeseries?service=&metric=&range=.
func (h *Handler) Timeseries(w http.ResponseWriter, r *http.Request) {
	service := r.URL.Query().Get("service")
	if service == "" {
		httpserver.WriteError(w, r, http.StatusBadRequest, "service is required")
		return
	}
	metricName := r.URL.Query().Get("metric")
	window := parseRange(r)

	start := h.now()
	to := start
	from := to.Add(-window)

	samples, err := h.repo.GetTimeseries(r.Context(), service, from, to)
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to read timeseries")
		return
	}

	if metricName != "" {
		samples = filterByMetric(samples, metricName)
	}

	elapsed := h.now().Sub(start)
	h.logDirectRead(r, service, metricName, len(samples), elapsed)

	writeJSON(w, http.StatusOK, map[string]any{
		"service_name": service,
		"metric_name":  metricName,
		"from":         from,
		"to":           to,
		"samples":      samples,
	})
}

// Aggregated handles GET /api/metrics/aggregated?service=&metric=&range=,
// returning only the rows that already carry a downsample facet.
func (h *Handler) Aggregated(w http.ResponseWriter, r *http.Request) {
	service := r.URL.Query().Get("service")
	if service == "" {
		httpserver.WriteError(w, r, http.StatusBadRequest, "service is required")
		return
	}
	metricName := r.URL.Query().Get("metric")
	window := parseRange(r)

	start := h.now()
	to := start
	from := to.Add(-window)

	samples, err := h.repo.GetTimeseries(r.Context(), service, from, to)
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to read timeseries")
		return
	}
	if metricName != "" {
		samples = filterByMetric(samples, metricName)
	}

	aggregated := make([]model.Metric, 0, len(samples))
	for _, s := range samples {
		if s.Aggregated {
			aggregated = append(aggregated, s)
		}
	}

	elapsed := h.now().Sub(start)
	h.logDirectRead(r, service, metricName, len(aggregated), elapsed)

	writeJSON(w, http.StatusOK, map[string]any{
		"service_name": service,
		"metric_name":  metricName,
		"from":         from,
		"to":           to,
		"aggregates":   aggregated,
	})
}

func filterByMetric(samples []model.Metric, metricName string) []model.Metric {
	out := make([]model.Metric, 0, len(samples))
	for _, s := range samples {
		if s.MetricName == metricName {
			out = append(out, s)
		}
	}
	return out
}

// Services handles GET /api/services.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.repo.ListServices(r.Context())
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to list services")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}
