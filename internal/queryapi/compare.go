package queryapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vantage-platform/vantage/internal/analytics"
	"github.com/vantage-platform/vantage/internal/httpserver"
)

type compareServicesRequest struct {
	ServiceA   string `json:"service_a"`
	ServiceB   string `json:"service_b"`
	MetricName string `json:"metric_name"`
	RangeStr   string `json:"range"`
}

type comparePeriodsRequest struct {
	Service       string `json:"service"`
	MetricName    string `json:"metric_name"`
	BaselineFrom  string `json:"baseline_from"`
	BaselineTo    string `json:"baseline_to"`
	CandidateFrom string `json:"candidate_from"`
	CandidateTo   string `json:"candidate_to"`
}

func comparisonResponse(metricName string, c analytics.Comparison) map[string]any {
	return map[string]any{
		"metric_name":    metricName,
		"verdict":        c.Verdict,
		"change_percent": c.ChangePercent,
		"significant":    c.Significant,
		"confidence":     c.Confidence,
		"baseline_mean":  c.BaselineMean,
		"candidate_mean": c.CandidateMean,
		"baseline_p95":   c.BaselineP95,
		"candidate_p95":  c.CandidateP95,
	}
}

// CompareServices handles POST /compare/services: same metric and time
// window, two different services.
func (h *Handler) CompareServices(w http.ResponseWriter, r *http.Request) {
	var req compareServicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ServiceA == "" || req.ServiceB == "" || req.MetricName == "" {
		httpserver.WriteError(w, r, http.StatusBadRequest, "service_a, service_b and metric_name are required")
		return
	}

	window := defaultRange
	if req.RangeStr != "" {
		if d, err := time.ParseDuration(req.RangeStr); err == nil && d > 0 {
			window = d
		}
	}

	to := h.now()
	from := to.Add(-window)

	a, err := h.valuesFor(r, req.ServiceA, req.MetricName, from, to)
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to read baseline series")
		return
	}
	b, err := h.valuesFor(r, req.ServiceB, req.MetricName, from, to)
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to read candidate series")
		return
	}

	c := analytics.Compare(req.MetricName, a, b)
	writeJSON(w, http.StatusOK, comparisonResponse(req.MetricName, c))
}

// CompareTimePeriods handles POST /compare/time-periods: same service
// and metric, two different time windows.
func (h *Handler) CompareTimePeriods(w http.ResponseWriter, r *http.Request) {
	var req comparePeriodsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Service == "" || req.MetricName == "" {
		httpserver.WriteError(w, r, http.StatusBadRequest, "service and metric_name are required")
		return
	}

	baselineFrom, err1 := time.Parse(time.RFC3339, req.BaselineFrom)
	baselineTo, err2 := time.Parse(time.RFC3339, req.BaselineTo)
	candidateFrom, err3 := time.Parse(time.RFC3339, req.CandidateFrom)
	candidateTo, err4 := time.Parse(time.RFC3339, req.CandidateTo)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		httpserver.WriteError(w, r, http.StatusBadRequest, "time bounds must be RFC3339 timestamps")
		return
	}

	a, err := h.valuesFor(r, req.Service, req.MetricName, baselineFrom, baselineTo)
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to read baseline series")
		return
	}
	b, err := h.valuesFor(r, req.Service, req.MetricName, candidateFrom, candidateTo)
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to read candidate series")
		return
	}

	c := analytics.Compare(req.MetricName, a, b)
	writeJSON(w, http.StatusOK, comparisonResponse(req.MetricName, c))
}

func (h *Handler) valuesFor(r *http.Request, service, metricName string, from, to time.Time) ([]float64, error) {
	samples, err := h.repo.GetTimeseries(r.Context(), service, from, to)
	if err != nil {
		return nil, err
	}
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.MetricName == metricName {
			values = append(values, s.Value)
		}
	}
	return values, nil
}
