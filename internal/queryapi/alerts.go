package queryapi

import (
	"net/http"

	"github.com/vantage-platform/vantage/internal/httpserver"
	"github.com/vantage-platform/vantage/internal/model"
)

// Alerts handles GET /alerts: every alert, firing or resolved.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	h.listAlerts(w, r, false)
}

// AlertsActive handles GET /alerts/active: only currently-firing alerts.
func (h *Handler) AlertsActive(w http.ResponseWriter, r *http.Request) {
	h.listAlerts(w, r, true)
}

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	alerts, err := h.repo.ListAlerts(r.Context(), activeOnly)
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

// AlertsSummary handles GET /alerts/summary: a firing-alert count by
// severity, for dashboard badges.
func (h *Handler) AlertsSummary(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.repo.ListAlerts(r.Context(), true)
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	counts := map[model.Severity]int{
		model.SeverityInfo:     0,
		model.SeverityWarning:  0,
		model.SeverityCritical: 0,
	}
	for _, a := range alerts {
		counts[a.Severity]++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":       len(alerts),
		"by_severity": counts,
	})
}
