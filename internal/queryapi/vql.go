package queryapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vantage-platform/vantage/internal/httpserver"
	"github.com/vantage-platform/vantage/internal/vql"
)

type vqlRequest struct {
	Query string `json:"query"`
}

// VQLExecute handles POST /vql/execute.
func (h *Handler) VQLExecute(w http.ResponseWriter, r *http.Request) {
	var req vqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpserver.WriteError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := h.executor.Execute(r.Context(), req.Query)
	if err != nil {
		var ve *vql.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": ve.Message,
				"field": ve.Field,
			})
			return
		}
		httpserver.WriteError(w, r, http.StatusInternalServerError, "query execution failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"columns":    result.Columns,
		"rows":       result.Rows,
		"row_count":  result.RowCount,
		"elapsed_ms": result.Elapsed.Milliseconds(),
	})
}

// vqlExample is one canned query shown to clients exploring the surface.
type vqlExample struct {
	Description string `json:"description"`
	Query       string `json:"query"`
}

var vqlExamples = []vqlExample{
	{
		Description: "Top 5 services by request volume",
		Query:       "SELECT service_name, COUNT(*) FROM metrics GROUP BY service_name ORDER BY COUNT(*) DESC LIMIT 5",
	},
	{
		Description: "Server error responses (status 500 and above)",
		Query:       "SELECT endpoint, status_code, duration_ms FROM metrics WHERE status_code >= 500 LIMIT 50",
	},
	{
		Description: "p95 latency by endpoint",
		Query:       "SELECT endpoint, PERCENTILE(duration_ms, 95) FROM metrics GROUP BY endpoint LIMIT 20",
	},
	{
		Description: "Critical alerts, firing or resolved",
		Query:       "SELECT service_name, metric_name, severity FROM alerts WHERE severity = 'critical' LIMIT 20",
	},
}

// VQLExamples handles GET /vql/examples.
func (h *Handler) VQLExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"examples": vqlExamples})
}
