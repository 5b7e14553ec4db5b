package queryapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vantage-platform/vantage/internal/httpserver"
	"github.com/vantage-platform/vantage/internal/model"
)

const defaultTraceSearchLimit = 50

// Traces handles GET /traces: a recent-trace search with no service
// filter, equivalent to TraceSearch with an empty service.
func (h *Handler) Traces(w http.ResponseWriter, r *http.Request) {
	h.searchTraces(w, r, "")
}

// TraceSearch handles GET /traces/search?service=&range=&limit=.
func (h *Handler) TraceSearch(w http.ResponseWriter, r *http.Request) {
	h.searchTraces(w, r, r.URL.Query().Get("service"))
}

func (h *Handler) searchTraces(w http.ResponseWriter, r *http.Request, service string) {
	window := parseRange(r)
	to := h.now()
	from := to.Add(-window)

	limit := defaultTraceSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	traces, err := h.repo.SearchTraces(r.Context(), service, from, to, limit)
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to search traces")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"traces": traces})
}

// TraceByID handles GET /traces/{id}, returning the trace plus its
// spans reconstructed into a tree.
func (h *Handler) TraceByID(w http.ResponseWriter, r *http.Request) {
	traceID := chi.URLParam(r, "id")
	if traceID == "" {
		httpserver.WriteError(w, r, http.StatusBadRequest, "trace id is required")
		return
	}

	trace, spans, err := h.repo.GetTrace(r.Context(), traceID)
	if err != nil {
		httpserver.WriteError(w, r, http.StatusInternalServerError, "failed to read trace")
		return
	}
	if trace == nil {
		httpserver.WriteError(w, r, http.StatusNotFound, "trace not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trace": trace,
		"spans": model.BuildSpanTree(spans),
	})
}
