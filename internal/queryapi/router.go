package queryapi

import "github.com/go-chi/chi/v5"

// Router registers every §6 query-HTTP-surface route onto the shared
// Chi router, the same Router-interface pattern internal/ingest uses.
type Router struct {
	handler *Handler
}

func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler}
}

func (rt *Router) Register(router chi.Router) {
	router.Get("/api/metrics/timeseries", rt.handler.Timeseries)
	router.Get("/api/metrics/aggregated", rt.handler.Aggregated)
	router.Get("/api/services", rt.handler.Services)

	router.Post("/vql/execute", rt.handler.VQLExecute)
	router.Get("/vql/examples", rt.handler.VQLExamples)

	router.Post("/compare/services", rt.handler.CompareServices)
	router.Post("/compare/time-periods", rt.handler.CompareTimePeriods)

	router.Get("/health/score/{service}", rt.handler.HealthScoreByService)
	router.Get("/health/scores", rt.handler.HealthScores)

	router.Get("/alerts", rt.handler.Alerts)
	router.Get("/alerts/active", rt.handler.AlertsActive)
	router.Get("/alerts/summary", rt.handler.AlertsSummary)

	router.Get("/traces", rt.handler.Traces)
	router.Get("/traces/search", rt.handler.TraceSearch)
	router.Get("/traces/{id}", rt.handler.TraceByID)

	router.Get("/ws/metrics", rt.handler.WSMetrics)
}
