package ingest

import "github.com/go-chi/chi/v5"

// Router wires the Handler's endpoints onto the shared Chi router,
// implementing httpserver.Router.
type Router struct {
	handler *Handler
}

func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler}
}

func (rt *Router) Register(router chi.Router) {
	router.Post("/v1/metrics", rt.handler.IngestMetrics)
	router.Get("/v1/stats", rt.handler.Stats)
}
