package httpserver

import "github.com/go-chi/chi/v5"

// Router registers a set of routes onto the shared Chi router. Both
// the ingest API and the query API implement it to plug their
// endpoints into a Server.
type Router interface {
	Register(router chi.Router)
}
