package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vantage-platform/vantage/pkg/observability"
)

// Server wraps a Chi router with the teacher's production middleware
// stack: panic recovery, request IDs, body limits, timeouts, security
// headers, CORS and health/metrics endpoints.
type Server struct {
	router            chi.Router
	httpServer        *http.Server
	config            Config
	observability     observability.Observability
	registry          *prometheus.Registry
	healthChecks      map[string]HealthCheckFunc
	routeTimeouts     map[string]time.Duration
	customMiddlewares []func(http.Handler) http.Handler
	shutdownOnce      sync.Once
}

// New builds a Server. registry may be nil; when WithMetricsEndpoint is
// used, /metrics serves registry if it is non-nil and the global default
// registry otherwise.
func New(o11y observability.Observability, registry *prometheus.Registry, opts ...Option) (*Server, error) {
	srv := &Server{
		config:        DefaultConfig(),
		observability: o11y,
		registry:      registry,
		healthChecks:  make(map[string]HealthCheckFunc),
		routeTimeouts: make(map[string]time.Duration),
	}

	for _, opt := range opts {
		opt(srv)
	}

	if err := srv.config.Validate(); err != nil {
		return nil, fmt.Errorf("httpserver: invalid configuration: %w", err)
	}

	srv.router = chi.NewRouter()
	srv.registerMiddlewares()
	srv.registerSupportEndpoints()

	srv.httpServer = &http.Server{
		Addr:         srv.config.Address,
		Handler:      srv.router,
		ReadTimeout:  srv.config.ReadTimeout,
		WriteTimeout: srv.config.WriteTimeout,
		IdleTimeout:  srv.config.IdleTimeout,
	}

	return srv, nil
}

func (s *Server) RegisterRouters(routers ...Router) *Server {
	for _, router := range routers {
		router.Register(s.router)
	}
	return s
}

func (s *Server) registerMiddlewares() {
	s.router.Use(recoverMiddleware(s.observability))
	s.router.Use(requestIDMiddleware())
	s.router.Use(bodyLimitMiddleware(int64(s.config.BodyLimit)))

	if len(s.routeTimeouts) > 0 || s.config.ReadTimeout > 0 {
		s.router.Use(timeoutMiddleware(s.config.ReadTimeout, s.routeTimeouts))
	}

	s.router.Use(securityHeadersMiddleware())

	if s.config.EnableCORS {
		s.router.Use(corsMiddleware(s.config.CORSOrigins))
	}

	for _, mw := range s.customMiddlewares {
		s.router.Use(mw)
	}
}

func (s *Server) registerSupportEndpoints() {
	if s.config.EnableHealthChecks {
		s.router.Get("/health", healthHandler(s.config, s.healthChecks, s.observability))
		s.router.Get("/ready", readyHandler(s.healthChecks, s.observability))
		s.router.Get("/live", liveHandler())
	}

	if s.config.EnableMetrics {
		if s.registry != nil {
			s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
		} else {
			s.router.Handle("/metrics", promhttp.Handler())
		}
	}
}

// Router exposes the underlying chi.Router for components (like the
// websocket push endpoint) that need to register routes directly,
// bypassing the Router interface's single Register call.
func (s *Server) Router() chi.Router { return s.router }
