package httpserver

import (
	"net/http"
	"strings"
	"time"
)

type Option func(*Server)

func WithPort(port string) Option {
	return func(s *Server) {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		s.config.Address = port
	}
}

func WithServiceName(name string) Option {
	return func(s *Server) { s.config.ServiceName = name }
}

func WithServiceVersion(version string) Option {
	return func(s *Server) { s.config.ServiceVersion = version }
}

func WithEnvironment(env string) Option {
	return func(s *Server) { s.config.Environment = env }
}

func WithBodyLimit(limit int) Option {
	return func(s *Server) { s.config.BodyLimit = limit }
}

func WithCORS(origins string) Option {
	return func(s *Server) {
		s.config.EnableCORS = strings.TrimSpace(origins) != ""
		s.config.CORSOrigins = origins
	}
}

func WithMetricsEndpoint() Option {
	return func(s *Server) { s.config.EnableMetrics = true }
}

func WithHealthChecks(checks map[string]HealthCheckFunc) Option {
	return func(s *Server) {
		s.config.EnableHealthChecks = true
		for name, check := range checks {
			s.healthChecks[name] = check
		}
	}
}

func WithMiddleware(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) { s.customMiddlewares = append(s.customMiddlewares, mw) }
}

func WithRouteTimeout(path string, timeout time.Duration) Option {
	return func(s *Server) { s.routeTimeouts[path] = timeout }
}
