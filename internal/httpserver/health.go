package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/vantage-platform/vantage/pkg/observability"
)

// HealthCheckFunc reports whether a dependency is reachable.
type HealthCheckFunc func(ctx context.Context) error

type HealthStatus struct {
	Status      string                 `json:"status"`
	Service     string                 `json:"service"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Timestamp   time.Time              `json:"timestamp"`
	Checks      map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func executeHealthChecks(ctx context.Context, checks map[string]HealthCheckFunc, timeout time.Duration, o11y observability.Observability) map[string]CheckResult {
	if len(checks) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make(map[string]CheckResult)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, checkFunc := range checks {
		wg.Add(1)
		go func(checkName string, fn HealthCheckFunc) {
			defer wg.Done()
			err := fn(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[checkName] = CheckResult{Status: "unhealthy", Error: err.Error()}
				o11y.Logger().Warn(ctx, "health check failed",
					observability.String("check", checkName), observability.Error(err))
				return
			}
			results[checkName] = CheckResult{Status: "healthy"}
		}(name, checkFunc)
	}

	wg.Wait()
	return results
}

func isHealthy(checks map[string]CheckResult) bool {
	for _, result := range checks {
		if result.Status == "unhealthy" {
			return false
		}
	}
	return true
}

func healthHandler(config Config, checks map[string]HealthCheckFunc, o11y observability.Observability) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := executeHealthChecks(r.Context(), checks, 5*time.Second, o11y)

		status := "healthy"
		code := http.StatusOK
		if !isHealthy(results) {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(HealthStatus{
			Status:      status,
			Service:     config.ServiceName,
			Version:     config.ServiceVersion,
			Environment: config.Environment,
			Timestamp:   time.Now(),
			Checks:      results,
		})
	}
}

func readyHandler(checks map[string]HealthCheckFunc, o11y observability.Observability) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := executeHealthChecks(r.Context(), checks, 3*time.Second, o11y)
		if !isHealthy(results) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Service Unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func liveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
