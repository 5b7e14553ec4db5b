// Package queryapi is C14: the read-side HTTP API serving timeseries,
// VQL, comparison, health-score, alert, and trace queries, plus a
// websocket feed of recent samples. It mirrors the ingest API's
// Handler/Router split (internal/ingest) but with no producer, no
// breaker, and no rate limiter of its own -- reads are idempotent and
// the store itself is the shared resource under contention.
package queryapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vantage-platform/vantage/internal/httpserver"
	"github.com/vantage-platform/vantage/internal/model"
	"github.com/vantage-platform/vantage/internal/store"
	"github.com/vantage-platform/vantage/internal/vql"
	"github.com/vantage-platform/vantage/pkg/observability"
)

const defaultRange = time.Hour

// Handler serves every read endpoint in §6's query HTTP surface.
type Handler struct {
	repo     store.Repository
	executor *vql.Executor
	o11y     observability.Observability
	now      func() time.Time

	wsPushEnabled bool
}

func New(repo store.Repository, o11y observability.Observability, wsPushEnabled bool) *Handler {
	return &Handler{
		repo:          repo,
		executor:      vql.NewExecutor(repo),
		o11y:          o11y,
		now:           time.Now,
		wsPushEnabled: wsPushEnabled,
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func parseRange(r *http.Request) time.Duration {
	raw := r.URL.Query().Get("range")
	if raw == "" {
		return defaultRange
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultRange
	}
	return d
}

// logDirectRead appends a QueryLog entry for a read path that does not
// go through the VQL executor, so the downsampling importance scorer
// never has a blind spot on direct timeseries reads per §8.
func (h *Handler) logDirectRead(r *http.Request, service, metricName string, rowCount int, elapsed time.Duration) {
	_ = h.repo.AppendQueryLog(r.Context(), model.QueryLog{
		ServiceName: service,
		MetricName:  metricName,
		Timestamp:   h.now(),
		DurationMs:  float64(elapsed.Milliseconds()),
		RowCount:    rowCount,
		Source:      "direct",
	})
}

var _ httpserver.Router = (*Router)(nil)
