package queryapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vantage-platform/vantage/pkg/observability"
)

const wsPushInterval = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSMetrics handles WS /ws/metrics: every wsPushInterval, it pushes the
// requesting service's most recent samples until the client disconnects
// or the server shuts down. Disabled entirely unless wsPushEnabled was
// set at construction, per the feature flag.
func (h *Handler) WSMetrics(w http.ResponseWriter, r *http.Request) {
	if !h.wsPushEnabled {
		http.Error(w, "websocket push is disabled", http.StatusNotFound)
		return
	}

	service := r.URL.Query().Get("service")
	if service == "" {
		http.Error(w, "service is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.o11y.Logger().Warn(r.Context(), "queryapi: websocket upgrade failed", observability.Error(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(wsPushInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			to := h.now()
			from := to.Add(-wsPushInterval * 2)
			samples, err := h.repo.GetTimeseries(ctx, service, from, to)
			if err != nil {
				return
			}
			if err := conn.WriteJSON(map[string]any{"service_name": service, "samples": samples}); err != nil {
				return
			}
		}
	}
}
