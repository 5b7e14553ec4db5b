package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vantage-platform/vantage/internal/httpserver/common"
)

func writeErrorResponse(w http.ResponseWriter, r *http.Request, code int, detail string) {
	requestID, _ := r.Context().Value(requestIDKey).(string)

	problem := common.ProblemDetail{
		Type:      fmt.Sprintf("https://httpstatuses.com/%d", code),
		Title:     common.GetStatusText(code),
		Status:    code,
		Detail:    detail,
		Instance:  r.URL.Path,
		Timestamp: time.Now(),
		RequestID: requestID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(problem)
}

// WriteError is the exported form used by handlers outside this
// package (ingest, queryapi) to produce RFC 7807 error bodies.
func WriteError(w http.ResponseWriter, r *http.Request, code int, detail string) {
	writeErrorResponse(w, r, code, detail)
}
