package ingest

import (
	"crypto/subtle"
	"net/http"
)

const apiKeyHeader = "X-API-Key"

// checkAPIKey compares the request's X-API-Key header against the
// configured key in constant time, so a timing attack cannot recover
// the key one byte at a time.
func checkAPIKey(r *http.Request, configured string) error {
	if configured == "" {
		return nil
	}

	supplied := r.Header.Get(apiKeyHeader)
	if supplied == "" {
		return ErrMissingAPIKey
	}

	if subtle.ConstantTimeCompare([]byte(supplied), []byte(configured)) != 1 {
		return ErrBadAPIKey
	}
	return nil
}
