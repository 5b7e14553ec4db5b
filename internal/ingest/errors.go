package ingest

import "errors"

var (
	ErrMissingAPIKey = errors.New("ingest: missing X-API-Key header")
	ErrBadAPIKey     = errors.New("ingest: invalid API key")
	ErrBadRequest    = errors.New("ingest: malformed request body")
)
