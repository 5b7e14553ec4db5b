package writer

import "errors"

var (
	ErrWriterClosed = errors.New("writer: already closed")
	ErrDLQFull      = errors.New("writer: dead-letter queue is full, oldest entry dropped")
)
