package bus

import "errors"

var (
	ErrProducerClosed     = errors.New("bus: producer is closed")
	ErrConsumerClosed     = errors.New("bus: consumer is closed")
	ErrMaxRetriesExceeded = errors.New("bus: max produce retries exceeded")
	ErrPayloadTooLarge    = errors.New("bus: payload exceeds batch byte cap")
)
