// Package breaker implements the three-state circuit breaker that
// wraps the log-bus producer (C3). No example in the retrieval pack
// ships a circuit breaker, so this is built from scratch in the
// teacher's idiom: a small mutex-guarded state struct plus an
// atomic fast-path flag, functional options for configuration, and
// structured logging at every transition (mirrors the atomic.Bool +
// single-mutex shape of pkg/messaging/kafka/new_producer.go's producer
// struct and the transition logging in pkg/messaging/kafka/new_consumer.go).
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vantage-platform/vantage/pkg/observability"
)

// State is one of the three breaker states.
type State int32

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned when the breaker rejects a call without
// attempting it.
type ErrOpen struct {
	RetryAfter time.Duration
}

func (e *ErrOpen) Error() string {
	return fmt.Sprintf("breaker: circuit open, retry after %s", e.RetryAfter)
}

// Option configures a Breaker.
type Option func(*Breaker)

func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.timeout = d
		}
	}
}

func WithHalfOpenMaxCalls(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.halfOpenMaxCalls = n
		}
	}
}

func WithLogger(logger observability.Logger) Option {
	return func(b *Breaker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Breaker guards a protected operation with closed/open/half-open
// semantics. The zero value is not usable; construct with New.
type Breaker struct {
	failureThreshold int
	successThreshold int
	halfOpenMaxCalls int
	timeout          time.Duration
	logger           observability.Logger

	state atomic.Int32

	mu               sync.Mutex
	consecutiveFails int
	consecutiveOK    int
	halfOpenInFlight int
	openedAt         time.Time
}

func New(opts ...Option) *Breaker {
	b := &Breaker{
		failureThreshold: 5,
		successThreshold: 2,
		halfOpenMaxCalls: 1,
		timeout:          60 * time.Second,
		logger:           discardLogger{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current breaker state. Lock-free, per §5's
// "reads are lock-free" requirement.
func (b *Breaker) State() State {
	return State(b.state.Load())
}

// Allow decides, without performing any I/O, whether the caller may
// attempt the protected operation right now. It returns *ErrOpen when
// the breaker is open and the timeout has not yet elapsed, and
// transitions open->half-open as a side effect once the timeout has
// elapsed.
func (b *Breaker) Allow() error {
	switch State(b.state.Load()) {
	case Closed:
		return nil
	case HalfOpen:
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.halfOpenInFlight >= b.halfOpenMaxCalls {
			return &ErrOpen{RetryAfter: b.timeout}
		}
		b.halfOpenInFlight++
		return nil
	case Open:
		b.mu.Lock()
		defer b.mu.Unlock()
		elapsed := time.Since(b.openedAt)
		if elapsed < b.timeout {
			return &ErrOpen{RetryAfter: b.timeout - elapsed}
		}
		b.transitionLocked(HalfOpen)
		b.halfOpenInFlight = 1
		return nil
	default:
		return errors.New("breaker: unknown state")
	}
}

// Do executes fn if Allow permits it, and records the outcome.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.Allow(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch State(b.state.Load()) {
	case Closed:
		b.consecutiveFails = 0
	case HalfOpen:
		b.halfOpenInFlight--
		b.consecutiveOK++
		if b.consecutiveOK >= b.successThreshold {
			b.transitionLocked(Closed)
			b.consecutiveFails = 0
			b.consecutiveOK = 0
		}
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch State(b.state.Load()) {
	case Closed:
		b.consecutiveFails++
		if b.consecutiveFails >= b.failureThreshold {
			b.transitionLocked(Open)
		}
	case HalfOpen:
		b.halfOpenInFlight--
		b.transitionLocked(Open)
	}
}

// transitionLocked must be called with b.mu held.
func (b *Breaker) transitionLocked(to State) {
	from := State(b.state.Load())
	if from == to {
		return
	}

	b.state.Store(int32(to))
	if to == Open {
		b.openedAt = time.Now()
	}
	if to == HalfOpen {
		b.consecutiveOK = 0
	}

	b.logger.Info(context.Background(), "circuit breaker transition",
		observability.String("from", from.String()),
		observability.String("to", to.String()),
	)
}

type discardLogger struct{}

func (discardLogger) Debug(context.Context, string, ...observability.Field) {}
func (discardLogger) Info(context.Context, string, ...observability.Field)  {}
func (discardLogger) Warn(context.Context, string, ...observability.Field)  {}
func (discardLogger) Error(context.Context, string, ...observability.Field) {}
func (d discardLogger) With(...observability.Field) observability.Logger    { return d }
