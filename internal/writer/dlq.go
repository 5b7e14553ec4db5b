package writer

import (
	"context"
	"sync"
	"time"

	"github.com/vantage-platform/vantage/pkg/observability"
)

// deadLetterCapacity bounds the in-memory DLQ so a persistently failing
// store can never grow the writer's heap unboundedly.
const deadLetterCapacity = 100

// deadLetter is a batch that failed every retry attempt, kept in memory
// for one more chance on the next idle tick.
type deadLetter struct {
	RawValues  [][]byte
	FailedAt   time.Time
	LastError  error
	RetryCount int
}

// deadLetterQueue is a fixed-capacity ring buffer: once full, the
// oldest entry is dropped (and logged loudly) to make room for the
// newest failure, trading older-batch durability for bounded memory.
type deadLetterQueue struct {
	mu      sync.Mutex
	entries []deadLetter
	logger  observability.Logger
}

func newDeadLetterQueue(logger observability.Logger) *deadLetterQueue {
	return &deadLetterQueue{logger: logger}
}

func (q *deadLetterQueue) Push(entry deadLetter) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) >= deadLetterCapacity {
		dropped := q.entries[0]
		q.entries = q.entries[1:]
		q.logger.Error(context.Background(), "dead-letter queue full, dropping oldest batch",
			observability.Int("dropped_records", len(dropped.RawValues)),
			observability.Error(ErrDLQFull),
		)
	}

	q.entries = append(q.entries, entry)
}

// PopOldest removes and returns the longest-waiting entry, for the
// idle-tick retry loop.
func (q *deadLetterQueue) PopOldest() (deadLetter, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return deadLetter{}, false
	}
	oldest := q.entries[0]
	q.entries = q.entries[1:]
	return oldest, true
}

func (q *deadLetterQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
