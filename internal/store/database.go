// Package store holds the time-series store contract (§3's metrics /
// traces / spans / alerts / query_log tables) and a Postgres-backed
// implementation. Database is adapted from the teacher's
// pkg/database/postgres/postgres.go connection wrapper: thread-safe,
// fail-fast on construction, idempotent Shutdown.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Database owns the *sql.DB pool backing the store.
type Database struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// Option configures pool sizing, adapted from postgres/options.go.
type Option func(*Database)

func WithMaxOpenConns(n int) Option {
	return func(d *Database) {
		if n > 0 {
			d.db.SetMaxOpenConns(n)
		}
	}
}

func WithMaxIdleConns(n int) Option {
	return func(d *Database) {
		if n > 0 {
			d.db.SetMaxIdleConns(n)
		}
	}
}

func WithConnMaxLifetime(dur time.Duration) Option {
	return func(d *Database) {
		if dur > 0 {
			d.db.SetConnMaxLifetime(dur)
		}
	}
}

// New opens a connection pool against dsn and pings it once, failing
// fast if the store is unreachable.
func New(dsn string, opts ...Option) (*Database, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store: dsn must not be empty")
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open connection: %w", err)
	}

	d := &Database{db: sqlDB}
	d.db.SetMaxOpenConns(25)
	d.db.SetMaxIdleConns(6)
	d.db.SetConnMaxLifetime(5 * time.Minute)

	for _, opt := range opts {
		opt(d)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.db.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return d, nil
}

// DB exposes the underlying pool for the UnitOfWork and repositories.
func (d *Database) DB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil
	}
	return d.db
}

// Ping checks store connectivity for health/ready probes.
func (d *Database) Ping(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return fmt.Errorf("store: connection already closed")
	}
	return d.db.PingContext(ctx)
}

// Shutdown idempotently closes the pool.
func (d *Database) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	done := make(chan error, 1)
	go func() { done <- d.db.Close() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
