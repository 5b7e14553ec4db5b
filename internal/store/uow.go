// UnitOfWork wraps a callback in a single SQL transaction, adapted from
// pkg/database/uow/uow.go. C7's persistence writer uses exactly one
// UnitOfWork.Do call per flush, so a batch insert plus its trace/span
// side-channel upserts commit or roll back atomically together.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
)

var errTransactionAlreadyFinished = errors.New("store: transaction already committed or rolled back")

// UnitOfWork executes a function inside a single database transaction.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

type unitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(db *sql.DB) UnitOfWork {
	if db == nil {
		panic("store: NewUnitOfWork called with a nil *sql.DB")
	}
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("store: context cancelled before transaction start: %w", err)
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	var finished atomic.Bool
	defer func() {
		if p := recover(); p != nil {
			if !finished.Load() {
				_ = rollback(tx)
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		finished.Store(true)
		if rbErr := rollback(tx); rbErr != nil && !errors.Is(rbErr, errTransactionAlreadyFinished) {
			return fmt.Errorf("store: transaction error: %w (rollback error: %v)", err, rbErr)
		}
		return err
	}

	finished.Store(true)
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}

func rollback(tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return errTransactionAlreadyFinished
		}
		return err
	}
	return nil
}
