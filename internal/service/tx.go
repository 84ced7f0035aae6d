package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TxRunner opens the transactions every write path runs in. A nil runner, or one built
// without a database, calls fn(nil) directly (unit test mode with in-memory repositories).
type TxRunner struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewTxRunner(db *gorm.DB, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{db: db, lockTimeout: lockTimeout}
}

// DB returns the handle for reads outside a write transaction (nil in unit tests).
func (r *TxRunner) DB() *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db
}

// Run executes fn in one transaction; any error rolls everything back.
// Postgres concurrency failures come back wrapped in ErrRetryable.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if r == nil || r.db == nil {
		return classifyDBError(fn(nil))
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 {
			// SET LOCAL does not accept bind parameters
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return fn(tx)
	})
	return classifyDBError(err)
}

// read returns a context-bound handle for read-only queries; nil stays nil.
func (r *TxRunner) read(ctx context.Context) *gorm.DB {
	db := r.DB()
	if db == nil {
		return nil
	}
	return db.WithContext(ctx)
}
