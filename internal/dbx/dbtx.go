// Package dbx is the transactional core of the storage layer: a bounded
// connection pool, transactions that own one pooled connection each, a
// savepoint-backed checkpoint stack, and scoped helpers that guarantee the
// connection goes back to the pool on every exit path.
package dbx

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of database/sql used by repositories. *sql.DB, *sql.Tx
// and *Tx all satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Work is the body of a scoped transaction. Returning true commits, false
// rolls back; a non-nil error always rolls back and is returned to the caller.
type Work func(ctx context.Context, tx *Tx) (bool, error)

// Do begins a transaction, runs work, and commits or rolls back. Panics in
// work roll back and are rethrown. The connection is released in all cases.
//
// Typical use:
//
//	err := pool.Do(ctx, common.DefaultAcquireTimeout, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
//	    ok, err := entities.NewRepository(tx, reg).Alter(ctx, "team", 7, changes)
//	    return ok, err
//	})
func (p *Pool) Do(ctx context.Context, timeout time.Duration, work Work) error {
	return p.run(ctx, timeout, false, work)
}

// DoR is Do with read-only intent. The mechanics are identical.
func (p *Pool) DoR(ctx context.Context, timeout time.Duration, work Work) error {
	return p.run(ctx, timeout, true, work)
}

func (p *Pool) run(ctx context.Context, timeout time.Duration, readOnly bool, work Work) (err error) {
	tx, err := p.begin(ctx, timeout, readOnly)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if tx.State() == TxActive {
				_ = tx.Rollback(ctx)
			}
			panic(r)
		}
	}()

	ok, err := work(ctx, tx)

	// work may have ended the transaction itself.
	if tx.State() != TxActive {
		return err
	}

	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			tx.logger.Warn(ctx, "rollback after work error failed", "error", rbErr, "cause", err)
		}
		return err
	}
	if !ok {
		return tx.Rollback(ctx)
	}
	return tx.Commit(ctx)
}
