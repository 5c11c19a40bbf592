package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/logging"
)

// TxState tracks a Tx through IDLE → ACTIVE → {COMMITTED, ROLLED_BACK} → DESTROYED.
type TxState int

const (
	TxIdle TxState = iota
	TxActive
	TxCommitted
	TxRolledBack
	TxDestroyed
)

func (s TxState) String() string {
	switch s {
	case TxIdle:
		return "idle"
	case TxActive:
		return "active"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled_back"
	case TxDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("TxState(%d)", int(s))
	}
}

// Tx owns one pooled connection from Begin until Commit or Rollback and runs
// every statement of a workflow on it. A Tx is not safe for concurrent use.
type Tx struct {
	pool     *Pool
	conn     *Conn
	tx       *sql.Tx
	state    TxState
	outcome  TxState
	readOnly bool

	checkpoints []string
	seq         int

	logger logging.Logger
}

// compile-time check that *Tx can back any repository.
var _ DBTX = (*Tx)(nil)

// detach keeps the values of ctx but not its cancellation. Only acquiring a
// connection can be cut short; once begun, a transaction runs until the
// caller commits or rolls back.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// Begin acquires a connection and starts a transaction on it. If starting
// the transaction fails the connection is released before returning.
func (p *Pool) Begin(ctx context.Context, timeout time.Duration) (*Tx, error) {
	return p.begin(ctx, timeout, false)
}

func (p *Pool) begin(ctx context.Context, timeout time.Duration, readOnly bool) (*Tx, error) {
	t := &Tx{pool: p, state: TxIdle, readOnly: readOnly}

	conn, err := p.Acquire(ctx, timeout)
	if err != nil {
		return nil, err
	}

	sqlTx, err := conn.raw.BeginTx(detach(ctx), nil)
	if err != nil {
		if relErr := p.Release(conn); relErr != nil {
			p.logger.Error(ctx, "release after failed begin", "conn", conn.id, "error", relErr)
		}
		return nil, common.NewStorageError("begin", err)
	}

	t.conn = conn
	t.tx = sqlTx
	t.state = TxActive
	t.logger = p.logger.With("tx", conn.id, "read_only", readOnly)
	return t, nil
}

func (t *Tx) State() TxState { return t.state }

// Outcome is TxCommitted or TxRolledBack once the transaction has ended,
// TxActive before that.
func (t *Tx) Outcome() TxState {
	if t.outcome == TxIdle {
		return t.state
	}
	return t.outcome
}

func (t *Tx) ReadOnly() bool { return t.readOnly }

// Commit issues COMMIT and releases the connection whether or not the
// statement succeeded.
func (t *Tx) Commit(ctx context.Context) error {
	if t.state != TxActive {
		return fmt.Errorf("commit in state %s: %w", t.state, common.ErrTxNotActive)
	}
	err := t.tx.Commit()
	if err != nil {
		t.logger.Error(ctx, "commit failed", "error", err)
		t.state = TxRolledBack
	} else {
		t.state = TxCommitted
	}
	t.destroy(ctx)
	return common.NewStorageError("commit", err)
}

// Rollback issues ROLLBACK and releases the connection whether or not the
// statement succeeded.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.state != TxActive {
		return fmt.Errorf("rollback in state %s: %w", t.state, common.ErrTxNotActive)
	}
	err := t.tx.Rollback()
	if err != nil {
		t.logger.Error(ctx, "rollback failed", "error", err)
	}
	t.state = TxRolledBack
	t.destroy(ctx)
	return common.NewStorageError("rollback", err)
}

func (t *Tx) destroy(ctx context.Context) {
	t.outcome = t.state
	t.checkpoints = nil
	if err := t.pool.Release(t.conn); err != nil {
		t.logger.Error(ctx, "connection release failed", "error", err)
	}
	t.state = TxDestroyed
}

func (t *Tx) checkActive(op string) error {
	if t.state != TxActive {
		return fmt.Errorf("%s in state %s: %w", op, t.state, common.ErrTxNotActive)
	}
	return nil
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := t.checkActive("exec"); err != nil {
		return nil, err
	}
	res, err := t.tx.ExecContext(detach(ctx), query, args...)
	if err != nil {
		return nil, common.NewStorageError("exec", err)
	}
	return res, nil
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if err := t.checkActive("query"); err != nil {
		return nil, err
	}
	rows, err := t.tx.QueryContext(detach(ctx), query, args...)
	if err != nil {
		return nil, common.NewStorageError("query", err)
	}
	return rows, nil
}

// QueryRowContext defers errors to Scan, as database/sql does. On an ended
// transaction Scan reports sql.ErrTxDone.
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(detach(ctx), query, args...)
}
