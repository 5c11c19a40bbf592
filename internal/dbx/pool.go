package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/logging"
)

// Pool owns a bounded set of physical connections and grants exclusive use
// of one at a time. The bound is enforced twice: by a slot semaphore that
// callers wait on (so the wait can time out) and by SetMaxOpenConns, which
// allows one spare connection for pings and migrations.
type Pool struct {
	db     *sql.DB
	slots  chan struct{}
	logger logging.Logger
	nextID atomic.Int64
}

// Conn is an exclusive connection handle returned by Acquire.
type Conn struct {
	id       int64
	raw      *sql.Conn
	released atomic.Bool
}

// ID is a process-unique handle number, useful in logs.
func (c *Conn) ID() int64 { return c.id }

// Stats is a snapshot of pool occupancy.
type Stats struct {
	Size  int
	InUse int
}

// Open opens a database through database/sql and wraps it in a Pool of the
// given size. driver is "pgx" or "sqlite".
func Open(driver, dsn string, size int, logger logging.Logger) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", size)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return NewPool(db, size, logger), nil
}

// NewPool wraps an already opened *sql.DB.
func NewPool(db *sql.DB, size int, logger logging.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = logging.Discard()
	}
	// One connection beyond the slots is kept for Ping and migrations, so
	// neither competes with transactions.
	db.SetMaxOpenConns(size + 1)
	db.SetMaxIdleConns(size + 1)
	return &Pool{
		db:     db,
		slots:  make(chan struct{}, size),
		logger: logger.With("component", "pool"),
	}
}

// Acquire waits up to timeout for a free connection. A negative timeout
// waits until one frees or ctx is done. On timeout the error matches
// common.ErrConnectionTimeout.
func (p *Pool) Acquire(ctx context.Context, timeout time.Duration) (*Conn, error) {
	if err := p.waitSlot(ctx, timeout); err != nil {
		return nil, err
	}

	// The slot guarantees sql.DB has a connection to hand out, so this does
	// not queue behind other callers. If ctx is cancelled while opening,
	// database/sql puts the connection back itself.
	raw, err := p.db.Conn(ctx)
	if err != nil {
		<-p.slots
		return nil, common.NewStorageError("acquire", err)
	}

	c := &Conn{id: p.nextID.Add(1), raw: raw}
	p.logger.Debug(ctx, "connection acquired", "conn", c.id, "in_use", len(p.slots))
	return c, nil
}

func (p *Pool) waitSlot(ctx context.Context, timeout time.Duration) error {
	select {
	case p.slots <- struct{}{}:
		return nil
	default:
	}

	if timeout < 0 {
		select {
		case p.slots <- struct{}{}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case p.slots <- struct{}{}:
		return nil
	case <-timer.C:
		p.logger.Warn(ctx, "connection acquire timed out", "timeout", timeout, "size", cap(p.slots))
		return fmt.Errorf("acquire after %s: %w", timeout, common.ErrConnectionTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release hands the connection back. It must be called exactly once per
// acquired handle; a second call returns common.ErrConnReleased.
func (p *Pool) Release(c *Conn) error {
	if c == nil || !c.released.CompareAndSwap(false, true) {
		return common.ErrConnReleased
	}
	err := c.raw.Close()
	<-p.slots
	p.logger.Debug(context.Background(), "connection released", "conn", c.id)
	return common.NewStorageError("release", err)
}

// Ping checks that the database answers. It uses the spare connection and
// never takes a slot, so a saturated pool still pings.
func (p *Pool) Ping(ctx context.Context) error {
	return common.NewStorageError("ping", p.db.PingContext(ctx))
}

// DB exposes the underlying handle for schema migrations. Entity access must
// go through transactions.
func (p *Pool) DB() *sql.DB { return p.db }

func (p *Pool) Stats() Stats {
	return Stats{Size: cap(p.slots), InUse: len(p.slots)}
}

func (p *Pool) Close() error {
	return p.db.Close()
}
