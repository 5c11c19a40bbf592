// Package services holds the capstone workflows. Every workflow runs inside
// one scoped transaction from the pool; reads use DoR, writes use Do.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/dmitrijs2005/capstone/internal/server/access"
	"github.com/dmitrijs2005/capstone/internal/server/config"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/repomanager"
)

type base struct {
	pool    *dbx.Pool
	rm      repomanager.RepositoryManager
	timeout time.Duration
	logger  logging.Logger
}

func newBase(pool *dbx.Pool, rm repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, name string) base {
	if logger == nil {
		logger = logging.Discard()
	}
	return base{
		pool:    pool,
		rm:      rm,
		timeout: cfg.AcquireTimeout,
		logger:  logger.With("service", name),
	}
}

func (b *base) do(ctx context.Context, work dbx.Work) error {
	return b.pool.Do(ctx, b.timeout, work)
}

func (b *base) doR(ctx context.Context, work dbx.Work) error {
	return b.pool.DoR(ctx, b.timeout, work)
}

func (b *base) deny(ctx context.Context, pr *access.Principal, what string, id any) error {
	var uid int64
	if pr != nil {
		uid = pr.UserID
	}
	b.logger.Debug(ctx, "access denied", "principal", uid, "record", what, "id", id)
	return common.ErrorForbidden
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}

func requirePrincipal(pr *access.Principal) error {
	if pr == nil {
		return common.ErrorUnauthorized
	}
	return nil
}
