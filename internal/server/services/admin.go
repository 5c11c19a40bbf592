package services

import (
	"context"

	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/dmitrijs2005/capstone/internal/server/config"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/repomanager"
)

type AdminService struct {
	base
}

func NewAdminService(pool *dbx.Pool, rm repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AdminService {
	return &AdminService{base: newBase(pool, rm, cfg, logger, "admin")}
}

// Migrate applies pending schema migrations.
func (s *AdminService) Migrate(ctx context.Context) error {
	return s.rm.RunMigrations(ctx, s.pool.DB())
}

// Reset empties every table in a single transaction.
func (s *AdminService) Reset(ctx context.Context) error {
	err := s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		if err := s.rm.Entities(tx).ClearAll(ctx); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	s.logger.Warn(ctx, "all records cleared")
	return nil
}
