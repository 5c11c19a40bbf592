// Package repomanager vends the SQL repositories bound to a DBTX and runs
// the embedded goose migrations for the configured driver.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/server/migrations"
	"github.com/dmitrijs2005/capstone/internal/server/registry"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/companies"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/invites"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/projects"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/teams"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/tickets"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager hands out repositories that share one registry.
type SQLRepositoryManager struct {
	reg     *registry.Registry
	dialect string
}

// Dialect maps a database/sql driver name to the goose dialect.
func Dialect(driver string) (string, error) {
	switch driver {
	case "pgx", "postgres":
		return "postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// NewSQLRepositoryManager builds a manager for the given driver. A nil
// registry means registry.Default().
func NewSQLRepositoryManager(driver string, reg *registry.Registry) (RepositoryManager, error) {
	dialect, err := Dialect(driver)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		reg = registry.Default()
	}
	return &SQLRepositoryManager{reg: reg, dialect: dialect}, nil
}

func (m *SQLRepositoryManager) Registry() *registry.Registry { return m.reg }

func (m *SQLRepositoryManager) Entities(db dbx.DBTX) *entities.Repository {
	return entities.NewRepository(db, m.reg)
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.reg)
}

func (m *SQLRepositoryManager) Projects(db dbx.DBTX) projects.Repository {
	return projects.NewSQLRepository(db, m.reg)
}

func (m *SQLRepositoryManager) Teams(db dbx.DBTX) teams.Repository {
	return teams.NewSQLRepository(db, m.reg)
}

func (m *SQLRepositoryManager) Companies(db dbx.DBTX) companies.Repository {
	return companies.NewSQLRepository(db, m.reg)
}

func (m *SQLRepositoryManager) Tickets(db dbx.DBTX) tickets.Repository {
	return tickets.NewSQLRepository(db, m.reg)
}

func (m *SQLRepositoryManager) Invites(db dbx.DBTX) invites.Repository {
	return invites.NewSQLRepository(db, m.reg)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
