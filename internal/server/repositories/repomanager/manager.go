package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/server/registry"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/companies"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/invites"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/projects"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/teams"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/tickets"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Registry() *registry.Registry
	Entities(db dbx.DBTX) *entities.Repository
	Users(db dbx.DBTX) users.Repository
	Projects(db dbx.DBTX) projects.Repository
	Teams(db dbx.DBTX) teams.Repository
	Companies(db dbx.DBTX) companies.Repository
	Tickets(db dbx.DBTX) tickets.Repository
	Invites(db dbx.DBTX) invites.Repository
}
