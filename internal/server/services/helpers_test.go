package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/dmitrijs2005/capstone/internal/server/access"
	"github.com/dmitrijs2005/capstone/internal/server/config"
	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/capstone/internal/server/testdb"
	"github.com/stretchr/testify/require"
)

type env struct {
	pool     *dbx.Pool
	rm       repomanager.RepositoryManager
	users    *UserService
	projects *ProjectService
	teams    *TeamService
	tickets  *TicketService
	invites  *InviteService
	admin    *AdminService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	pool := testdb.New(t, 2)
	rm, err := repomanager.NewSQLRepositoryManager("sqlite", nil)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AcquireTimeout = 2 * time.Second
	cfg.SecretKey = "test-secret"

	log := logging.Discard()
	return &env{
		pool:     pool,
		rm:       rm,
		users:    NewUserService(pool, rm, cfg, log),
		projects: NewProjectService(pool, rm, cfg, log),
		teams:    NewTeamService(pool, rm, cfg, log),
		tickets:  NewTicketService(pool, rm, cfg, log),
		invites:  NewInviteService(pool, rm, cfg, log),
		admin:    NewAdminService(pool, rm, cfg, log),
	}
}

func (e *env) company(t *testing.T, name string) {
	t.Helper()
	err := e.pool.Do(context.Background(), time.Second, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		return e.rm.Companies(tx).InsertCompany(ctx, &models.Company{Name: name})
	})
	require.NoError(t, err)
}

func (e *env) principal(t *testing.T, uid int64) *access.Principal {
	t.Helper()
	pr, err := e.users.ResolvePrincipal(context.Background(), uid)
	require.NoError(t, err)
	return pr
}

func (e *env) student(t *testing.T, email string) *access.Principal {
	t.Helper()
	id, err := e.users.RegisterStudent(context.Background(), NewUser{FName: "S", Email: email}, "net-"+email, models.Student{Major: "CS"})
	require.NoError(t, err)
	return e.principal(t, id)
}

func (e *env) staff(t *testing.T, email string) *access.Principal {
	t.Helper()
	id, err := e.users.RegisterStaff(context.Background(), NewUser{FName: "St", Email: email}, "net-"+email, false)
	require.NoError(t, err)
	return e.principal(t, id)
}

func (e *env) employee(t *testing.T, email, company string) *access.Principal {
	t.Helper()
	id, err := e.users.RegisterEmployee(context.Background(), NewUser{FName: "E", Email: email}, company, "one-time")
	require.NoError(t, err)
	return e.principal(t, id)
}
