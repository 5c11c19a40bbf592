package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/dmitrijs2005/capstone/internal/server/access"
	"github.com/dmitrijs2005/capstone/internal/server/config"
	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type InviteService struct {
	base
	now func() time.Time
}

func NewInviteService(pool *dbx.Pool, rm repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *InviteService {
	return &InviteService{base: newBase(pool, rm, cfg, logger, "invites"), now: time.Now}
}

// Create issues an invite for a company manager, valid for ttl. Staff and
// admins only.
func (s *InviteService) Create(ctx context.Context, pr *access.Principal, company, fname, lname, email string, ttl time.Duration) (*models.Invite, error) {
	if err := requirePrincipal(pr); err != nil {
		return nil, err
	}
	if !pr.IsStaffOrAdmin() {
		return nil, s.deny(ctx, pr, "invite", "new")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invite: non-positive ttl %s", ttl)
	}

	inv := &models.Invite{
		ID:           uuid.NewString(),
		Expiration:   s.now().Add(ttl).UTC(),
		Company:      company,
		ManagerFName: fname,
		ManagerLName: lname,
		ManagerEmail: email,
	}
	err := s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		ok, err := s.rm.Invites(tx).InsertInvite(ctx, inv)
		if err != nil || !ok {
			return false, fmt.Errorf("invite %s: %w", inv.ID, firstErr(err, common.ErrAlreadyExists))
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Redeem consumes invite id: the company is created if needed, the manager
// is registered as its employee with the chosen password and set as the
// company manager. Expired invites are deleted and rejected.
func (s *InviteService) Redeem(ctx context.Context, id, password string) (int64, error) {
	var uid int64
	expired := false
	err := s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		repo := s.rm.Invites(tx)
		inv, err := repo.LoadInvite(ctx, id)
		if err != nil {
			return false, err
		}
		if _, err := repo.DeleteInvite(ctx, id); err != nil {
			return false, err
		}
		if inv.Expired(s.now()) {
			expired = true
			return true, nil
		}

		companies := s.rm.Companies(tx)
		if _, err := companies.InsertCompany(ctx, &models.Company{Name: inv.Company}); err != nil {
			return false, err
		}

		nu := NewUser{FName: inv.ManagerFName, LName: inv.ManagerLName, Email: inv.ManagerEmail}
		if uid, err = registerEmployee(ctx, tx, s.rm, nu, inv.Company, password, false); err != nil {
			return false, err
		}
		if _, err := companies.AlterCompany(ctx, inv.Company, entities.Attrs{"manager": uid}); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	if expired {
		return 0, fmt.Errorf("invite %s: %w", id, common.ErrInviteExpired)
	}
	s.logger.Info(ctx, "invite redeemed", "uid", uid)
	return uid, nil
}
