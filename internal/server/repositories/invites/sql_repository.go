package invites

import (
	"context"

	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/registry"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
)

type SQLRepository struct {
	e *entities.Repository
}

func NewSQLRepository(db dbx.DBTX, reg *registry.Registry) *SQLRepository {
	return &SQLRepository{e: entities.NewRepository(db, reg)}
}

var _ Repository = (*SQLRepository)(nil)

func (r *SQLRepository) LoadInvite(ctx context.Context, id string) (*models.Invite, error) {
	rec, err := r.e.Load(ctx, registry.Invite, id)
	if err != nil {
		return nil, err
	}
	return &models.Invite{
		ID:           rec.String("invite_id"),
		Expiration:   rec.Time("expiration"),
		Company:      rec.String("company"),
		ManagerFName: rec.String("manager_fname"),
		ManagerLName: rec.String("manager_lname"),
		ManagerEmail: rec.String("manager_email"),
	}, nil
}

func (r *SQLRepository) InsertInvite(ctx context.Context, inv *models.Invite) (bool, error) {
	return r.e.Insert(ctx, registry.Invite, inv.ID, entities.Attrs{
		"expiration":    inv.Expiration.UTC(),
		"company":       inv.Company,
		"manager_fname": inv.ManagerFName,
		"manager_lname": inv.ManagerLName,
		"manager_email": inv.ManagerEmail,
	})
}

// DeleteInvite removes a redeemed invite.
func (r *SQLRepository) DeleteInvite(ctx context.Context, id string) (bool, error) {
	return r.e.Delete(ctx, registry.Invite, id)
}
