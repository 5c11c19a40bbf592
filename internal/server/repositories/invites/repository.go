package invites

import (
	"context"

	"github.com/dmitrijs2005/capstone/internal/server/models"
)

type Repository interface {
	LoadInvite(ctx context.Context, id string) (*models.Invite, error)
	InsertInvite(ctx context.Context, inv *models.Invite) (bool, error)
	DeleteInvite(ctx context.Context, id string) (bool, error)
}
