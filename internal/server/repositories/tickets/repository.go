package tickets

import (
	"context"

	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
)

type Repository interface {
	NextTicketID(ctx context.Context) (int64, error)
	LoadTicket(ctx context.Context, hid int64) (*models.HelpTicket, error)
	InsertTicket(ctx context.Context, t *models.HelpTicket) (bool, error)
	AlterTicket(ctx context.Context, hid int64, changes entities.Attrs) (bool, error)
	FindTicketsByStatus(ctx context.Context, status models.HelpStatus) ([]int64, error)
}
