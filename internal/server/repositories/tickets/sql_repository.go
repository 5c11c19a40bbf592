package tickets

import (
	"context"
	"fmt"

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

func (r *SQLRepository) NextTicketID(ctx context.Context) (int64, error) {
	return r.e.NextID(ctx, registry.HelpTicket)
}

func (r *SQLRepository) LoadTicket(ctx context.Context, hid int64) (*models.HelpTicket, error) {
	rec, err := r.e.Load(ctx, registry.HelpTicket, hid)
	if err != nil {
		return nil, err
	}
	return &models.HelpTicket{
		ID:          rec.Int64("hid"),
		Status:      models.HelpStatus(rec.String("h_status")),
		Description: rec.String("h_description"),
		Requestor:   rec.Int64Ptr("requestor"),
	}, nil
}

func (r *SQLRepository) InsertTicket(ctx context.Context, t *models.HelpTicket) (bool, error) {
	attrs := entities.Attrs{
		"h_description": t.Description,
		"requestor":     t.Requestor,
	}
	if t.Status != "" {
		if !t.Status.Valid() {
			return false, fmt.Errorf("insert help_ticket: bad status %q", t.Status)
		}
		attrs["h_status"] = string(t.Status)
	}
	return r.e.Insert(ctx, registry.HelpTicket, t.ID, attrs)
}

func (r *SQLRepository) AlterTicket(ctx context.Context, hid int64, changes entities.Attrs) (bool, error) {
	return r.e.Alter(ctx, registry.HelpTicket, hid, changes)
}

func (r *SQLRepository) FindTicketsByStatus(ctx context.Context, status models.HelpStatus) ([]int64, error) {
	return r.e.QueryInt64s(ctx, "find tickets",
		`SELECT hid FROM help_tickets WHERE h_status = $1 ORDER BY hid`, string(status))
}
