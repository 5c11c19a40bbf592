package teams

import (
	"context"

	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
)

type Repository interface {
	NextTeamID(ctx context.Context) (int64, error)
	LoadTeam(ctx context.Context, tid int64) (*models.Team, error)
	InsertTeam(ctx context.Context, t *models.Team) (bool, error)
	AlterTeam(ctx context.Context, tid int64, changes entities.Attrs) (bool, error)
	FindAllTeams(ctx context.Context) ([]int64, error)

	Choices(ctx context.Context, tid int64) ([]models.Choice, error)
	ClearChoices(ctx context.Context, tid int64) error
	InsertChoice(ctx context.Context, c models.Choice) error
}
