package projects

import (
	"context"

	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
)

type Repository interface {
	NextProjectID(ctx context.Context) (int64, error)
	LoadProject(ctx context.Context, pid int64) (*models.Project, error)
	InsertProject(ctx context.Context, p *models.Project) (bool, error)
	AlterProject(ctx context.Context, pid int64, changes entities.Attrs) (bool, error)
	SetSkills(ctx context.Context, pid int64, skills []string) error

	FindAllProjects(ctx context.Context) ([]int64, error)
	FindManagesProject(ctx context.Context, uid int64) ([]int64, error)
	FindProjectAssignedTeam(ctx context.Context, pid int64) (int64, error)
}
