package companies

import (
	"context"

	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
)

type Repository interface {
	LoadCompany(ctx context.Context, name string) (*models.Company, error)
	InsertCompany(ctx context.Context, c *models.Company) (bool, error)
	AlterCompany(ctx context.Context, name string, changes entities.Attrs) (bool, error)
	FindEmployees(ctx context.Context, name string) ([]int64, error)
}
