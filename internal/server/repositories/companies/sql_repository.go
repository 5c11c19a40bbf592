package companies

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

func (r *SQLRepository) LoadCompany(ctx context.Context, name string) (*models.Company, error) {
	rec, err := r.e.Load(ctx, registry.Company, name)
	if err != nil {
		return nil, err
	}
	return &models.Company{
		Name:    rec.String("name"),
		Logo:    rec.StringPtr("logo"),
		Manager: rec.Int64Ptr("manager"),
	}, nil
}

func (r *SQLRepository) InsertCompany(ctx context.Context, c *models.Company) (bool, error) {
	return r.e.Insert(ctx, registry.Company, c.Name, entities.Attrs{
		"logo":    c.Logo,
		"manager": c.Manager,
	})
}

func (r *SQLRepository) AlterCompany(ctx context.Context, name string, changes entities.Attrs) (bool, error) {
	return r.e.Alter(ctx, registry.Company, name, changes)
}

func (r *SQLRepository) FindEmployees(ctx context.Context, name string) ([]int64, error) {
	return r.e.QueryInt64s(ctx, "find employees",
		`SELECT euid FROM employees WHERE works_at = $1 ORDER BY euid`, name)
}
