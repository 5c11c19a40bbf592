package teams

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/registry"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
)

type SQLRepository struct {
	db dbx.DBTX
	e  *entities.Repository
}

func NewSQLRepository(db dbx.DBTX, reg *registry.Registry) *SQLRepository {
	return &SQLRepository{db: db, e: entities.NewRepository(db, reg)}
}

var _ Repository = (*SQLRepository)(nil)

func (r *SQLRepository) NextTeamID(ctx context.Context) (int64, error) {
	return r.e.NextID(ctx, registry.Team)
}

func (r *SQLRepository) LoadTeam(ctx context.Context, tid int64) (*models.Team, error) {
	rec, err := r.e.Load(ctx, registry.Team, tid)
	if err != nil {
		return nil, err
	}
	choices, err := r.Choices(ctx, tid)
	if err != nil {
		return nil, err
	}
	return &models.Team{
		ID:           rec.Int64("tid"),
		Name:         rec.String("name"),
		AssignedProj: rec.Int64Ptr("assigned_proj"),
		Budget:       rec.Int64("budget"),
		Leader:       rec.Int64Ptr("leader"),
		MembLimit:    rec.Int64("memb_limit"),
		Password:     rec.StringPtr("password"),
		Comments:     rec.StringPtr("comments"),
		Choices:      choices,
	}, nil
}

// InsertTeam creates the team. A zero MembLimit takes the default. Choices
// are written separately.
func (r *SQLRepository) InsertTeam(ctx context.Context, t *models.Team) (bool, error) {
	attrs := entities.Attrs{
		"name":          t.Name,
		"assigned_proj": t.AssignedProj,
		"budget":        t.Budget,
		"leader":        t.Leader,
		"password":      t.Password,
		"comments":      t.Comments,
	}
	if t.MembLimit > 0 {
		attrs["memb_limit"] = t.MembLimit
	}
	return r.e.Insert(ctx, registry.Team, t.ID, attrs)
}

func (r *SQLRepository) AlterTeam(ctx context.Context, tid int64, changes entities.Attrs) (bool, error) {
	return r.e.Alter(ctx, registry.Team, tid, changes)
}

func (r *SQLRepository) FindAllTeams(ctx context.Context) ([]int64, error) {
	return r.e.QueryInt64s(ctx, "find all teams", `SELECT tid FROM teams ORDER BY tid`)
}

// Choices returns the ranked choices of team tid in rank order.
func (r *SQLRepository) Choices(ctx context.Context, tid int64) ([]models.Choice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tid, ranking, pid FROM choices WHERE tid = $1 ORDER BY ranking`, tid)
	if err != nil {
		return nil, entities.StorageErr("choices", err)
	}
	defer rows.Close()

	out := []models.Choice{}
	for rows.Next() {
		var (
			c   models.Choice
			pid sql.NullInt64
		)
		if err := rows.Scan(&c.TID, &c.Ranking, &pid); err != nil {
			return nil, entities.StorageErr("choices", err)
		}
		if pid.Valid {
			c.PID = &pid.Int64
		}
		out = append(out, c)
	}
	return out, entities.StorageErr("choices", rows.Err())
}

func (r *SQLRepository) ClearChoices(ctx context.Context, tid int64) error {
	_, err := r.e.Exec(ctx, "clear choices", `DELETE FROM choices WHERE tid = $1`, tid)
	return err
}

// InsertChoice writes one ranked choice. The ranking must be within
// 0..models.MaxChoices-1; a duplicate rank fails in storage.
func (r *SQLRepository) InsertChoice(ctx context.Context, c models.Choice) error {
	if c.Ranking < 0 || c.Ranking >= models.MaxChoices {
		return fmt.Errorf("choice rank %d: %w", c.Ranking, common.ErrInvalidChoices)
	}
	var pid any
	if c.PID != nil {
		pid = *c.PID
	}
	_, err := r.e.Exec(ctx, "insert choice",
		`INSERT INTO choices (tid, ranking, pid) VALUES ($1, $2, $3)`, c.TID, c.Ranking, pid)
	return err
}
