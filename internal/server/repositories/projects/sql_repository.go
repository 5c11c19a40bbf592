package projects

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/capstone/internal/common"
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

func (r *SQLRepository) NextProjectID(ctx context.Context) (int64, error) {
	return r.e.NextID(ctx, registry.Project)
}

func (r *SQLRepository) LoadProject(ctx context.Context, pid int64) (*models.Project, error) {
	rec, err := r.e.Load(ctx, registry.Project, pid)
	if err != nil {
		return nil, err
	}
	skills, err := r.e.Set(ctx, "project_skills", "proj_id", "skill", pid)
	if err != nil {
		return nil, err
	}
	return &models.Project{
		ID:          rec.Int64("proj_id"),
		Name:        rec.String("p_name"),
		Company:     rec.String("company"),
		Image:       rec.StringPtr("image"),
		ProjDoc:     rec.StringPtr("proj_doc"),
		Description: rec.StringPtr("p_desc"),
		Mentor:      rec.Int64Ptr("mentor"),
		Sponsor:     rec.Int64Ptr("sponsor"),
		Advisor:     rec.Int64Ptr("advisor"),
		Status:      models.ProjectStatus(rec.String("status")),
		Visible:     rec.Bool("visible"),
		SkillsReq:   skills,
	}, nil
}

// InsertProject creates the project and its required skills. An empty
// Status means submitted.
func (r *SQLRepository) InsertProject(ctx context.Context, p *models.Project) (bool, error) {
	attrs := entities.Attrs{
		"p_name":   p.Name,
		"company":  p.Company,
		"image":    p.Image,
		"proj_doc": p.ProjDoc,
		"p_desc":   p.Description,
		"mentor":   p.Mentor,
		"sponsor":  p.Sponsor,
		"advisor":  p.Advisor,
		"visible":  p.Visible,
	}
	if p.Status != "" {
		if !p.Status.Valid() {
			return false, fmt.Errorf("insert project: bad status %q", p.Status)
		}
		attrs["status"] = string(p.Status)
	}

	ok, err := r.e.Insert(ctx, registry.Project, p.ID, attrs)
	if err != nil || !ok {
		return ok, err
	}
	return true, r.SetSkills(ctx, p.ID, p.SkillsReq)
}

func (r *SQLRepository) AlterProject(ctx context.Context, pid int64, changes entities.Attrs) (bool, error) {
	if s, ok := changes["status"]; ok {
		var st models.ProjectStatus
		switch v := s.(type) {
		case string:
			st = models.ProjectStatus(v)
		case models.ProjectStatus:
			st = v
		}
		if !st.Valid() {
			return false, fmt.Errorf("alter project: bad status %v", s)
		}
	}
	return r.e.Alter(ctx, registry.Project, pid, changes)
}

func (r *SQLRepository) SetSkills(ctx context.Context, pid int64, skills []string) error {
	return r.e.ReplaceSet(ctx, "project_skills", "proj_id", "skill", pid, skills)
}

func (r *SQLRepository) FindAllProjects(ctx context.Context) ([]int64, error) {
	return r.e.QueryInt64s(ctx, "find all projects", `SELECT proj_id FROM projects ORDER BY proj_id`)
}

// FindManagesProject lists projects where uid is mentor, sponsor or advisor.
func (r *SQLRepository) FindManagesProject(ctx context.Context, uid int64) ([]int64, error) {
	return r.e.QueryInt64s(ctx, "find manages project",
		`SELECT proj_id FROM projects
		 WHERE mentor = $1 OR sponsor = $1 OR advisor = $1
		 ORDER BY proj_id`, uid)
}

// FindProjectAssignedTeam returns the team assigned to pid, or
// common.ErrorNotFound. If several teams claim the project the lowest id
// wins.
func (r *SQLRepository) FindProjectAssignedTeam(ctx context.Context, pid int64) (int64, error) {
	ids, err := r.e.QueryInt64s(ctx, "find project assigned team",
		`SELECT tid FROM teams WHERE assigned_proj = $1 ORDER BY tid`, pid)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("team for project %d: %w", pid, common.ErrorNotFound)
	}
	return ids[0], nil
}
