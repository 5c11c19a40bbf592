package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/dmitrijs2005/capstone/internal/server/access"
	"github.com/dmitrijs2005/capstone/internal/server/config"
	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/repomanager"
)

type ProjectService struct {
	base
}

func NewProjectService(pool *dbx.Pool, rm repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *ProjectService {
	return &ProjectService{base: newBase(pool, rm, cfg, logger, "projects")}
}

// view loads project pid and projects it for pr. A nil view means NONE.
func (s *ProjectService) view(ctx context.Context, tx *dbx.Tx, pr *access.Principal, pid int64) (*access.ProjectView, error) {
	p, err := s.rm.Projects(tx).LoadProject(ctx, pid)
	if err != nil {
		return nil, err
	}

	var assigned *int64
	tid, err := s.rm.Projects(tx).FindProjectAssignedTeam(ctx, pid)
	switch {
	case err == nil:
		assigned = &tid
	case !isNotFound(err):
		return nil, err
	}

	level := access.ProjectLevel(pr, p, assigned)
	if level != access.Full {
		return access.ViewProject(level, p, nil, assigned), nil
	}

	people := access.People{}
	for _, id := range []*int64{p.Mentor, p.Sponsor, p.Advisor} {
		if id == nil {
			continue
		}
		if _, seen := people[*id]; seen {
			continue
		}
		u, err := s.rm.Users(tx).LoadUser(ctx, *id)
		if err != nil {
			return nil, err
		}
		people[*id] = u
	}
	return access.ViewProject(level, p, people, assigned), nil
}

// View returns project pid as pr may see it. NONE is common.ErrorForbidden.
func (s *ProjectService) View(ctx context.Context, pr *access.Principal, pid int64) (*access.ProjectView, error) {
	var v *access.ProjectView
	err := s.doR(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		var err error
		v, err = s.view(ctx, tx, pr, pid)
		return err == nil, err
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, s.deny(ctx, pr, "project", pid)
	}
	return v, nil
}

// List returns every project pr may see, in id order.
func (s *ProjectService) List(ctx context.Context, pr *access.Principal) ([]*access.ProjectView, error) {
	var out []*access.ProjectView
	err := s.doR(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		ids, err := s.rm.Projects(tx).FindAllProjects(ctx)
		if err != nil {
			return false, err
		}
		out = make([]*access.ProjectView, 0, len(ids))
		for _, id := range ids {
			v, err := s.view(ctx, tx, pr, id)
			if err != nil {
				return false, err
			}
			if v != nil {
				out = append(out, v)
			}
		}
		return true, nil
	})
	return out, err
}

// Managed lists the ids of projects uid mentors, sponsors or advises.
func (s *ProjectService) Managed(ctx context.Context, uid int64) ([]int64, error) {
	var ids []int64
	err := s.doR(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		var err error
		ids, err = s.rm.Projects(tx).FindManagesProject(ctx, uid)
		return err == nil, err
	})
	return ids, err
}

// Create proposes a project. Employees propose for their own company and
// always start in the submitted state; staff and admins may set anything.
func (s *ProjectService) Create(ctx context.Context, pr *access.Principal, p models.Project) (int64, error) {
	if err := requirePrincipal(pr); err != nil {
		return 0, err
	}
	switch {
	case pr.IsStaffOrAdmin():
	case pr.IsEmployee && pr.WorksAt != "":
		p.Company = pr.WorksAt
		p.Status = models.StatusSubmitted
	default:
		return 0, s.deny(ctx, pr, "project", "new")
	}

	err := s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		if _, err := s.rm.Companies(tx).LoadCompany(ctx, p.Company); err != nil {
			return false, err
		}
		repo := s.rm.Projects(tx)
		id, err := repo.NextProjectID(ctx)
		if err != nil {
			return false, err
		}
		p.ID = id
		ok, err := repo.InsertProject(ctx, &p)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("project %d: %w", id, common.ErrAlreadyExists)
		}
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "project created", "pid", p.ID, "company", p.Company, "by", pr.UserID)
	return p.ID, nil
}

// reviewOnly lists the project fields only staff and admins may change.
var reviewOnly = []string{"status", "visible", "company"}

// Update applies a partial update. Staff and admins may always update.
// Employees of the owning company may update while the status is
// modifiable, and never touch the review fields. "skills_req" replaces the
// skill set.
func (s *ProjectService) Update(ctx context.Context, pr *access.Principal, pid int64, changes entities.Attrs) (bool, error) {
	if err := requirePrincipal(pr); err != nil {
		return false, err
	}

	changes = cloneAttrs(changes)
	skills, setSkills := changes["skills_req"].([]string)
	delete(changes, "skills_req")

	var updated bool
	err := s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		repo := s.rm.Projects(tx)
		p, err := repo.LoadProject(ctx, pid)
		if err != nil {
			return false, err
		}

		if !pr.IsStaffOrAdmin() {
			if !pr.IsEmployee || pr.WorksAt != p.Company {
				return false, s.deny(ctx, pr, "project", pid)
			}
			if !p.Status.Modifiable() {
				return false, fmt.Errorf("project %d in status %s: %w", pid, p.Status, common.ErrNotModifiable)
			}
			for _, k := range reviewOnly {
				delete(changes, k)
			}
		}

		updated, err = repo.AlterProject(ctx, pid, changes)
		if err != nil {
			return false, err
		}
		if setSkills {
			if err := repo.SetSkills(ctx, pid, skills); err != nil {
				return false, err
			}
			updated = true
		}
		return updated, nil
	})
	return updated, err
}

func cloneAttrs(a entities.Attrs) entities.Attrs {
	out := make(entities.Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
