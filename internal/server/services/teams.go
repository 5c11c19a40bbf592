package services

import (
	"context"
	"crypto/subtle"
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

type TeamService struct {
	base
}

func NewTeamService(pool *dbx.Pool, rm repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *TeamService {
	return &TeamService{base: newBase(pool, rm, cfg, logger, "teams")}
}

func (s *TeamService) members(ctx context.Context, tx *dbx.Tx, tid int64) ([]access.Member, error) {
	repo := s.rm.Users(tx)
	ids, err := repo.FindMembersOfTeam(ctx, tid)
	if err != nil {
		return nil, err
	}
	out := make([]access.Member, 0, len(ids))
	for _, id := range ids {
		u, err := repo.LoadUser(ctx, id)
		if err != nil {
			return nil, err
		}
		st, err := repo.LoadStudent(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, access.Member{User: u, Student: st})
	}
	return out, nil
}

// View returns team tid as pr may see it. NONE is common.ErrorForbidden.
func (s *TeamService) View(ctx context.Context, pr *access.Principal, tid int64) (*access.TeamView, error) {
	var v *access.TeamView
	err := s.doR(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		team, err := s.rm.Teams(tx).LoadTeam(ctx, tid)
		if err != nil {
			return false, err
		}
		level := access.TeamLevel(pr, team)
		if level == access.None {
			return true, nil
		}
		members, err := s.members(ctx, tx, tid)
		if err != nil {
			return false, err
		}
		v = access.ViewTeam(level, team, members)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, s.deny(ctx, pr, "team", tid)
	}
	return v, nil
}

// List returns every team pr may see, in id order.
func (s *TeamService) List(ctx context.Context, pr *access.Principal) ([]*access.TeamView, error) {
	var out []*access.TeamView
	err := s.doR(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		ids, err := s.rm.Teams(tx).FindAllTeams(ctx)
		if err != nil {
			return false, err
		}
		for _, id := range ids {
			team, err := s.rm.Teams(tx).LoadTeam(ctx, id)
			if err != nil {
				return false, err
			}
			level := access.TeamLevel(pr, team)
			if level == access.None {
				continue
			}
			members, err := s.members(ctx, tx, id)
			if err != nil {
				return false, err
			}
			out = append(out, access.ViewTeam(level, team, members))
		}
		return true, nil
	})
	return out, err
}

// Create makes a team. A student without a team becomes its first member
// and leader; staff and admins create empty teams.
func (s *TeamService) Create(ctx context.Context, pr *access.Principal, t models.Team) (int64, error) {
	if err := requirePrincipal(pr); err != nil {
		return 0, err
	}
	student := pr.IsUtd && pr.UType == models.UTypeStudent
	if !student && !pr.IsStaffOrAdmin() {
		return 0, s.deny(ctx, pr, "team", "new")
	}
	if student && len(pr.Teams) > 0 {
		return 0, common.ErrAlreadyOnTeam
	}

	err := s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		repo := s.rm.Teams(tx)
		id, err := repo.NextTeamID(ctx)
		if err != nil {
			return false, err
		}
		t.ID = id
		t.Leader = nil
		if ok, err := repo.InsertTeam(ctx, &t); err != nil || !ok {
			return false, fmt.Errorf("team %d: %w", id, firstErr(err, common.ErrAlreadyExists))
		}
		if !student {
			return true, nil
		}

		err = tx.Nested(ctx, func(ctx context.Context) error {
			if err := s.join(ctx, tx, pr.UserID, id); err != nil {
				return err
			}
			_, err := repo.AlterTeam(ctx, id, entities.Attrs{"leader": pr.UserID})
			return err
		})
		return err == nil, err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "team created", "tid", t.ID, "by", pr.UserID)
	return t.ID, nil
}

// join puts student suid on team tid if the student is free and the team
// has room.
func (s *TeamService) join(ctx context.Context, tx *dbx.Tx, suid, tid int64) error {
	users := s.rm.Users(tx)
	st, err := users.LoadStudent(ctx, suid)
	if err != nil {
		return err
	}
	if st.MemberOf != nil {
		return common.ErrAlreadyOnTeam
	}

	team, err := s.rm.Teams(tx).LoadTeam(ctx, tid)
	if err != nil {
		return err
	}
	members, err := users.FindMembersOfTeam(ctx, tid)
	if err != nil {
		return err
	}
	if int64(len(members)) >= team.MembLimit {
		return fmt.Errorf("team %d: %w", tid, common.ErrTeamFull)
	}

	ok, err := users.AlterStudent(ctx, suid, entities.Attrs{"member_of": tid})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("student %d: %w", suid, common.ErrorNotFound)
	}
	return nil
}

// Join puts the calling student on team tid. Password-protected teams need
// the matching password.
func (s *TeamService) Join(ctx context.Context, pr *access.Principal, tid int64, password string) error {
	if err := requirePrincipal(pr); err != nil {
		return err
	}
	if !pr.IsUtd || pr.UType != models.UTypeStudent {
		return s.deny(ctx, pr, "team", tid)
	}

	return s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		team, err := s.rm.Teams(tx).LoadTeam(ctx, tid)
		if err != nil {
			return false, err
		}
		if team.HasPassword() && subtle.ConstantTimeCompare([]byte(*team.Password), []byte(password)) != 1 {
			return false, s.deny(ctx, pr, "team", tid)
		}
		if err := s.join(ctx, tx, pr.UserID, tid); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Leave takes the calling student off their team. A leader leaving clears
// the team's leader.
func (s *TeamService) Leave(ctx context.Context, pr *access.Principal) error {
	if err := requirePrincipal(pr); err != nil {
		return err
	}
	return s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		st, err := s.rm.Users(tx).LoadStudent(ctx, pr.UserID)
		if err != nil {
			return false, err
		}
		if st.MemberOf == nil {
			return false, nil
		}
		team, err := s.rm.Teams(tx).LoadTeam(ctx, *st.MemberOf)
		if err != nil {
			return false, err
		}
		if team.Leader != nil && *team.Leader == pr.UserID {
			if _, err := s.rm.Teams(tx).AlterTeam(ctx, team.ID, entities.Attrs{"leader": nil}); err != nil {
				return false, err
			}
		}
		return s.rm.Users(tx).AlterStudent(ctx, pr.UserID, entities.Attrs{"member_of": nil})
	})
}

func validChoices(pids []int64) bool {
	if len(pids) > models.MaxChoices {
		return false
	}
	seen := make(map[int64]struct{}, len(pids))
	for _, pid := range pids {
		if _, dup := seen[pid]; dup {
			return false
		}
		seen[pid] = struct{}{}
	}
	return true
}

// SetChoices replaces the ranked project choices of team tid; pids[0] is
// rank 0. Members, the advising faculty, staff and admins may set them.
// The rewrite runs under a checkpoint so a failure leaves the previous
// choices in place.
func (s *TeamService) SetChoices(ctx context.Context, pr *access.Principal, tid int64, pids []int64) error {
	if err := requirePrincipal(pr); err != nil {
		return err
	}
	if !pr.OnTeam(tid) && !pr.IsStaffOrAdmin() {
		return s.deny(ctx, pr, "team", tid)
	}
	if !validChoices(pids) {
		return common.ErrInvalidChoices
	}

	return s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		repo := s.rm.Teams(tx)
		if _, err := repo.LoadTeam(ctx, tid); err != nil {
			return false, err
		}
		err := tx.Nested(ctx, func(ctx context.Context) error {
			if err := repo.ClearChoices(ctx, tid); err != nil {
				return err
			}
			for rank, pid := range pids {
				if _, err := s.rm.Projects(tx).LoadProject(ctx, pid); err != nil {
					if isNotFound(err) {
						return fmt.Errorf("project %d: %w", pid, common.ErrInvalidChoices)
					}
					return err
				}
				if err := repo.InsertChoice(ctx, models.Choice{TID: tid, Ranking: rank, PID: &pid}); err != nil {
					return err
				}
			}
			return nil
		})
		return err == nil, err
	})
}

// Choices returns the ranked choices of team tid if pr may see the team in
// full.
func (s *TeamService) Choices(ctx context.Context, pr *access.Principal, tid int64) ([]models.Choice, error) {
	var out []models.Choice
	err := s.doR(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		team, err := s.rm.Teams(tx).LoadTeam(ctx, tid)
		if err != nil {
			return false, err
		}
		if access.TeamLevel(pr, team) != access.Full {
			return false, s.deny(ctx, pr, "team", tid)
		}
		out = team.Choices
		return true, nil
	})
	return out, err
}
