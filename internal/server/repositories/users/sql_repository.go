package users

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

func (r *SQLRepository) NextUserID(ctx context.Context) (int64, error) {
	return r.e.NextID(ctx, registry.User)
}

func (r *SQLRepository) LoadUser(ctx context.Context, id int64) (*models.User, error) {
	rec, err := r.e.Load(ctx, registry.User, id)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:         rec.Int64("user_id"),
		FName:      rec.String("fname"),
		LName:      rec.String("lname"),
		Email:      rec.String("email"),
		Address:    rec.StringPtr("address"),
		IsUtd:      rec.Bool("is_utd"),
		IsEmployee: rec.Bool("is_employee"),
	}, nil
}

// InsertUser creates the user row. IsUtd and IsEmployee are ignored; they
// start false and follow the specialisation rows.
func (r *SQLRepository) InsertUser(ctx context.Context, u *models.User) (bool, error) {
	return r.e.Insert(ctx, registry.User, u.ID, entities.Attrs{
		"fname":   u.FName,
		"lname":   u.LName,
		"email":   u.Email,
		"address": u.Address,
	})
}

func (r *SQLRepository) AlterUser(ctx context.Context, id int64, changes entities.Attrs) (bool, error) {
	return r.e.Alter(ctx, registry.User, id, changes)
}

func (r *SQLRepository) SetIsUtd(ctx context.Context, id int64, v bool) (bool, error) {
	return r.e.SetDerived(ctx, registry.User, id, "is_utd", v)
}

func (r *SQLRepository) SetIsEmployee(ctx context.Context, id int64, v bool) (bool, error) {
	return r.e.SetDerived(ctx, registry.User, id, "is_employee", v)
}

func (r *SQLRepository) LoadUTDPersonnel(ctx context.Context, uid int64) (*models.UTDPersonnel, error) {
	rec, err := r.e.Load(ctx, registry.UTDPersonnel, uid)
	if err != nil {
		return nil, err
	}
	return &models.UTDPersonnel{
		UID:     rec.Int64("uid"),
		UType:   models.UType(rec.String("u_type")),
		NetID:   rec.String("net_id"),
		IsAdmin: rec.Bool("is_admin"),
	}, nil
}

func (r *SQLRepository) InsertUTDPersonnel(ctx context.Context, p *models.UTDPersonnel) (bool, error) {
	if !p.UType.Valid() {
		return false, fmt.Errorf("insert utd_personnel: bad u_type %q", p.UType)
	}
	return r.e.Insert(ctx, registry.UTDPersonnel, p.UID, entities.Attrs{
		"u_type":   string(p.UType),
		"net_id":   p.NetID,
		"is_admin": p.IsAdmin,
	})
}

func (r *SQLRepository) AlterUTDPersonnel(ctx context.Context, uid int64, changes entities.Attrs) (bool, error) {
	return r.e.Alter(ctx, registry.UTDPersonnel, uid, changes)
}

func (r *SQLRepository) LoadStudent(ctx context.Context, suid int64) (*models.Student, error) {
	rec, err := r.e.Load(ctx, registry.Student, suid)
	if err != nil {
		return nil, err
	}
	skills, err := r.e.Set(ctx, "student_skills", "suid", "skill", suid)
	if err != nil {
		return nil, err
	}
	return &models.Student{
		SUID:     rec.Int64("suid"),
		Major:    rec.String("major"),
		Resume:   rec.StringPtr("resume"),
		MemberOf: rec.Int64Ptr("member_of"),
		Skills:   skills,
	}, nil
}

// InsertStudent creates the student row and, when it was created, its
// skill set.
func (r *SQLRepository) InsertStudent(ctx context.Context, s *models.Student) (bool, error) {
	ok, err := r.e.Insert(ctx, registry.Student, s.SUID, entities.Attrs{
		"major":     s.Major,
		"resume":    s.Resume,
		"member_of": s.MemberOf,
	})
	if err != nil || !ok {
		return ok, err
	}
	return true, r.SetSkills(ctx, s.SUID, s.Skills)
}

func (r *SQLRepository) AlterStudent(ctx context.Context, suid int64, changes entities.Attrs) (bool, error) {
	return r.e.Alter(ctx, registry.Student, suid, changes)
}

func (r *SQLRepository) SetSkills(ctx context.Context, suid int64, skills []string) error {
	return r.e.ReplaceSet(ctx, "student_skills", "suid", "skill", suid, skills)
}

func (r *SQLRepository) LoadFaculty(ctx context.Context, fuid int64) (*models.Faculty, error) {
	rec, err := r.e.Load(ctx, registry.Faculty, fuid)
	if err != nil {
		return nil, err
	}
	return &models.Faculty{FUID: rec.Int64("fuid"), TID: rec.Int64Ptr("tid")}, nil
}

func (r *SQLRepository) InsertFaculty(ctx context.Context, f *models.Faculty) (bool, error) {
	return r.e.Insert(ctx, registry.Faculty, f.FUID, entities.Attrs{"tid": f.TID})
}

func (r *SQLRepository) AlterFaculty(ctx context.Context, fuid int64, changes entities.Attrs) (bool, error) {
	return r.e.Alter(ctx, registry.Faculty, fuid, changes)
}

func (r *SQLRepository) LoadEmployee(ctx context.Context, euid int64) (*models.Employee, error) {
	rec, err := r.e.Load(ctx, registry.Employee, euid)
	if err != nil {
		return nil, err
	}
	return &models.Employee{
		EUID:        rec.Int64("euid"),
		WorksAt:     rec.String("works_at"),
		Password:    rec.String("password"),
		OneTimePass: rec.Bool("one_time_pass"),
	}, nil
}

func (r *SQLRepository) InsertEmployee(ctx context.Context, e *models.Employee) (bool, error) {
	return r.e.Insert(ctx, registry.Employee, e.EUID, entities.Attrs{
		"works_at":      e.WorksAt,
		"password":      e.Password,
		"one_time_pass": e.OneTimePass,
	})
}

func (r *SQLRepository) AlterEmployee(ctx context.Context, euid int64, changes entities.Attrs) (bool, error) {
	return r.e.Alter(ctx, registry.Employee, euid, changes)
}

// SearchUserByEmail returns the id of the user with the given email, or
// common.ErrorNotFound.
func (r *SQLRepository) SearchUserByEmail(ctx context.Context, email string) (int64, error) {
	ids, err := r.e.QueryInt64s(ctx, "search user by email",
		`SELECT user_id FROM users WHERE email = $1`, email)
	if err != nil {
		return 0, err
	}
	switch len(ids) {
	case 0:
		return 0, fmt.Errorf("user %q: %w", email, common.ErrorNotFound)
	case 1:
		return ids[0], nil
	default:
		return 0, fmt.Errorf("user %q: %w", email, common.ErrInvariantViolation)
	}
}

// FindMembersOfTeam lists the students on team tid, ordered by id.
func (r *SQLRepository) FindMembersOfTeam(ctx context.Context, tid int64) ([]int64, error) {
	return r.e.QueryInt64s(ctx, "find members of team",
		`SELECT suid FROM students WHERE member_of = $1 ORDER BY suid`, tid)
}
