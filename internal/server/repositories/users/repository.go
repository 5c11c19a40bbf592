package users

import (
	"context"

	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
)

// Repository covers users and their specialisations: UTD personnel,
// students, faculty and company employees.
type Repository interface {
	NextUserID(ctx context.Context) (int64, error)
	LoadUser(ctx context.Context, id int64) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) (bool, error)
	AlterUser(ctx context.Context, id int64, changes entities.Attrs) (bool, error)
	SetIsUtd(ctx context.Context, id int64, v bool) (bool, error)
	SetIsEmployee(ctx context.Context, id int64, v bool) (bool, error)

	LoadUTDPersonnel(ctx context.Context, uid int64) (*models.UTDPersonnel, error)
	InsertUTDPersonnel(ctx context.Context, p *models.UTDPersonnel) (bool, error)
	AlterUTDPersonnel(ctx context.Context, uid int64, changes entities.Attrs) (bool, error)

	LoadStudent(ctx context.Context, suid int64) (*models.Student, error)
	InsertStudent(ctx context.Context, s *models.Student) (bool, error)
	AlterStudent(ctx context.Context, suid int64, changes entities.Attrs) (bool, error)
	SetSkills(ctx context.Context, suid int64, skills []string) error

	LoadFaculty(ctx context.Context, fuid int64) (*models.Faculty, error)
	InsertFaculty(ctx context.Context, f *models.Faculty) (bool, error)
	AlterFaculty(ctx context.Context, fuid int64, changes entities.Attrs) (bool, error)

	LoadEmployee(ctx context.Context, euid int64) (*models.Employee, error)
	InsertEmployee(ctx context.Context, e *models.Employee) (bool, error)
	AlterEmployee(ctx context.Context, euid int64, changes entities.Attrs) (bool, error)

	SearchUserByEmail(ctx context.Context, email string) (int64, error)
	FindMembersOfTeam(ctx context.Context, tid int64) ([]int64, error)
}
