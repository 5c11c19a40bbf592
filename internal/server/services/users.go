package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/cryptox"
	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/dmitrijs2005/capstone/internal/server/access"
	"github.com/dmitrijs2005/capstone/internal/server/auth"
	"github.com/dmitrijs2005/capstone/internal/server/config"
	"github.com/dmitrijs2005/capstone/internal/server/models"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/entities"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/users"
)

// NewUser is the identity part of every registration.
type NewUser struct {
	FName   string
	LName   string
	Email   string
	Address *string
}

// LoginResult is returned by a successful employee login.
type LoginResult struct {
	Principal *access.Principal
	Token     string
	// MustChangePassword is set while the employee still holds a one-time
	// password.
	MustChangePassword bool
}

type UserService struct {
	base
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewUserService(pool *dbx.Pool, rm repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		base:          newBase(pool, rm, cfg, logger, "users"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.PrincipalTokenValidity,
	}
}

// insertUser allocates an id and writes the user row. The email must be
// unused.
func insertUser(ctx context.Context, repo users.Repository, nu NewUser) (int64, error) {
	if nu.Email == "" {
		return 0, fmt.Errorf("register: empty email")
	}
	if _, err := repo.SearchUserByEmail(ctx, nu.Email); err == nil {
		return 0, fmt.Errorf("user %q: %w", nu.Email, common.ErrAlreadyExists)
	} else if !isNotFound(err) {
		return 0, err
	}

	id, err := repo.NextUserID(ctx)
	if err != nil {
		return 0, err
	}
	ok, err := repo.InsertUser(ctx, &models.User{ID: id, FName: nu.FName, LName: nu.LName, Email: nu.Email, Address: nu.Address})
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("user %d: %w", id, common.ErrAlreadyExists)
	}
	return id, nil
}

// registerUTD runs the shared UTD registration: user row, then inside a
// checkpoint the personnel row, the specialisation and the is_utd flag.
func (s *UserService) registerUTD(ctx context.Context, nu NewUser, p models.UTDPersonnel, specialise func(ctx context.Context, repo users.Repository, uid int64) error) (int64, error) {
	var id int64
	err := s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		repo := s.rm.Users(tx)

		uid, err := insertUser(ctx, repo, nu)
		if err != nil {
			return false, err
		}

		err = tx.Nested(ctx, func(ctx context.Context) error {
			p.UID = uid
			if ok, err := repo.InsertUTDPersonnel(ctx, &p); err != nil || !ok {
				return fmt.Errorf("utd_personnel %d: %w", uid, firstErr(err, common.ErrAlreadyExists))
			}
			if specialise != nil {
				if err := specialise(ctx, repo, uid); err != nil {
					return err
				}
			}
			_, err := repo.SetIsUtd(ctx, uid, true)
			return err
		})
		if err != nil {
			return false, err
		}

		id = uid
		return true, nil
	})
	return id, err
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// RegisterStudent creates a student. MemberOf and Skills are taken from st.
func (s *UserService) RegisterStudent(ctx context.Context, nu NewUser, netID string, st models.Student) (int64, error) {
	return s.registerUTD(ctx, nu, models.UTDPersonnel{UType: models.UTypeStudent, NetID: netID},
		func(ctx context.Context, repo users.Repository, uid int64) error {
			st.SUID = uid
			if ok, err := repo.InsertStudent(ctx, &st); err != nil || !ok {
				return fmt.Errorf("student %d: %w", uid, firstErr(err, common.ErrAlreadyExists))
			}
			return nil
		})
}

// RegisterFaculty creates a faculty member, optionally bound to team slot tid.
func (s *UserService) RegisterFaculty(ctx context.Context, nu NewUser, netID string, tid *int64) (int64, error) {
	return s.registerUTD(ctx, nu, models.UTDPersonnel{UType: models.UTypeFaculty, NetID: netID},
		func(ctx context.Context, repo users.Repository, uid int64) error {
			if ok, err := repo.InsertFaculty(ctx, &models.Faculty{FUID: uid, TID: tid}); err != nil || !ok {
				return fmt.Errorf("faculty %d: %w", uid, firstErr(err, common.ErrAlreadyExists))
			}
			return nil
		})
}

// RegisterStaff creates a staff member. Staff has no specialisation row.
func (s *UserService) RegisterStaff(ctx context.Context, nu NewUser, netID string, isAdmin bool) (int64, error) {
	return s.registerUTD(ctx, nu, models.UTDPersonnel{UType: models.UTypeStaff, NetID: netID, IsAdmin: isAdmin}, nil)
}

// registerEmployee writes the user, employee row and is_employee flag on
// tx. The company must already exist.
func registerEmployee(ctx context.Context, tx *dbx.Tx, rm repomanager.RepositoryManager, nu NewUser, company, password string, oneTime bool) (int64, error) {
	repo := rm.Users(tx)
	uid, err := insertUser(ctx, repo, nu)
	if err != nil {
		return 0, err
	}
	err = tx.Nested(ctx, func(ctx context.Context) error {
		emp := &models.Employee{EUID: uid, WorksAt: company, Password: cryptox.HashPassword(password), OneTimePass: oneTime}
		if ok, err := repo.InsertEmployee(ctx, emp); err != nil || !ok {
			return fmt.Errorf("employee %d: %w", uid, firstErr(err, common.ErrAlreadyExists))
		}
		_, err := repo.SetIsEmployee(ctx, uid, true)
		return err
	})
	return uid, err
}

// RegisterEmployee creates an employee of an existing company with a
// one-time password that must be changed at first login.
func (s *UserService) RegisterEmployee(ctx context.Context, nu NewUser, company, oneTimePassword string) (int64, error) {
	var id int64
	err := s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		if _, err := s.rm.Companies(tx).LoadCompany(ctx, company); err != nil {
			return false, err
		}
		uid, err := registerEmployee(ctx, tx, s.rm, nu, company, oneTimePassword, true)
		if err != nil {
			return false, err
		}
		id = uid
		return true, nil
	})
	return id, err
}

func resolvePrincipal(ctx context.Context, repo users.Repository, uid int64) (*access.Principal, error) {
	u, err := repo.LoadUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	pr := &access.Principal{UserID: u.ID, IsUtd: u.IsUtd, IsEmployee: u.IsEmployee}

	if u.IsUtd {
		p, err := repo.LoadUTDPersonnel(ctx, uid)
		if err != nil {
			return nil, fmt.Errorf("user %d marked utd: %w", uid, err)
		}
		pr.UType = p.UType
		pr.IsAdmin = p.IsAdmin

		switch p.UType {
		case models.UTypeStudent:
			st, err := repo.LoadStudent(ctx, uid)
			if err != nil {
				return nil, err
			}
			if st.MemberOf != nil {
				pr.Teams = []int64{*st.MemberOf}
			}
		case models.UTypeFaculty:
			f, err := repo.LoadFaculty(ctx, uid)
			if err != nil {
				return nil, err
			}
			if f.TID != nil {
				pr.Teams = []int64{*f.TID}
			}
		}
	}

	if u.IsEmployee {
		e, err := repo.LoadEmployee(ctx, uid)
		if err != nil {
			return nil, fmt.Errorf("user %d marked employee: %w", uid, err)
		}
		pr.WorksAt = e.WorksAt
	}
	return pr, nil
}

// ResolvePrincipal builds the access principal of user uid from its rows.
func (s *UserService) ResolvePrincipal(ctx context.Context, uid int64) (*access.Principal, error) {
	var pr *access.Principal
	err := s.doR(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		var err error
		pr, err = resolvePrincipal(ctx, s.rm.Users(tx), uid)
		return err == nil, err
	})
	return pr, err
}

// IssueToken resolves uid and signs a principal token for it.
func (s *UserService) IssueToken(ctx context.Context, uid int64) (string, error) {
	pr, err := s.ResolvePrincipal(ctx, uid)
	if err != nil {
		return "", err
	}
	return auth.GeneratePrincipalToken(*pr, s.jwtSecret, s.tokenValidity)
}

// LoginEmployee checks an employee's email and password. Unknown emails,
// non-employees and wrong passwords all yield common.ErrorUnauthorized.
func (s *UserService) LoginEmployee(ctx context.Context, email, password string) (*LoginResult, error) {
	var res *LoginResult
	err := s.doR(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		repo := s.rm.Users(tx)

		uid, err := repo.SearchUserByEmail(ctx, email)
		if isNotFound(err) {
			return false, common.ErrorUnauthorized
		}
		if err != nil {
			return false, err
		}

		emp, err := repo.LoadEmployee(ctx, uid)
		if isNotFound(err) {
			return false, common.ErrorUnauthorized
		}
		if err != nil {
			return false, err
		}

		ok, err := cryptox.VerifyPassword(emp.Password, password)
		if err != nil {
			s.logger.Warn(ctx, "stored password hash unusable", "uid", uid, "error", err)
			return false, common.ErrorUnauthorized
		}
		if !ok {
			return false, common.ErrorUnauthorized
		}

		pr, err := resolvePrincipal(ctx, repo, uid)
		if err != nil {
			return false, err
		}
		token, err := auth.GeneratePrincipalToken(*pr, s.jwtSecret, s.tokenValidity)
		if err != nil {
			return false, err
		}
		res = &LoginResult{Principal: pr, Token: token, MustChangePassword: emp.OneTimePass}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "employee logged in", "uid", res.Principal.UserID)
	return res, nil
}

// SetEmployeePassword replaces the password of employee euid and clears the
// one-time flag.
func (s *UserService) SetEmployeePassword(ctx context.Context, euid int64, password string) error {
	if password == "" {
		return fmt.Errorf("set password: empty password")
	}
	return s.do(ctx, func(ctx context.Context, tx *dbx.Tx) (bool, error) {
		ok, err := s.rm.Users(tx).AlterEmployee(ctx, euid, entities.Attrs{
			"password":      cryptox.HashPassword(password),
			"one_time_pass": false,
		})
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("employee %d: %w", euid, common.ErrorNotFound)
		}
		return true, nil
	})
}
