// Package admin implements the operator command line: schema migration,
// database reset, employee passwords, principal tokens and access-checked
// views of projects and teams.
package admin

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/dmitrijs2005/capstone/internal/server/config"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/capstone/internal/server/services"
)

const oneTimePasswordBytes = 8

// ErrUsage is returned for an unknown command or bad arguments.
var ErrUsage = errors.New("usage")

const usage = `Usage: admin <command> [args] [flags]

Commands:
  migrate                  apply pending schema migrations
  reset                    delete every row (asks for confirmation)
  add-employee <company> <email> [fname] [lname]
                           register an employee with a one-time password
  set-password <euid>      set an employee password
  token <uid>              print a principal token for a user
  view-project <uid> <pid> show a project as user uid sees it
  view-team <uid> <tid>    show a team as user uid sees it`

type App struct {
	logger   logging.Logger
	pool     *dbx.Pool
	users    *services.UserService
	projects *services.ProjectService
	teams    *services.TeamService
	admin    *services.AdminService
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the configured database and builds the services.
func NewApp(c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, "text", c.LogLevel)

	rm, err := repomanager.NewSQLRepositoryManager(c.DatabaseDriver, nil)
	if err != nil {
		return nil, err
	}
	pool, err := dbx.Open(c.DatabaseDriver, c.DatabaseDSN, c.PoolSize, logger)
	if err != nil {
		return nil, err
	}
	return newApp(c, pool, rm, logger, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, pool *dbx.Pool, rm repomanager.RepositoryManager, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		logger:   logger,
		pool:     pool,
		users:    services.NewUserService(pool, rm, c, logger),
		projects: services.NewProjectService(pool, rm, c, logger),
		teams:    services.NewTeamService(pool, rm, c, logger),
		admin:    services.NewAdminService(pool, rm, c, logger),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

func (a *App) Close() error {
	return a.pool.Close()
}

// Positional returns the leading arguments up to the first flag.
func Positional(args []string) []string {
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return args[:i]
		}
	}
	return args
}

// Run executes one command. args[0] is the command name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, usage)
		return nil
	case "migrate":
		if err := a.admin.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Schema is up to date")
		return nil
	case "reset":
		return a.reset(ctx)
	case "add-employee":
		return a.addEmployee(ctx, rest)
	case "set-password":
		ids, err := parseIDs(rest, 1)
		if err != nil {
			return err
		}
		return a.setPassword(ctx, ids[0])
	case "token":
		ids, err := parseIDs(rest, 1)
		if err != nil {
			return err
		}
		token, err := a.users.IssueToken(ctx, ids[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, token)
		return nil
	case "view-project":
		ids, err := parseIDs(rest, 2)
		if err != nil {
			return err
		}
		pr, err := a.users.ResolvePrincipal(ctx, ids[0])
		if err != nil {
			return err
		}
		v, err := a.projects.View(ctx, pr, ids[1])
		if err != nil {
			return err
		}
		return a.printJSON(v.Level.String(), v)
	case "view-team":
		ids, err := parseIDs(rest, 2)
		if err != nil {
			return err
		}
		pr, err := a.users.ResolvePrincipal(ctx, ids[0])
		if err != nil {
			return err
		}
		v, err := a.teams.View(ctx, pr, ids[1])
		if err != nil {
			return err
		}
		return a.printJSON(v.Level.String(), v)
	}

	fmt.Fprintln(a.out, "Unknown command:", cmd)
	fmt.Fprintln(a.out, usage)
	return ErrUsage
}

func parseIDs(args []string, n int) ([]int64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: expected %d id argument(s), got %d", ErrUsage, n, len(args))
	}
	ids := make([]int64, n)
	for i, s := range args {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad id %q", ErrUsage, s)
		}
		ids[i] = id
	}
	return ids, nil
}

func (a *App) reset(ctx context.Context) error {
	answer, err := GetSimpleText(a.reader, "This deletes every row. Type RESET to confirm.", a.out)
	if err != nil {
		return err
	}
	if answer != "RESET" {
		fmt.Fprintln(a.out, "Aborted")
		return nil
	}
	if err := a.admin.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Database cleared")
	return nil
}

func (a *App) addEmployee(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 4 {
		return fmt.Errorf("%w: add-employee <company> <email> [fname] [lname]", ErrUsage)
	}
	nu := services.NewUser{Email: args[1]}
	if len(args) > 2 {
		nu.FName = args[2]
	}
	if len(args) > 3 {
		nu.LName = args[3]
	}

	pw, err := common.MakeRandHexString(oneTimePasswordBytes)
	if err != nil {
		return err
	}
	uid, err := a.users.RegisterEmployee(ctx, nu, args[0], pw)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Employee %d registered, one-time password: %s\n", uid, pw)
	return nil
}

func (a *App) setPassword(ctx context.Context, euid int64) error {
	pw, err := GetPassword(a.out, "New password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)
	again, err := GetPassword(a.out, "Repeat password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if len(pw) == 0 {
		return errors.New("password must not be empty")
	}
	if !bytes.Equal(pw, again) {
		return errors.New("passwords do not match")
	}
	if err := a.users.SetEmployeePassword(ctx, euid, string(pw)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated")
	return nil
}

func (a *App) printJSON(level string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "access: %s\n%s\n", level, b)
	return nil
}
