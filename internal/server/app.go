// Package server wires configuration, logging, the connection pool and the
// gRPC health endpoint into a runnable process with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/capstone/internal/dbx"
	"github.com/dmitrijs2005/capstone/internal/logging"
	"github.com/dmitrijs2005/capstone/internal/server/config"
	"github.com/dmitrijs2005/capstone/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/capstone/internal/server/services"

	gs "github.com/dmitrijs2005/capstone/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	pool   *dbx.Pool
	admin  *services.AdminService
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, "json", c.LogLevel)

	rm, err := repomanager.NewSQLRepositoryManager(c.DatabaseDriver, nil)
	if err != nil {
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}

	pool, err := dbx.Open(c.DatabaseDriver, c.DatabaseDSN, c.PoolSize, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{
		config: c,
		logger: logger,
		pool:   pool,
		admin:  services.NewAdminService(pool, rm, c, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.pool, app.config.HealthInterval, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the schema and serves until a signal arrives or the server
// fails. The pool is closed on the way out.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer func() {
		if err := app.pool.Close(); err != nil {
			app.logger.Error(ctx, "closing pool", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	if err := app.admin.Migrate(ctx); err != nil {
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return nil
}
