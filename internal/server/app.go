// Package server assembles the machinewatch backend: the auth HTTP API and
// the telemetry gateway, both backed by one credential adapter and token
// codec, and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/machinewatch/internal/auth"
	"github.com/dmitrijs2005/machinewatch/internal/credentials"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
	"github.com/dmitrijs2005/machinewatch/internal/server/config"
	"github.com/dmitrijs2005/machinewatch/internal/server/httpapi"
	"github.com/dmitrijs2005/machinewatch/internal/server/repositories/repomanager"

	gs "github.com/dmitrijs2005/machinewatch/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	store   *credentials.PostgresStore
	adapter *credentials.Adapter
	codec   *auth.Codec
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	secret, dev, err := c.Secret()
	if err != nil {
		return nil, err
	}
	if dev {
		logger.Warn(ctx, "JWT_SECRET is not set, signing tokens with the public development secret")
	}

	repos := repomanager.NewPostgresRepositoryManager()

	var (
		store   credentials.Store
		pgStore *credentials.PostgresStore
	)
	if c.Store.Enabled() {
		pgStore = credentials.NewPostgresStore(c.Store, credentials.WithRepository(repos.Users))
		store = pgStore
	}

	adapter := credentials.NewAdapter(store, credentials.FallbackUsers(), logger)
	if adapter.StoreEnabled() {
		logger.Info(ctx, "user store enabled", "host", c.Store.DBHost, "port", c.Store.DBPort, "database", c.Store.DBName)
	} else {
		logger.Info(ctx, "user store disabled, only fallback accounts can sign in")
	}

	return &App{
		config:  c,
		logger:  logger,
		repos:   repos,
		store:   pgStore,
		adapter: adapter,
		codec:   auth.NewCodec(secret),
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

func (app *App) migrate(ctx context.Context) error {
	if !app.config.RunMigrations || app.store == nil {
		return nil
	}
	db, err := app.store.DB()
	if err != nil {
		return err
	}
	if err := app.repos.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	app.logger.Info(ctx, "user store schema is up to date")
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewAuthHandler(app.adapter, app.codec, app.logger)
	s := httpapi.NewServer(app.config.HTTPAddr, httpapi.NewRouter(h, app.logger), app.config.ShutdownTimeout, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.TelemetryAddr, app.codec, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.migrate(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.store != nil {
		if err := app.store.Close(); err != nil {
			app.logger.Warn(ctx, "closing user store", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
