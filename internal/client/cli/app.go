package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/machinewatch/internal/auth"
	"github.com/dmitrijs2005/machinewatch/internal/client/client"
	"github.com/dmitrijs2005/machinewatch/internal/client/config"
	"github.com/dmitrijs2005/machinewatch/internal/client/services"
	"github.com/dmitrijs2005/machinewatch/internal/client/session"
	"github.com/dmitrijs2005/machinewatch/internal/client/telemetry"
	"github.com/dmitrijs2005/machinewatch/internal/credentials"
	"github.com/dmitrijs2005/machinewatch/internal/logging"
)

// authService is the slice of services.AuthService the console drives.
type authService interface {
	Restore(ctx context.Context)
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context)
	IsAuthenticated(ctx context.Context) bool
	Status(ctx context.Context) services.SystemStatus
	StartSessionWatcher(ctx context.Context, interval time.Duration)
	Close(ctx context.Context) error
}

type App struct {
	config      *config.Config
	authService authService
	logger      logging.Logger
	reader      *bufio.Reader
	out         io.Writer
	closers     []io.Closer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "error initializing database", "dsn", c.DatabaseDSN, "error", err)
		return nil, err
	}

	secret, dev := c.Secret()
	switch {
	case dev:
		logger.Warn(ctx, "JWT_SECRET is not set, local tokens use the public development secret")
	case len(secret) == 0:
		logger.Warn(ctx, "no signing secret, local tokens are self-asserted and the gateway will refuse them")
	}
	codec := auth.NewCodec(secret)

	restricted := services.IsRestrictedEndpoint(c.ServerEndpointAddr)

	var remote client.Client
	if !restricted {
		hc, err := client.NewHTTPClient(c.ServerEndpointAddr, client.WithTokenPeeker(codec))
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		remote = hc
		logger.Debug(ctx, "backend client ready", "host", hc.Host())
	} else {
		logger.Info(ctx, "restricted mode, signing in against built-in accounts only", "endpoint", c.ServerEndpointAddr)
	}

	closers := []io.Closer{db}

	var store credentials.Store
	if c.Store.Enabled() {
		pg := credentials.NewPostgresStore(c.Store)
		store = pg
		closers = append(closers, pg)
	}

	dialer := telemetry.NewGRPCDialer(c.TelemetryAddr)
	logger.Debug(ctx, "telemetry channel configured", "address", c.TelemetryAddr, "client_id", dialer.ClientID())

	tel := telemetry.NewCoordinator(
		dialer,
		logger,
		telemetry.WithConnectTimeout(c.ConnectTimeout),
	)

	creds := credentials.NewAdapter(store, credentials.FallbackUsers(), logger)
	if !restricted && !creds.StoreEnabled() {
		logger.Debug(ctx, "user store disabled, offline sign-in uses built-in accounts")
	}

	as := services.NewAuthService(
		remote,
		creds,
		codec,
		session.NewStore(db, logger),
		tel,
		logger,
		services.WithRestricted(restricted),
		services.WithRemoteTimeout(c.RemoteTimeout),
		services.WithTelemetryGrace(c.TelemetryGrace),
	)

	return &App{
		config:      c,
		authService: as,
		logger:      logger,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		closers:     closers,
	}, nil
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.authService.IsAuthenticated(ctx)
}

// Run restores the previous session, starts the expiry watcher and serves
// the REPL on stdin until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.authService.Restore(ctx)

	if a.config.SessionCheckInterval > 0 {
		go a.authService.StartSessionWatcher(ctx, a.config.SessionCheckInterval)
	}

	printlnFn("machinewatch console (type 'help' for commands)")
	runREPL(ctx, a, a.prompt, a.reader)

	return a.Close(ctx)
}

// Close releases the auth service and local resources.
func (a *App) Close(ctx context.Context) error {
	errs := []error{a.authService.Close(ctx)}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
