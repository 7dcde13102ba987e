// Package server assembles the auth service: it opens storage, builds the
// hasher, token codec, notification sender and services, and runs the HTTP
// and gRPC endpoints until the process is signalled.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/notifications"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	repos          repomanager.RepositoryManager
	registry       *prometheus.Registry
	metrics        *metrics.Metrics
	credentials    *services.CredentialService
	sessionService *services.SessionService
}

// NewApp builds every component from c. The config must already be valid.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger := logging.NewJSONLogger(logOut, c.LogLevel)

	repos, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(c.PasswordHasher, c.BcryptCost)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, err
	}

	sender, err := newSender(c, logger)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, err
	}

	codec := auth.NewTokenCodec()
	strategy, err := services.NewTokenSessionStrategy(hasher, codec, services.TokenKeysFromConfig(c).Session)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, err
	}

	registry := metrics.NewRegistry()
	m := metrics.New(registry)
	opts := []services.Option{services.WithLogger(logger), services.WithMetrics(m)}

	return &App{
		config:         c,
		logger:         logger,
		repos:          repos,
		registry:       registry,
		metrics:        m,
		credentials:    services.NewCredentialService(repos.Users(), hasher, codec, sender, c, opts...),
		sessionService: services.NewSessionService(strategy, repos.Users(), opts...),
	}, nil
}

func newSender(c *config.Config, logger logging.Logger) (notifications.Sender, error) {
	switch c.NotificationsDriver {
	case config.NotificationsHTTP:
		return notifications.NewHTTPSender(c.NotificationsURI, c.NotificationsPath, c.NotificationsSender, c.NotificationsTimeout), nil
	case config.NotificationsSMTP:
		return notifications.NewSMTPSender(c.SMTPHost, c.SMTPPort, c.SMTPUsername, c.SMTPPassword,
			c.NotificationsSender, c.ResetPasswordURL, c.InvitationURL), nil
	case config.NotificationsLog:
		return notifications.NewLogSender(logger.With("module", "notifications")), nil
	default:
		return nil, fmt.Errorf("unknown notifications driver %q", c.NotificationsDriver)
	}
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
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessionService)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.credentials, app.sessionService, app.metrics, app.registry)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "closing storage failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
