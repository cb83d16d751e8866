package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/chatgate/internal/chatgate/http"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/metrics"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/ratelimit"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/service"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/store"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/store/drivers/memory"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/store/drivers/sqlite"
	"github.com/aussiebroadwan/chatgate/pkg/cryptox"
	"github.com/aussiebroadwan/chatgate/pkg/jwtx"
	"github.com/aussiebroadwan/chatgate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the chat gateway with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	codec   *jwtx.Codec
	limiter *ratelimit.Limiter
	metrics *metrics.Collector

	// Services
	userService  *service.UserService
	tokenService *service.TokenService
	authService  *service.AuthService
	chatService  *service.ChatService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "chatgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initStore(); err != nil {
		return nil, err
	}

	if err := app.initCodec(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initLimiter()
	app.initServices()

	if err := app.seedUser(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("chat gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
		"global_limit", app.cfg.GlobalLimit,
		"user_limit", app.cfg.UserLimit,
		"rate_window", app.cfg.RateWindow,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down chat gateway...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("chat gateway stopped")
	return nil
}

// Handler exposes the fully-wired HTTP handler for in-process tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// initStore initializes the configured store driver and applies migrations
func (app *Application) initStore() error {
	switch app.cfg.StoreDriver {
	case "memory", "":
		app.db = memory.NewStore()

	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db

	default:
		return fmt.Errorf("unknown store driver %q", app.cfg.StoreDriver)
	}

	if err := app.db.ApplyMigrations(); err != nil {
		_ = app.db.Close()
		return fmt.Errorf("failed to apply store migrations: %w", err)
	}

	app.logger.Info("store initialized", "driver", app.cfg.StoreDriver)
	return nil
}

// initCodec sets up the token signer. Without a configured secret an
// ephemeral one is generated, which invalidates every outstanding token
// on restart.
func (app *Application) initCodec() error {
	secret := app.cfg.Secret
	if secret == "" {
		secret = cryptox.MustGenerateSecret(cryptox.SecretSize256)
		app.logger.Warn("CHATGATE_SECRET not set, generated ephemeral signing secret; tokens will not survive a restart")
	}

	codec, err := jwtx.NewCodec([]byte(secret), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec
	return nil
}

func (app *Application) initLimiter() {
	global := ratelimit.DefaultGlobal
	user := ratelimit.DefaultUser

	if app.cfg.GlobalLimit > 0 {
		global.Limit = app.cfg.GlobalLimit
	}
	if app.cfg.UserLimit > 0 {
		user.Limit = app.cfg.UserLimit
	}
	if app.cfg.RateWindow > 0 {
		global.Window = app.cfg.RateWindow
		user.Window = app.cfg.RateWindow
	}

	app.limiter = ratelimit.New(global, user)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.metrics = metrics.NewCollector()

	app.userService = &service.UserService{
		Store:   app.db,
		Metrics: app.metrics,
	}

	app.tokenService = &service.TokenService{
		Users:     app.userService,
		Codec:     app.codec,
		AccessTTL: app.cfg.AccessTTL,
	}

	app.authService = &service.AuthService{
		Store:   app.db,
		Codec:   app.codec,
		Metrics: app.metrics,
	}

	app.chatService = &service.ChatService{
		Store:   app.db,
		Limiter: app.limiter,
		Replier: service.NewCannedReplier(),
		Metrics: app.metrics,
	}
}

// seedUser creates the configured bootstrap account when the store is
// empty, so a fresh deployment has something to log in with.
func (app *Application) seedUser(ctx context.Context) error {
	if app.cfg.SeedUsername == "" {
		return nil
	}

	empty, err := app.db.Users().IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing users: %w", err)
	}
	if !empty {
		return nil
	}

	password := app.cfg.SeedPassword
	generated := false
	if password == "" {
		password, err = cryptox.GeneratePassword()
		if err != nil {
			return fmt.Errorf("failed to generate seed password: %w", err)
		}
		generated = true
	}

	if _, err := app.userService.Register(ctx, app.cfg.SeedUsername, password, "", ""); err != nil {
		return fmt.Errorf("failed to seed user %q: %w", app.cfg.SeedUsername, err)
	}

	if generated {
		// One-time credential for a fresh deployment; rotate it after first login.
		app.logger.Warn("seeded initial user with generated password",
			"username", app.cfg.SeedUsername,
			"password", password,
		)
	} else {
		app.logger.Info("seeded initial user", "username", app.cfg.SeedUsername)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger, app.cfg.CORSOrigins)

	// Wire services to router
	router.AuthService = app.authService
	router.UserService = app.userService
	router.TokenService = app.tokenService
	router.ChatService = app.chatService
	router.Metrics = app.metrics
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
