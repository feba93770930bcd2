// Package server initializes and runs the SafeVault server: it loads
// configuration, connects the credential store, constructs the core
// components, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/DmytroLysachenko/safe-vault/internal/logging"
	"github.com/DmytroLysachenko/safe-vault/internal/server/auth"
	"github.com/DmytroLysachenko/safe-vault/internal/server/config"
	"github.com/DmytroLysachenko/safe-vault/internal/server/httpapi"
	"github.com/DmytroLysachenko/safe-vault/internal/server/repositories/repomanager"
	"github.com/DmytroLysachenko/safe-vault/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	um, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	issuer, err := auth.NewTokenIssuer(cfg.SecretKey, cfg.TokenIssuer, cfg.TokenAudience, cfg.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	db := um.Conn()
	as := services.NewAuthService(db, um, hasher)
	rs := services.NewRoleService(db, um)
	ss := services.NewSubmissionService()

	srv := httpapi.NewServer(cfg.EndpointAddr, logger, as, rs, ss, issuer)

	return &App{config: cfg, logger: logger, server: srv}, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
