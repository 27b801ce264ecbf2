// Package server wires the note store: it picks the storage backend, applies
// migrations, and runs the HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/devnotes/internal/buildinfo"
	"github.com/dmitrijs2005/devnotes/internal/logging"
	"github.com/dmitrijs2005/devnotes/internal/server/auth"
	"github.com/dmitrijs2005/devnotes/internal/server/config"
	"github.com/dmitrijs2005/devnotes/internal/server/httpapi"
	"github.com/dmitrijs2005/devnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/devnotes/internal/server/services"
)

// devTokenSubject is the subject of the token logged at startup.
const devTokenSubject = "devnotes-dev"

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	noteService *services.NoteService
}

// NewApp opens storage: in memory when no DSN is configured, PostgreSQL
// with migrations applied otherwise.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	var rm repomanager.RepositoryManager
	if c.DatabaseDSN == "" {
		logger.Info(ctx, "Using in-memory storage")
		rm = repomanager.NewInMemoryRepositoryManager()
	} else {
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager(db)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		noteService: services.NewNoteService(rm),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) logDevToken(ctx context.Context) {
	if app.config.SecretKey == "" {
		app.logger.Warn(ctx, "No secret key configured, authentication is disabled")
		return
	}
	token, err := auth.GenerateToken(devTokenSubject, []byte(app.config.SecretKey), app.config.TokenValidityDuration)
	if err != nil {
		app.logger.Error(ctx, "dev token generation failed", "error", err)
		return
	}
	app.logger.Info(ctx, "Development access token", "token", token, "valid_for", app.config.TokenValidityDuration.String())
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddr, app.logger, app.noteService, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal is received.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "version", buildinfo.Version())

	app.initSignalHandler(cancelFunc)
	app.logDevToken(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "storage close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
