// Package server wires the captionly backend together: configuration,
// logging, the database, the caption and media providers, the services and
// the HTTP API, and runs it until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/captionly/internal/logging"
	"github.com/dmitrijs2005/captionly/internal/server/config"
	"github.com/dmitrijs2005/captionly/internal/server/httpapi"
	"github.com/dmitrijs2005/captionly/internal/server/providers/caption"
	"github.com/dmitrijs2005/captionly/internal/server/providers/media"
	"github.com/dmitrijs2005/captionly/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/captionly/internal/server/services"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newRepositoryManager = repomanager.NewPostgresRepositoryManager

	newCaptioner = func(ctx context.Context, cfg *config.Config) (caption.Captioner, error) {
		return caption.NewGeminiCaptioner(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}

	newMediaStore = func(ctx context.Context, cfg *config.Config) (media.Store, error) {
		return media.NewS3Store(ctx, media.Options{
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3RootUser,
			SecretKey:     cfg.S3RootPassword,
			BaseEndpoint:  cfg.S3BaseEndpoint,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.PublicBaseURL(),
		})
	}
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	postService *services.PostService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	captioner, err := newCaptioner(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("caption provider init error: %w", err)
	}

	store, err := newMediaStore(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("media store init error: %w", err)
	}

	us := services.NewUserService(db, rm, c)
	ps := services.NewPostService(db, rm, captioner, store, c, logger)

	return &App{config: c, logger: logger, db: db, userService: us, postService: ps}, nil
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
	s := httpapi.NewHTTPServer(app.config, app.logger, app.userService, app.postService)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves the API until ctx is cancelled or a shutdown signal arrives.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
