package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"subtool/internal/config"
	"subtool/internal/database"
	"subtool/internal/database/migrations"
	"subtool/internal/entities"
	"subtool/internal/run"
	"subtool/internal/tunnel"

	"github.com/google/uuid"
)

// App is the application layer between the CLI and the domain packages.
// It constructs all dependencies from config and manages the log file
// lifecycle on Close.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	logFile *os.File
	runner  run.Runner
	regen   *entities.Regenerator
	exposer *tunnel.Exposer
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "RegenerateEntities").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	runID := uuid.New().String()[:8]
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	// Every record in this run carries the operation name.
	logger = logger.With(slog.String("operation", operation))
	logger.Debug("run started")

	rlog := &slogAdapter{l: logger}
	runner := run.NewOSRunner(rlog)

	return &App{
		cfg:     cfg,
		log:     logger,
		logFile: logFile,
		runner:  runner,
		regen:   entities.New(cfg.Generator, runner, rlog),
		exposer: tunnel.New(cfg.Tunnel, runner, rlog),
	}, nil
}

// RegenerateEntities deletes generated entity files and re-runs the
// external generator. Returns the number of files removed.
func (a *App) RegenerateEntities(ctx context.Context) (int, error) {
	return a.regen.Regenerate(ctx)
}

// ExposeUp registers the service with the tunnel client and prints status.
func (a *App) ExposeUp(ctx context.Context) error {
	return a.exposer.Up(ctx)
}

// ExposeStatus prints the tunnel client's funnel status.
func (a *App) ExposeStatus(ctx context.Context) error {
	return a.exposer.Status(ctx)
}

// MigrateUp applies all pending schema migrations to the service database.
func (a *App) MigrateUp() error {
	db, err := database.OpenConnection(a.cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return migrations.MigrateUp(db)
}

// MigrateStatus reports the service database's schema version.
func (a *App) MigrateStatus() (*migrations.Status, error) {
	db, err := database.OpenConnection(a.cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return migrations.GetStatus(db)
}

// MigrateFresh drops everything in the service database and re-applies
// all migrations.
func (a *App) MigrateFresh() error {
	db, err := database.OpenConnection(a.cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return migrations.Fresh(db)
}

// Close releases the log file.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}
