// Package app composes the storage layer's dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database handle (postgres or sqlite)
//   - the storage facade
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/estate-storage/internal/config"
	"github.com/deppfellow/estate-storage/internal/database"
	"github.com/deppfellow/estate-storage/internal/repository"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/estate-storage/internal/logger"
)

// App is the container that holds shared resources.
type App struct {
	Config *config.Config

	Logger *zerolog.Logger

	// LoggerService holds the New Relic application when one is configured.
	LoggerService *loggerPkg.LoggerService

	DB *database.Database

	// Storage is a reloaded facade ready for use.
	Storage *repository.DBStorage
}

// Load reads the configuration from the environment and builds an App.
func Load(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg)
}

// New builds the logger, opens the database, applies migrations and
// reloads a storage session.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loggerService := loggerPkg.NewLoggerService(cfg.Observability)
	logger := loggerPkg.NewLoggerWithService(cfg.Observability, loggerService)

	db, err := database.New(cfg, &logger, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	storage := repository.NewDBStorage(db, &logger,
		repository.WithSlowQueryThreshold(cfg.Observability.Logging.SlowQueryThreshold))
	if err := storage.Reload(ctx); err != nil {
		_ = db.Close()
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to reload storage: %w", err)
	}

	logger.Info().
		Str("driver", cfg.Database.Driver).
		Str("env", cfg.Primary.Env).
		Msg("storage ready")

	return &App{
		Config:        cfg,
		Logger:        &logger,
		LoggerService: loggerService,
		DB:            db,
		Storage:       storage,
	}, nil
}

// Shutdown closes the storage session and the database, then flushes
// New Relic. Every step runs even if an earlier one fails.
func (a *App) Shutdown() error {
	var errList []error

	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			errList = append(errList, fmt.Errorf("failed to close storage: %w", err))
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errList = append(errList, fmt.Errorf("failed to close database connection: %w", err))
		}
	}

	a.LoggerService.Shutdown()

	return errors.Join(errList...)
}
