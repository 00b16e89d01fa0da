// Package scheduler собирает планировщик периодической очистки.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/sponsor-match/internal/config"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	schedulerservice "github.com/magabrotheeeer/sponsor-match/internal/services/scheduler"
	"github.com/magabrotheeeer/sponsor-match/internal/storage/repository"
)

const (
	readyAttempts = 10
	readyDelay    = 3 * time.Second
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	db               *repository.Storage
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage, logger *slog.Logger) error {
	for range readyAttempts {
		err := db.CheckDatabaseReady(ctx)
		if err == nil {
			return nil
		}
		logger.Warn("database not ready yet", sl.Err(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyDelay):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика. Схему создаёт
// HTTP-приложение, поэтому планировщик ждёт появления таблиц.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString, cfg.StorageMaxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err = waitForDB(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	schedulerService := schedulerservice.NewSchedulerService(logger, db, cfg.SchedulerInterval, cfg.SessionMaxAge)

	return &App{
		schedulerService: schedulerService,
		db:               db,
		logger:           logger,
	}, nil
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx)

	a.logger.Info("shutting down scheduler service")
	a.db.Close()
	return nil
}
