// Package services содержит периодическую очистку устаревших данных.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
)

// Repository описывает операции очистки в хранилище.
type Repository interface {
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
	CancelStalePaymentSessions(ctx context.Context, before time.Time) (int64, error)
}

// SchedulerService удаляет просроченные токены подтверждения и отменяет
// зависшие сессии оплаты.
type SchedulerService struct {
	repo          Repository
	log           *slog.Logger
	interval      time.Duration
	sessionMaxAge time.Duration
	now           func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(log *slog.Logger, repo Repository, interval, sessionMaxAge time.Duration) *SchedulerService {
	return &SchedulerService{
		repo:          repo,
		log:           log,
		interval:      interval,
		sessionMaxAge: sessionMaxAge,
		now:           time.Now,
	}
}

// Run выполняет очистку сразу и затем каждые interval до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один проход очистки. Ошибки логируются, следующий
// проход повторит работу.
func (s *SchedulerService) RunOnce(ctx context.Context) {
	now := s.now().UTC()

	tokens, err := s.repo.DeleteExpiredTokens(ctx, now)
	if err != nil {
		s.log.Error("failed to delete expired verification tokens", sl.Err(err))
	} else if tokens > 0 {
		s.log.Info("deleted expired verification tokens", slog.Int64("count", tokens))
	}

	sessions, err := s.repo.CancelStalePaymentSessions(ctx, now.Add(-s.sessionMaxAge))
	if err != nil {
		s.log.Error("failed to cancel stale payment sessions", sl.Err(err))
	} else if sessions > 0 {
		s.log.Info("cancelled stale payment sessions", slog.Int64("count", sessions))
	}
}
