// Package repository реализует хранилище маркетплейса на PostgreSQL через
// пул соединений pgx: публикации, учётные записи, токены подтверждения,
// оплаченные раскрытия, права на размещение, платёжные сессии, жалобы и
// подтверждения доменов.
//
// Все ошибки возвращаются как *apperror.AppError: отсутствие строки даёт
// apperror.ErrNotFound, нарушение уникальности apperror.ErrConflict,
// остальные сбои apperror.ErrUpstream.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
)

// Storage инкапсулирует пул соединений с PostgreSQL.
type Storage struct {
	Pool *pgxpool.Pool
}

// New создаёт пул соединений и проверяет доступность базы.
func New(ctx context.Context, storageConnectionString string, maxConns int32) (*Storage, error) {
	const op = "storage.New"

	cfg, err := pgxpool.ParseConfig(storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: parse dsn: %w", op, err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: connect: %w", op, err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Storage{
		Pool: pool,
	}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	s.Pool.Close()
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// CheckDatabaseReady проверяет, что миграции применены.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.Pool.QueryRow(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'posts'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("required table posts query error: %w", err)
	}
	if !exists {
		return errors.New("required table posts missing")
	}
	return nil
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return apperror.Upstream(op, ctx.Err())
	default:
		return nil
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func upstream(op string, err error) error {
	return apperror.Upstream(op, err)
}
