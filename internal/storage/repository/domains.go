package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// UpsertDomainVerification сохраняет код подтверждения домена, заменяя
// прежний код для той же пары пользователь + домен.
func (s *Storage) UpsertDomainVerification(ctx context.Context, dv models.DomainVerification) error {
	const op = "storage.UpsertDomainVerification"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO domain_verifications (user_email, domain, code)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (user_email, domain)
			  DO UPDATE SET code = EXCLUDED.code, verified = FALSE, verified_at = NULL,
			      created_at = NOW()`
	if _, err := s.Pool.Exec(ctx, query, dv.UserEmail, dv.Domain, dv.Code); err != nil {
		return upstream(op, err)
	}
	return nil
}

// GetDomainVerification возвращает запись подтверждения домена.
func (s *Storage) GetDomainVerification(ctx context.Context, email, domain string) (*models.DomainVerification, error) {
	const op = "storage.GetDomainVerification"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var dv models.DomainVerification
	err := s.Pool.QueryRow(ctx, `SELECT user_email, domain, code, verified, created_at, verified_at
			  FROM domain_verifications WHERE user_email = $1 AND domain = $2`, email, domain).
		Scan(&dv.UserEmail, &dv.Domain, &dv.Code, &dv.Verified, &dv.CreatedAt, &dv.VerifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("domain verification", domain)
		}
		return nil, upstream(op, err)
	}
	return &dv, nil
}

// MarkDomainVerified помечает домен подтверждённым.
func (s *Storage) MarkDomainVerified(ctx context.Context, email, domain string) error {
	const op = "storage.MarkDomainVerified"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	tag, err := s.Pool.Exec(ctx, `UPDATE domain_verifications
			  SET verified = TRUE, verified_at = NOW()
			  WHERE user_email = $1 AND domain = $2`, email, domain)
	if err != nil {
		return upstream(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("domain verification", domain)
	}
	return nil
}
