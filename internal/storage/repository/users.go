package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

const userColumns = `uid::text, email, password_hash, verified,
	COALESCE(payment_customer_id, ''), created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.UUID, &u.Email, &u.PasswordHash, &u.Verified,
		&u.PaymentCustomerID, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser сохраняет неподтверждённого пользователя и возвращает его UID.
// Занятая почта даёт apperror.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, email, passwordHash string) (string, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	var uid string
	query := `INSERT INTO users (email, password_hash)
			  VALUES ($1, $2)
			  RETURNING uid::text`
	if err := s.Pool.QueryRow(ctx, query, email, passwordHash).Scan(&uid); err != nil {
		if isUniqueViolation(err) {
			return "", apperror.Conflict("account", email)
		}
		return "", upstream(op, err)
	}
	return uid, nil
}

// GetUserByEmail возвращает пользователя по почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("account", email)
		}
		return nil, upstream(op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE uid::text = $1`, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("account", uid)
		}
		return nil, upstream(op, err)
	}
	return u, nil
}

// ResetUnverifiedPassword меняет хэш пароля неподтверждённого пользователя.
// Для подтверждённого пользователя ничего не меняет и возвращает false.
func (s *Storage) ResetUnverifiedPassword(ctx context.Context, email, passwordHash string) (bool, error) {
	const op = "storage.ResetUnverifiedPassword"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	tag, err := s.Pool.Exec(ctx, `UPDATE users SET password_hash = $2
			  WHERE email = $1 AND verified = FALSE`, email, passwordHash)
	if err != nil {
		return false, upstream(op, err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetPaymentCustomerID сохраняет идентификатор клиента у платёжного провайдера.
func (s *Storage) SetPaymentCustomerID(ctx context.Context, email, customerID string) error {
	const op = "storage.SetPaymentCustomerID"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	tag, err := s.Pool.Exec(ctx, `UPDATE users SET payment_customer_id = $2 WHERE email = $1`,
		email, customerID)
	if err != nil {
		return upstream(op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("account", email)
	}
	return nil
}

// CreateVerificationToken сохраняет токен подтверждения, заменяя прежние
// токены пользователя.
func (s *Storage) CreateVerificationToken(ctx context.Context, token models.VerificationToken) error {
	const op = "storage.CreateVerificationToken"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	err := pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM verification_tokens WHERE user_email = $1`,
			token.UserEmail); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO verification_tokens (token, user_email, expires_at)
				  VALUES ($1, $2, $3)`, token.Token, token.UserEmail, token.ExpiresAt)
		return err
	})
	if err != nil {
		return upstream(op, err)
	}
	return nil
}

// ConsumeVerificationToken атомарно удаляет токен и, если он не истёк к
// моменту now, помечает пользователя подтверждённым. Возвращает почту
// пользователя; неизвестный или истёкший токен даёт apperror.ErrNotFound.
func (s *Storage) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (string, error) {
	const op = "storage.ConsumeVerificationToken"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	var email string
	err := pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		var expiresAt time.Time
		if err := tx.QueryRow(ctx, `DELETE FROM verification_tokens WHERE token = $1
				  RETURNING user_email, expires_at`, token).Scan(&email, &expiresAt); err != nil {
			return err
		}
		if !now.Before(expiresAt) {
			return pgx.ErrNoRows
		}
		_, err := tx.Exec(ctx, `UPDATE users SET verified = TRUE WHERE email = $1`, email)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperror.NotFound("verification token", token)
		}
		return "", upstream(op, err)
	}
	return email, nil
}

// DeleteExpiredTokens удаляет токены, истёкшие к моменту now.
func (s *Storage) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.DeleteExpiredTokens"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	tag, err := s.Pool.Exec(ctx, `DELETE FROM verification_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, upstream(op, err)
	}
	return tag.RowsAffected(), nil
}
