package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// CreatePaymentSession сохраняет новую сессию оплаты в статусе pending.
func (s *Storage) CreatePaymentSession(ctx context.Context, session models.PaymentSession) error {
	const op = "storage.CreatePaymentSession"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	var target *int64
	if session.TargetPostID > 0 {
		target = &session.TargetPostID
	}
	query := `INSERT INTO payment_sessions (id, user_email, purpose, amount, target_post_id, status)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.Pool.Exec(ctx, query, session.ID, session.UserEmail, session.Purpose,
		session.Amount, target, models.SessionPending)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("payment session", session.ID)
		}
		return upstream(op, err)
	}
	return nil
}

// GetPaymentSession возвращает сохранённую сессию оплаты.
func (s *Storage) GetPaymentSession(ctx context.Context, id string) (*models.PaymentSession, error) {
	const op = "storage.GetPaymentSession"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, user_email, purpose, amount, COALESCE(target_post_id, 0), status,
			      created_at, completed_at
			  FROM payment_sessions WHERE id = $1`
	var ps models.PaymentSession
	err := s.Pool.QueryRow(ctx, query, id).Scan(&ps.ID, &ps.UserEmail, &ps.Purpose, &ps.Amount,
		&ps.TargetPostID, &ps.Status, &ps.CreatedAt, &ps.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("payment session", id)
		}
		return nil, upstream(op, err)
	}
	return &ps, nil
}

// CompletePaymentSession переводит сессию из pending или cancelled в completed
// и в той же транзакции пишет строку журнала оплат. Отменённая планировщиком
// сессия всё ещё может быть оплачена на странице провайдера, поэтому поздний
// вебхук её завершает. Возвращает false, если сессия уже completed: переход
// и запись журнала происходят один раз.
func (s *Storage) CompletePaymentSession(ctx context.Context, id string, at time.Time) (bool, error) {
	const op = "storage.CompletePaymentSession"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	completed := false
	err := pgx.BeginFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		var p models.UserPayment
		err := tx.QueryRow(ctx, `UPDATE payment_sessions
				  SET status = $2, completed_at = $3
				  WHERE id = $1 AND status IN ($4, $5)
				  RETURNING user_email, purpose, amount`,
			id, models.SessionCompleted, at, models.SessionPending, models.SessionCancelled).Scan(&p.UserEmail, &p.Purpose, &p.Amount)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, `INSERT INTO user_payments (user_email, purpose, amount, session_id, paid_at)
				  VALUES ($1, $2, $3, $4, $5)`, p.UserEmail, p.Purpose, p.Amount, id, at); err != nil {
			return err
		}
		completed = true
		return nil
	})
	if err != nil {
		return false, upstream(op, err)
	}
	return completed, nil
}

// CancelStalePaymentSessions помечает cancelled сессии, оставшиеся в
// pending с момента раньше before.
func (s *Storage) CancelStalePaymentSessions(ctx context.Context, before time.Time) (int64, error) {
	const op = "storage.CancelStalePaymentSessions"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	tag, err := s.Pool.Exec(ctx, `UPDATE payment_sessions SET status = $1
			  WHERE status = $2 AND created_at < $3`,
		models.SessionCancelled, models.SessionPending, before)
	if err != nil {
		return 0, upstream(op, err)
	}
	return tag.RowsAffected(), nil
}

// ListUserPayments возвращает журнал оплат пользователя, новые первыми.
func (s *Storage) ListUserPayments(ctx context.Context, email string) ([]models.UserPayment, error) {
	const op = "storage.ListUserPayments"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.Pool.Query(ctx, `SELECT user_email, purpose, amount, session_id, paid_at
			  FROM user_payments WHERE user_email = $1 ORDER BY paid_at DESC, id DESC`, email)
	if err != nil {
		return nil, upstream(op, err)
	}
	payments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserPayment, error) {
		var p models.UserPayment
		err := row.Scan(&p.UserEmail, &p.Purpose, &p.Amount, &p.SessionID, &p.PaidAt)
		return p, err
	})
	if err != nil {
		return nil, upstream(op, err)
	}
	return payments, nil
}
