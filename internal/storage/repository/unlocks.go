package repository

import (
	"context"

	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// UnlockExists проверяет, оплатил ли requesterEmail раскрытие контакта postID.
func (s *Storage) UnlockExists(ctx context.Context, requesterEmail string, postID int64) (bool, error) {
	const op = "storage.UnlockExists"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS (
			      SELECT 1 FROM contact_reveals
			      WHERE requester_email = $1 AND target_post_id = $2
			  )`
	if err := s.Pool.QueryRow(ctx, query, requesterEmail, postID).Scan(&exists); err != nil {
		return false, upstream(op, err)
	}
	return exists, nil
}

// InsertUnlockIfAbsent сохраняет факт раскрытия, если его ещё нет.
// Возвращает true, только если запись была вставлена этим вызовом.
func (s *Storage) InsertUnlockIfAbsent(ctx context.Context, unlock models.PaidUnlock) (bool, error) {
	const op = "storage.InsertUnlockIfAbsent"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	query := `INSERT INTO contact_reveals (requester_email, target_post_id, amount_paid,
			      transaction_ref, revealed_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (requester_email, target_post_id) DO NOTHING`
	tag, err := s.Pool.Exec(ctx, query, unlock.RequesterEmail, unlock.TargetPostID,
		unlock.AmountPaid, unlock.TransactionRef, unlock.RevealedAt)
	if err != nil {
		return false, upstream(op, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListUnlockedPostIDs возвращает идентификаторы публикаций, контакты которых
// оплатил requesterEmail, в порядке оплаты.
func (s *Storage) ListUnlockedPostIDs(ctx context.Context, requesterEmail string) ([]int64, error) {
	const op = "storage.ListUnlockedPostIDs"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.Pool.Query(ctx, `SELECT target_post_id FROM contact_reveals
			  WHERE requester_email = $1 ORDER BY revealed_at, id`, requesterEmail)
	if err != nil {
		return nil, upstream(op, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, upstream(op, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, upstream(op, err)
	}
	return ids, nil
}

// HasPostingEntitlement проверяет, оплачено ли размещение для email.
func (s *Storage) HasPostingEntitlement(ctx context.Context, email string) (bool, error) {
	const op = "storage.HasPostingEntitlement"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM posting_entitlements WHERE user_email = $1)`
	if err := s.Pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, upstream(op, err)
	}
	return exists, nil
}

// InsertEntitlementIfAbsent сохраняет право на размещение, если его ещё нет.
func (s *Storage) InsertEntitlementIfAbsent(ctx context.Context, e models.PostingEntitlement) (bool, error) {
	const op = "storage.InsertEntitlementIfAbsent"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	query := `INSERT INTO posting_entitlements (user_email, amount_paid, transaction_ref, paid_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_email) DO NOTHING`
	tag, err := s.Pool.Exec(ctx, query, e.UserEmail, e.AmountPaid, e.TransactionRef, e.PaidAt)
	if err != nil {
		return false, upstream(op, err)
	}
	return tag.RowsAffected() == 1, nil
}
