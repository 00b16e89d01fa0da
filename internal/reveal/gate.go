// Package reveal решает, видит ли зритель настоящий контакт публикации,
// фиксирует оплаченные раскрытия и проверяет право на создание публикации.
//
// Состояние видимости для пары (зритель, публикация): HIDDEN → PAID, переход
// односторонний и происходит только через RecordUnlock. OWN_POST не хранится
// и вычисляется на каждый запрос.
package reveal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// MaskedContact показывается вместо скрытого контакта. Значение постоянное
// и не зависит от настоящего адреса.
const MaskedContact = "••••••••@••••••••.com"

// Reason объясняет, почему контакт виден или скрыт.
type Reason string

// Причины видимости.
const (
	ReasonOwnPost Reason = "OWN_POST"
	ReasonPaid    Reason = "PAID"
	ReasonHidden  Reason = "HIDDEN"
)

// Visibility возвращается из CanViewContact.
type Visibility struct {
	Visible bool
	Reason  Reason
}

// UnlockResult возвращается из RecordUnlock.
type UnlockResult struct {
	Unlock          models.PaidUnlock
	AlreadyUnlocked bool
}

// Store хранит факты оплаты, которыми пользуется Gate.
//
// InsertUnlockIfAbsent и InsertEntitlementIfAbsent должны быть идемпотентными
// вставками: при существующей записи возвращать false без ошибки.
// FindPostByOwnerEmail возвращает ошибку вида apperror.ErrNotFound, если
// публикации нет.
type Store interface {
	UnlockExists(ctx context.Context, requesterEmail string, postID int64) (bool, error)
	InsertUnlockIfAbsent(ctx context.Context, unlock models.PaidUnlock) (bool, error)
	ListUnlockedPostIDs(ctx context.Context, requesterEmail string) ([]int64, error)
	HasPostingEntitlement(ctx context.Context, email string) (bool, error)
	InsertEntitlementIfAbsent(ctx context.Context, entitlement models.PostingEntitlement) (bool, error)
	FindPostByOwnerEmail(ctx context.Context, email string) (*models.Post, error)
}

// Gate реализует правила раскрытия контактов. Безопасен для конкурентного
// использования, если безопасно хранилище.
type Gate struct {
	store Store
	now   func() time.Time
}

// New создаёт Gate поверх хранилища.
func New(store Store) *Gate {
	return &Gate{
		store: store,
		now:   time.Now,
	}
}

// MaskContact возвращает заглушку вместо настоящего контакта.
func MaskContact(string) string {
	return MaskedContact
}

// CanViewContact проверяет, видит ли viewer контакт target.
// Анонимный зритель (nil) всегда получает HIDDEN.
func (g *Gate) CanViewContact(ctx context.Context, viewer *models.Identity, target models.Post) (Visibility, error) {
	const op = "reveal.CanViewContact"

	if viewer == nil || viewer.Email == "" {
		return Visibility{Reason: ReasonHidden}, nil
	}
	if viewer.Email == target.OwnerEmail {
		return Visibility{Visible: true, Reason: ReasonOwnPost}, nil
	}

	unlocked, err := g.store.UnlockExists(ctx, viewer.Email, target.ID)
	if err != nil {
		return Visibility{}, upstream(op, err)
	}
	if unlocked {
		return Visibility{Visible: true, Reason: ReasonPaid}, nil
	}
	return Visibility{Reason: ReasonHidden}, nil
}

// RequiresPayment возвращает true, если CanViewContact дал бы HIDDEN.
func (g *Gate) RequiresPayment(ctx context.Context, requester *models.Identity, target models.Post) (bool, error) {
	v, err := g.CanViewContact(ctx, requester, target)
	if err != nil {
		return false, err
	}
	return !v.Visible, nil
}

// RecordUnlock фиксирует оплаченное раскрытие контакта. Повторный вызов для
// той же пары, в том числе конкурентный, не создаёт второй записи и
// возвращает AlreadyUnlocked = true.
func (g *Gate) RecordUnlock(ctx context.Context, requester models.Identity, target models.Post, amountPaid int64, txRef string) (UnlockResult, error) {
	const op = "reveal.RecordUnlock"

	switch {
	case requester.Email == "":
		return UnlockResult{}, apperror.ValidationFailed("email", "requester email is required")
	case target.ID <= 0:
		return UnlockResult{}, apperror.ValidationFailed("post_id", "target post id is required")
	case amountPaid < 0:
		return UnlockResult{}, apperror.ValidationFailed("amount", "amount paid must not be negative")
	case requester.Email == target.OwnerEmail:
		return UnlockResult{}, apperror.ValidationFailed("post_id", "cannot unlock own post")
	}

	unlock := models.PaidUnlock{
		RequesterEmail: requester.Email,
		TargetPostID:   target.ID,
		AmountPaid:     amountPaid,
		TransactionRef: txRef,
		RevealedAt:     g.now().UTC(),
	}
	inserted, err := g.store.InsertUnlockIfAbsent(ctx, unlock)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return UnlockResult{Unlock: unlock, AlreadyUnlocked: true}, nil
		}
		return UnlockResult{}, upstream(op, err)
	}
	return UnlockResult{Unlock: unlock, AlreadyUnlocked: !inserted}, nil
}

// GrantPostingEntitlement фиксирует оплату размещения. Возвращает false,
// если право уже было выдано.
func (g *Gate) GrantPostingEntitlement(ctx context.Context, email string, amountPaid int64, txRef string) (bool, error) {
	const op = "reveal.GrantPostingEntitlement"

	if email == "" {
		return false, apperror.ValidationFailed("email", "email is required")
	}
	inserted, err := g.store.InsertEntitlementIfAbsent(ctx, models.PostingEntitlement{
		UserEmail:      email,
		AmountPaid:     amountPaid,
		TransactionRef: txRef,
		PaidAt:         g.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return false, nil
		}
		return false, upstream(op, err)
	}
	return inserted, nil
}

// CheckPostCreation проверяет, может ли requester создать публикацию с
// контактом contact. Без оплаты возвращает ErrPaymentRequired, при
// существующей публикации или чужом контакте возвращает ErrValidation.
func (g *Gate) CheckPostCreation(ctx context.Context, requester models.Identity, contact string) error {
	const op = "reveal.CheckPostCreation"

	if requester.Email == "" {
		return apperror.Unauthorized("authentication required")
	}

	entitled, err := g.store.HasPostingEntitlement(ctx, requester.Email)
	if err != nil {
		return upstream(op, err)
	}
	if !entitled {
		return apperror.PaymentRequired(models.PurposePostingFee, "payment required to create a post")
	}

	_, err = g.store.FindPostByOwnerEmail(ctx, requester.Email)
	switch {
	case err == nil:
		return apperror.ValidationFailed("email", "you already have a post")
	case !errors.Is(err, apperror.ErrNotFound):
		return upstream(op, err)
	}

	if contact != requester.Email {
		return apperror.ValidationFailed("contact_info", "contact email must match your verified email")
	}
	return nil
}

// Apply проецирует публикации для viewer: скрытые контакты заменяются
// заглушкой. Оплаченные раскрытия читаются одним запросом на вызов.
func (g *Gate) Apply(ctx context.Context, viewer *models.Identity, posts []models.Post) ([]models.PostView, error) {
	const op = "reveal.Apply"

	unlocked := make(map[int64]struct{})
	if viewer != nil && viewer.Email != "" && len(posts) > 0 {
		ids, err := g.store.ListUnlockedPostIDs(ctx, viewer.Email)
		if err != nil {
			return nil, upstream(op, err)
		}
		for _, id := range ids {
			unlocked[id] = struct{}{}
		}
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		reason := ReasonHidden
		if viewer != nil && viewer.Email != "" {
			if viewer.Email == p.OwnerEmail {
				reason = ReasonOwnPost
			} else if _, ok := unlocked[p.ID]; ok {
				reason = ReasonPaid
			}
		}
		views = append(views, View(p, Visibility{Visible: reason != ReasonHidden, Reason: reason}))
	}
	return views, nil
}

// View проецирует одну публикацию с уже вычисленной видимостью.
func View(p models.Post, v Visibility) models.PostView {
	if !v.Visible {
		p.ContactInfo = MaskContact(p.ContactInfo)
	}
	return models.PostView{
		Post:          p,
		ContactHidden: !v.Visible,
		ContactReason: string(v.Reason),
	}
}

func upstream(op string, err error) error {
	if _, ok := apperror.As(err); ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return apperror.Upstream(op, err)
}
