package models

import (
	"fmt"
	"time"
)

// PaymentPurpose задаёт назначение платежа.
type PaymentPurpose string

const (
	// PurposePostingFee обозначает разовый сбор за размещение публикации.
	PurposePostingFee PaymentPurpose = "posting_fee"
	// PurposeContactReveal обозначает оплату раскрытия контакта конкретной публикации.
	PurposeContactReveal PaymentPurpose = "contact_reveal"
)

// ParsePaymentPurpose проверяет значение из метаданных платежа.
func ParsePaymentPurpose(s string) (PaymentPurpose, error) {
	switch PaymentPurpose(s) {
	case PurposePostingFee:
		return PurposePostingFee, nil
	case PurposeContactReveal:
		return PurposeContactReveal, nil
	}
	return "", fmt.Errorf("unknown payment purpose %q", s)
}

// SessionStatus задаёт состояние платёжной сессии.
type SessionStatus string

// Состояния платёжной сессии.
const (
	SessionPending   SessionStatus = "pending"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionCancelled SessionStatus = "cancelled"
)

// PaymentSession хранит сессию оплаты у провайдера.
type PaymentSession struct {
	ID           string         `json:"session_id"`
	UserEmail    string         `json:"-"`
	Purpose      PaymentPurpose `json:"payment_type"`
	Amount       int64          `json:"amount"`
	TargetPostID int64          `json:"target_post_id,omitempty"` // Только для PurposeContactReveal
	Status       SessionStatus  `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// UserPayment пишется в журнал оплат один раз на завершённую сессию.
type UserPayment struct {
	UserEmail string         `json:"-"`
	Purpose   PaymentPurpose `json:"payment_type"`
	Amount    int64          `json:"amount"`
	SessionID string         `json:"session_id"`
	PaidAt    time.Time      `json:"paid_at"`
}

// PaidUnlock фиксирует оплаченное раскрытие контакта. Пара
// (RequesterEmail, TargetPostID) уникальна, записи не отзываются.
type PaidUnlock struct {
	RequesterEmail string
	TargetPostID   int64
	AmountPaid     int64
	TransactionRef string
	RevealedAt     time.Time
}

// PostingEntitlement фиксирует оплату сбора за размещение, не больше одного на аккаунт.
type PostingEntitlement struct {
	UserEmail      string
	AmountPaid     int64
	TransactionRef string
	PaidAt         time.Time
}

// PaymentStatus сводит оплаты пользователя.
type PaymentStatus struct {
	HasPaidForPosting bool    `json:"has_paid_for_posting"`
	RevealedPostIDs   []int64 `json:"revealed_post_ids"`
}

// CheckoutResult возвращается клиенту после создания сессии оплаты.
type CheckoutResult struct {
	SessionID  string         `json:"session_id"`
	SessionURL string         `json:"session_url"`
	Amount     int64          `json:"amount"`
	Currency   string         `json:"currency"`
	Purpose    PaymentPurpose `json:"payment_type"`
}

// ReceiptMessage публикуется в очередь уведомлений после успешной оплаты.
type ReceiptMessage struct {
	Email        string         `json:"email"`
	Purpose      PaymentPurpose `json:"payment_type"`
	Amount       int64          `json:"amount"`
	Currency     string         `json:"currency"`
	TargetPostID int64          `json:"target_post_id,omitempty"`
}
