package paymentprovider

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
)

// Состояния оплаты сессии.
const (
	PaymentStatusPaid   = string(stripe.CheckoutSessionPaymentStatusPaid)
	PaymentStatusUnpaid = string(stripe.CheckoutSessionPaymentStatusUnpaid)
)

// EventCheckoutCompleted приходит после успешной оплаты.
const EventCheckoutCompleted = string(stripe.EventTypeCheckoutSessionCompleted)

// Ключи метаданных сессии.
const (
	MetaUserEmail    = "user_email"
	MetaPaymentType  = "payment_type"
	MetaTargetPostID = "target_post_id"
)

// Customer описывает клиента у провайдера.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CheckoutSessionParams описывает разовый платёж через размещённую страницу оплаты.
type CheckoutSessionParams struct {
	CustomerID  string
	ProductName string
	Description string
	Amount      int64 // в минимальных единицах валюты
	Currency    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession описывает сессию оплаты у провайдера.
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	Customer      string            `json:"customer"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// Paid сообщает, списаны ли деньги.
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// TransactionRef возвращает идентификатор платежа, а без него идентификатор сессии.
func (s *CheckoutSession) TransactionRef() string {
	if s.PaymentIntent != "" {
		return s.PaymentIntent
	}
	return s.ID
}

// Event описывает событие вебхука.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession разбирает объект события как сессию оплаты.
func (e *Event) CheckoutSession() (*CheckoutSession, error) {
	const op = "paymentprovider.Event.CheckoutSession"
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &cs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sessionFromStripe(&cs), nil
}
