// Package paymentprovider оборачивает Stripe Checkout: клиенты, сессии оплаты
// и разбор подписанных вебхуков. Наружу отдаются только собственные типы пакета.
package paymentprovider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
)

const maxNetworkRetries = 2

// Client обращается к API провайдера с секретным ключом.
type Client struct {
	customers customer.Client
	sessions  session.Client
}

// NewClient создаёт клиент. Пустой apiURL означает адрес Stripe по умолчанию.
func NewClient(log *slog.Logger, apiURL, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	config := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		LeveledLogger:     &leveledLogger{log: log.With(slog.String("component", "stripe"))},
		MaxNetworkRetries: stripe.Int64(maxNetworkRetries),
	}
	if apiURL != "" {
		config.URL = stripe.String(apiURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, config)
	return &Client{
		customers: customer.Client{B: backend, Key: secretKey},
		sessions:  session.Client{B: backend, Key: secretKey},
	}
}

// CreateCustomer создаёт клиента с почтой email.
func (c *Client) CreateCustomer(ctx context.Context, email string) (*Customer, error) {
	const op = "paymentprovider.CreateCustomer"

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	cus, err := c.customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Customer{ID: cus.ID, Email: cus.Email}, nil
}

// CreateCheckoutSession создаёт сессию оплаты на фиксированную сумму.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*CheckoutSession, error) {
	const op = "paymentprovider.CreateCheckoutSession"

	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(p.ProductName),
	}
	if p.Description != "" {
		product.Description = stripe.String(p.Description)
	}
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(p.SuccessURL),
		CancelURL:          stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(p.Currency),
					UnitAmount:  stripe.Int64(p.Amount),
					ProductData: product,
				},
			},
		},
	}
	if p.CustomerID != "" {
		params.Customer = stripe.String(p.CustomerID)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	cs, err := c.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sessionFromStripe(cs), nil
}

// GetCheckoutSession возвращает сессию оплаты по идентификатору.
func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	const op = "paymentprovider.GetCheckoutSession"

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	cs, err := c.sessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sessionFromStripe(cs), nil
}

// IsNotFound сообщает, что провайдер не знает запрошенный объект.
func IsNotFound(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound
}

func sessionFromStripe(cs *stripe.CheckoutSession) *CheckoutSession {
	s := &CheckoutSession{
		ID:            cs.ID,
		URL:           cs.URL,
		Status:        string(cs.Status),
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		Metadata:      cs.Metadata,
	}
	if cs.Customer != nil {
		s.Customer = cs.Customer.ID
	}
	if cs.PaymentIntent != nil {
		s.PaymentIntent = cs.PaymentIntent.ID
	}
	return s
}
