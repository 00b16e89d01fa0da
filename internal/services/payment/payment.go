// Package payment управляет оплатой сборов: создаёт сессии оплаты у
// провайдера и по подтверждению оплаты выдаёт право на размещение или
// фиксирует раскрытие контакта.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/config"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/metrics"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
	"github.com/magabrotheeeer/sponsor-match/internal/paymentprovider"
	"github.com/magabrotheeeer/sponsor-match/internal/reveal"
)

// Repository описывает хранилище, нужное сервису оплаты.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetPaymentCustomerID(ctx context.Context, email, customerID string) error
	FindPostByID(ctx context.Context, id int64) (*models.Post, error)
	HasPostingEntitlement(ctx context.Context, email string) (bool, error)
	ListUnlockedPostIDs(ctx context.Context, requesterEmail string) ([]int64, error)
	CreatePaymentSession(ctx context.Context, session models.PaymentSession) error
	GetPaymentSession(ctx context.Context, id string) (*models.PaymentSession, error)
	// CompletePaymentSession переводит сессию из pending или cancelled в
	// completed и пишет запись журнала. Возвращает false, если сессия уже completed.
	CompletePaymentSession(ctx context.Context, id string, at time.Time) (bool, error)
	ListUserPayments(ctx context.Context, email string) ([]models.UserPayment, error)
}

// Gate проверяет раскрытие контактов и выдаёт права на размещение.
type Gate interface {
	CanViewContact(ctx context.Context, viewer *models.Identity, target models.Post) (reveal.Visibility, error)
	RecordUnlock(ctx context.Context, requester models.Identity, target models.Post, amountPaid int64, txRef string) (reveal.UnlockResult, error)
	GrantPostingEntitlement(ctx context.Context, email string, amountPaid int64, txRef string) (bool, error)
}

// Provider обращается к платёжному провайдеру.
type Provider interface {
	CreateCustomer(ctx context.Context, email string) (*paymentprovider.Customer, error)
	CreateCheckoutSession(ctx context.Context, p paymentprovider.CheckoutSessionParams) (*paymentprovider.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*paymentprovider.CheckoutSession, error)
}

// Publisher отправляет уведомления в очередь.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// PaymentService реализует сценарии оплаты.
type PaymentService struct {
	repo      Repository
	gate      Gate
	provider  Provider
	publisher Publisher
	cfg       config.Payment
	log       *slog.Logger
	now       func() time.Time
}

// New создает новый экземпляр PaymentService.
func New(log *slog.Logger, cfg config.Payment, repo Repository, gate Gate, provider Provider, publisher Publisher) *PaymentService {
	return &PaymentService{
		repo:      repo,
		gate:      gate,
		provider:  provider,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// StartPostingCheckout создаёт сессию оплаты сбора за размещение.
func (s *PaymentService) StartPostingCheckout(ctx context.Context, identity models.Identity) (*models.CheckoutResult, error) {
	const op = "payment.StartPostingCheckout"

	entitled, err := s.repo.HasPostingEntitlement(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if entitled {
		return nil, apperror.ValidationFailed("payment_type", "posting fee already paid")
	}

	return s.startCheckout(ctx, identity, models.PaymentSession{
		UserEmail: identity.Email,
		Purpose:   models.PurposePostingFee,
		Amount:    s.cfg.PostingFee,
	}, "Post publication fee", "One-time fee to publish your profile")
}

// StartRevealCheckout создаёт сессию оплаты раскрытия контакта публикации postID.
func (s *PaymentService) StartRevealCheckout(ctx context.Context, identity models.Identity, postID int64) (*models.CheckoutResult, error) {
	const op = "payment.StartRevealCheckout"

	if postID <= 0 {
		return nil, apperror.ValidationFailed("post_id", "post id must be positive")
	}
	target, err := s.repo.FindPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	vis, err := s.gate.CanViewContact(ctx, &identity, *target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if vis.Visible {
		return nil, apperror.ValidationFailed("post_id", "contact is already visible")
	}

	return s.startCheckout(ctx, identity, models.PaymentSession{
		UserEmail:    identity.Email,
		Purpose:      models.PurposeContactReveal,
		Amount:       s.cfg.RevealFee,
		TargetPostID: postID,
	}, "Contact reveal", "Reveal contact for post "+strconv.FormatInt(postID, 10))
}

func (s *PaymentService) startCheckout(ctx context.Context, identity models.Identity, session models.PaymentSession, product, description string) (*models.CheckoutResult, error) {
	const op = "payment.startCheckout"

	customerID, err := s.customerID(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metadata := map[string]string{
		paymentprovider.MetaUserEmail:   identity.Email,
		paymentprovider.MetaPaymentType: string(session.Purpose),
	}
	if session.TargetPostID > 0 {
		metadata[paymentprovider.MetaTargetPostID] = strconv.FormatInt(session.TargetPostID, 10)
	}

	base := strings.TrimRight(s.cfg.PaymentBaseURL, "/")
	cs, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CheckoutSessionParams{
		CustomerID:  customerID,
		ProductName: product,
		Description: description,
		Amount:      session.Amount,
		Currency:    s.cfg.Currency,
		SuccessURL:  base + "/api/v1/payments/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   base + "/?payment=cancelled",
		Metadata:    metadata,
	})
	if err != nil {
		return nil, apperror.Upstream(op, err)
	}

	session.ID = cs.ID
	session.Status = models.SessionPending
	if err = s.repo.CreatePaymentSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.CheckoutSessions.WithLabelValues(string(session.Purpose)).Inc()
	s.log.Info("checkout session created",
		slog.String("session_id", cs.ID),
		slog.String("payment_type", string(session.Purpose)),
		slog.Int64("amount", session.Amount))

	return &models.CheckoutResult{
		SessionID:  cs.ID,
		SessionURL: cs.URL,
		Amount:     session.Amount,
		Currency:   s.cfg.Currency,
		Purpose:    session.Purpose,
	}, nil
}

// customerID возвращает клиента провайдера для аккаунта, создавая его при
// первой оплате.
func (s *PaymentService) customerID(ctx context.Context, email string) (string, error) {
	const op = "payment.customerID"

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if user.PaymentCustomerID != "" {
		return user.PaymentCustomerID, nil
	}

	customer, err := s.provider.CreateCustomer(ctx, email)
	if err != nil {
		return "", apperror.Upstream(op, err)
	}
	if err = s.repo.SetPaymentCustomerID(ctx, email, customer.ID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return customer.ID, nil
}

// ConfirmCheckout проверяет сессию у провайдера после возврата пользователя
// со страницы оплаты и выполняет оплаченное действие.
func (s *PaymentService) ConfirmCheckout(ctx context.Context, sessionID string) (*models.PaymentSession, error) {
	const op = "payment.ConfirmCheckout"

	if sessionID == "" {
		return nil, apperror.ValidationFailed("session_id", "session id is required")
	}
	cs, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if paymentprovider.IsNotFound(err) {
			return nil, apperror.NotFound("payment session", sessionID)
		}
		return nil, apperror.Upstream(op, err)
	}
	if !cs.Paid() {
		purpose, _ := models.ParsePaymentPurpose(cs.Metadata[paymentprovider.MetaPaymentType])
		return nil, apperror.PaymentRequired(purpose, "payment not completed")
	}
	return s.fulfil(ctx, cs)
}

// Status возвращает сводку оплат аккаунта.
func (s *PaymentService) Status(ctx context.Context, identity models.Identity) (*models.PaymentStatus, error) {
	const op = "payment.Status"

	entitled, err := s.repo.HasPostingEntitlement(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ids, err := s.repo.ListUnlockedPostIDs(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return &models.PaymentStatus{HasPaidForPosting: entitled, RevealedPostIDs: ids}, nil
}

// History возвращает журнал оплат аккаунта, новые первыми.
func (s *PaymentService) History(ctx context.Context, identity models.Identity) ([]models.UserPayment, error) {
	const op = "payment.History"

	payments, err := s.repo.ListUserPayments(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}

// fulfil выполняет оплаченное действие. Повторный вызов для той же сессии
// безопасен: выдача права и раскрытие идемпотентны, а запись журнала и
// письмо с чеком появляются только при первом переходе в completed.
func (s *PaymentService) fulfil(ctx context.Context, cs *paymentprovider.CheckoutSession) (*models.PaymentSession, error) {
	const op = "payment.fulfil"

	session, err := s.repo.GetPaymentSession(ctx, cs.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("session_id", "unknown payment session")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if email := cs.Metadata[paymentprovider.MetaUserEmail]; email != "" && email != session.UserEmail {
		return nil, apperror.ValidationFailed("session_id", "payment session does not belong to this account")
	}

	amount := cs.AmountTotal
	if amount == 0 {
		amount = session.Amount
	}
	txRef := cs.TransactionRef()

	switch session.Purpose {
	case models.PurposePostingFee:
		if _, err = s.gate.GrantPostingEntitlement(ctx, session.UserEmail, amount, txRef); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	case models.PurposeContactReveal:
		target, err := s.repo.FindPostByID(ctx, session.TargetPostID)
		switch {
		case errors.Is(err, apperror.ErrNotFound):
			// деньги уже списаны: сессия всё равно завершается и попадает в журнал оплат
			s.log.Error("paid reveal target post no longer exists",
				slog.String("session_id", session.ID),
				slog.Int64("post_id", session.TargetPostID),
				slog.String("email", session.UserEmail),
				slog.String("transaction_ref", txRef))
			metrics.ContactUnlocks.WithLabelValues("target_missing").Inc()
		case err != nil:
			return nil, fmt.Errorf("%s: %w", op, err)
		default:
			res, err := s.gate.RecordUnlock(ctx, models.Identity{Email: session.UserEmail}, *target, amount, txRef)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			result := "inserted"
			if res.AlreadyUnlocked {
				result = "duplicate"
			}
			metrics.ContactUnlocks.WithLabelValues(result).Inc()
		}
	default:
		return nil, apperror.ValidationFailed("payment_type", "unknown payment type")
	}

	completedAt := s.now().UTC()
	completed, err := s.repo.CompletePaymentSession(ctx, session.ID, completedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	session.Status = models.SessionCompleted
	if !completed {
		s.log.Info("payment session already fulfilled", slog.String("session_id", session.ID))
		return session, nil
	}
	session.CompletedAt = &completedAt

	metrics.PaymentsCompleted.WithLabelValues(string(session.Purpose)).Inc()
	s.log.Info("payment fulfilled",
		slog.String("session_id", session.ID),
		slog.String("payment_type", string(session.Purpose)),
		slog.Int64("amount", amount))

	receipt := models.ReceiptMessage{
		Email:        session.UserEmail,
		Purpose:      session.Purpose,
		Amount:       amount,
		Currency:     s.cfg.Currency,
		TargetPostID: session.TargetPostID,
	}
	if err = s.publisher.Publish(rabbitmq.RoutingReceipt, receipt); err != nil {
		s.log.Error("failed to publish receipt", slog.String("session_id", session.ID), sl.Err(err))
	}
	return session, nil
}
