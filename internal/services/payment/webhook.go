package payment

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/paymentprovider"
)

// HandleWebhook обрабатывает событие провайдера с уже проверенной подписью.
// Выполняется только checkout.session.completed с оплаченной сессией,
// остальные события пропускаются.
func (s *PaymentService) HandleWebhook(ctx context.Context, event *paymentprovider.Event) error {
	const op = "payment.HandleWebhook"

	log := s.log.With(slog.String("op", op), slog.String("event_id", event.ID), slog.String("type", event.Type))

	if event.Type != paymentprovider.EventCheckoutCompleted {
		log.Debug("ignoring webhook event")
		return nil
	}
	cs, err := event.CheckoutSession()
	if err != nil {
		return apperror.ValidationFailed("data", "malformed checkout session object")
	}
	if !cs.Paid() {
		log.Info("checkout completed without payment", slog.String("session_id", cs.ID))
		return nil
	}
	if _, err = s.fulfil(ctx, cs); err != nil {
		return err
	}
	return nil
}
