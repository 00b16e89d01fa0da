// Package paymentwebhook принимает вебхуки платёжного провайдера.
//
// Подпись проверяется до разбора тела. Ответ 2xx подтверждает доставку,
// 5xx заставляет провайдера повторить её позже, поэтому код ответа зависит
// от того, поможет ли повтор.
package paymentwebhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/sponsor-match/internal/apperror"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/paymentprovider"
)

const maxBodyBytes = 1 << 16

// Service исполняет события оплаты.
type Service interface {
	HandleWebhook(ctx context.Context, event *paymentprovider.Event) error
}

type Handler struct {
	log           *slog.Logger // Логгер для записи информации и ошибок
	service       Service
	webhookSecret string        // Секрет для проверки подписи
	tolerance     time.Duration // Допустимый возраст подписи
}

func New(log *slog.Logger, service Service, secret string, tolerance time.Duration) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
		tolerance:     tolerance,
	}
}

// ServeHTTP godoc
// @Summary Вебхук провайдера оплаты
// @Tags Payments
// @Accept json
// @Param Stripe-Signature header string true "Подпись"
// @Success 200
// @Failure 400 "Неверная подпись или тело"
// @Failure 500 "Временный сбой, провайдер повторит доставку"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	event, err := paymentprovider.ParseEvent(body, r.Header.Get(paymentprovider.SignatureHeader), h.webhookSecret, h.tolerance)
	if err != nil {
		log.Warn("rejected webhook", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err = h.service.HandleWebhook(r.Context(), event); err != nil {
		if errors.Is(err, apperror.ErrUpstream) {
			log.Error("failed to process webhook event", slog.String("event_id", event.ID), sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		log.Warn("webhook event not applicable", slog.String("event_id", event.ID), sl.Err(err))
	}

	log.Info("webhook processed", slog.String("event_id", event.ID), slog.String("type", event.Type))
	w.WriteHeader(http.StatusOK)
}
