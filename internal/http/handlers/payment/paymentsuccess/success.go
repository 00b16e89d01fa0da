// Package paymentsuccess обрабатывает возврат пользователя со страницы оплаты.
//
// Провайдер перенаправляет на этот адрес с session_id. Сессия проверяется у
// провайдера и, если оплачена, исполняется так же, как по вебхуку.
package paymentsuccess

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sponsor-match/internal/http/response"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// Service подтверждает сессию оплаты.
type Service interface {
	ConfirmCheckout(ctx context.Context, sessionID string) (*models.PaymentSession, error)
}

type Handler struct {
	log            *slog.Logger
	paymentService Service
}

func New(log *slog.Logger, ps Service) *Handler {
	return &Handler{
		log:            log,
		paymentService: ps,
	}
}

// ServeHTTP godoc
// @Summary Возврат после оплаты
// @Tags Payments
// @Produce json
// @Param session_id query string true "ID сессии оплаты"
// @Success 200 {object} response.Response
// @Failure 402 {object} response.PaymentRequiredResponse "Сессия не оплачена"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 422 {object} response.ErrorResponse "Нет session_id"
// @Router /payments/success [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.success"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sessionID := r.URL.Query().Get("session_id")
	session, err := h.paymentService.ConfirmCheckout(r.Context(), sessionID)
	if err != nil {
		log.Warn("failed to confirm checkout", slog.String("session_id", sessionID), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("checkout confirmed", slog.String("session_id", session.ID), slog.String("payment_type", string(session.Purpose)))
	render.JSON(w, r, response.OKWithData(session))
}
