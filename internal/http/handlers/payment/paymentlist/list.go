// Package paymentlist отдаёт журнал завершённых оплат пользователя.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sponsor-match/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sponsor-match/internal/http/response"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// PaymentService возвращает журнал оплат.
type PaymentService interface {
	History(ctx context.Context, identity models.Identity) ([]models.UserPayment, error)
}

type Handler struct {
	log            *slog.Logger // Логгер для записи информации и ошибок
	paymentService PaymentService
}

func New(log *slog.Logger, ps PaymentService) *Handler {
	return &Handler{
		log:            log,
		paymentService: ps,
	}
}

// ServeHTTP godoc
// @Summary Журнал оплат
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /payments/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity := middlewarectx.IdentityFrom(r.Context())
	if identity == nil {
		log.Error("identity not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	payments, err := h.paymentService.History(r.Context(), *identity)
	if err != nil {
		log.Error("failed to get payment history", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("list payments", slog.Int("count", len(payments)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"list_count": len(payments),
		"payments":   payments,
	}))
}
