// Package paymentstatus отдаёт состояние оплат пользователя.
package paymentstatus

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

// Service возвращает состояние оплат.
type Service interface {
	Status(ctx context.Context, identity models.Identity) (*models.PaymentStatus, error)
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
// @Summary Состояние оплат
// @Description Оплачено ли размещение и какие контакты раскрыты.
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /payments/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.status"
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

	status, err := h.paymentService.Status(r.Context(), *identity)
	if err != nil {
		log.Error("failed to get payment status", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(status))
}
