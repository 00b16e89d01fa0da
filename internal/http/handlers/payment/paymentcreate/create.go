// Package paymentcreate открывает сессию оплаты сбора за размещение.
package paymentcreate

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

// Service определяет интерфейс для работы с платежами.
type Service interface {
	StartPostingCheckout(ctx context.Context, identity models.Identity) (*models.CheckoutResult, error)
}

// Handler обрабатывает запросы на оплату размещения.
type Handler struct {
	log            *slog.Logger // Логгер для записи информации и ошибок
	paymentService Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, ps Service) *Handler {
	return &Handler{
		log:            log,
		paymentService: ps,
	}
}

// ServeHTTP godoc
// @Summary Оплатить размещение
// @Description Создаёт у провайдера страницу оплаты сбора за размещение публикации.
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Ссылка на страницу оплаты"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Сбор уже оплачен"
// @Failure 500 {object} response.ErrorResponse "Ошибка провайдера"
// @Router /payments/posting-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"
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

	result, err := h.paymentService.StartPostingCheckout(r.Context(), *identity)
	if err != nil {
		log.Error("failed to start posting checkout", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("posting checkout started", slog.String("session_id", result.SessionID))
	render.JSON(w, r, response.OKWithData(result))
}
