// Package paymentreveal открывает сессию оплаты раскрытия контакта.
package paymentreveal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sponsor-match/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sponsor-match/internal/http/response"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// Request указывает публикацию, контакт которой нужно раскрыть.
type Request struct {
	PostID int64 `json:"post_id" validate:"required,gt=0"`
}

// Service определяет интерфейс для работы с платежами.
type Service interface {
	StartRevealCheckout(ctx context.Context, identity models.Identity, postID int64) (*models.CheckoutResult, error)
}

// Handler обрабатывает запросы на оплату раскрытия.
type Handler struct {
	log            *slog.Logger
	paymentService Service
	validate       *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, ps Service) *Handler {
	return &Handler{
		log:            log,
		paymentService: ps,
		validate:       validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оплатить раскрытие контакта
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body paymentreveal.Request true "ID публикации"
// @Success 200 {object} response.Response "Ссылка на страницу оплаты"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Публикация не найдена"
// @Failure 422 {object} response.ErrorResponse "Контакт уже виден"
// @Router /payments/reveal-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.reveal"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.paymentService.StartRevealCheckout(r.Context(), *identity, req.PostID)
	if err != nil {
		log.Error("failed to start reveal checkout", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("reveal checkout started", slog.String("session_id", result.SessionID), slog.Int64("post_id", req.PostID))
	render.JSON(w, r, response.OKWithData(result))
}
