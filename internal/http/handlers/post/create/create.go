// Package create реализует HTTP-обработчик публикации анкеты.
//
// Handler принимает JSON с анкетой, валидирует его, берёт личность из контекста
// и создаёт публикацию через сервис. Без оплаченного сбора за размещение
// ответ 402 с payment_type=posting_fee.
package create

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

// Handler управляет HTTP-запросами на создание публикаций.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис публикаций
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания публикации.
type Service interface {
	Create(ctx context.Context, identity models.Identity, req models.CreatePostRequest) (*models.PostView, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Опубликовать анкету
// @Description Создаёт единственную публикацию пользователя. Требует оплаченного сбора за размещение.
// @Tags Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreatePostRequest true "Анкета"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.PaymentRequiredResponse "Сбор за размещение не оплачен"
// @Failure 409 {object} response.ErrorResponse "Публикация уже существует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /posts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.post.create"
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

	var req models.CreatePostRequest
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

	view, err := h.service.Create(r.Context(), *identity, req)
	if err != nil {
		log.Warn("failed to create post", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("post created", slog.Int64("id", view.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(view))
}
