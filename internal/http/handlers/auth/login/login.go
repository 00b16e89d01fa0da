// Package login реализует HTTP-обработчик входа по почте и паролю.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sponsor-match/internal/http/response"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
)

// Service выпускает JWT для подтверждённой учётной записи.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Request содержит входные данные для входа. Длина пароля здесь не проверяется,
// неверный пароль любой длины даёт 401.
type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход
// @Description Проверяет пароль и подтверждение почты, возвращает JWT.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body login.Request true "Почта и пароль"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные данные или почта не подтверждена"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
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

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
	}))
}
