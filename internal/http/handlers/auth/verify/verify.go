// Package verify реализует HTTP-обработчик ссылки подтверждения почты.
package verify

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sponsor-match/internal/http/response"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
)

// Service гасит токен подтверждения.
type Service interface {
	Verify(ctx context.Context, token string) (string, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтверждение почты
// @Description Гасит одноразовый токен из письма и подтверждает почту.
// @Tags Auth
// @Produce json
// @Param token path string true "Токен подтверждения"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Токен недействителен или истёк"
// @Router /verify/{token} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	email, err := h.service.Verify(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		log.Warn("verification failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("email verified")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"email":    email,
		"verified": true,
	}))
}
