// Package read реализует HTTP-обработчик просмотра одной публикации.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sponsor-match/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sponsor-match/internal/http/response"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// Service возвращает публикацию для зрителя.
type Service interface {
	Get(ctx context.Context, viewer *models.Identity, id int64) (*models.PostView, error)
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
// @Summary Публикация по ID
// @Tags Posts
// @Produce json
// @Param id path int true "ID публикации"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Публикация не найдена"
// @Router /posts/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.post.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Warn("invalid post id", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid post id"))
		return
	}

	view, err := h.service.Get(r.Context(), middlewarectx.IdentityFrom(r.Context()), id)
	if err != nil {
		log.Warn("failed to get post", slog.Int64("id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(view))
}
