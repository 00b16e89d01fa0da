// Package recommend реализует HTTP-обработчик подборки совместимых публикаций.
package recommend

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sponsor-match/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sponsor-match/internal/http/response"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// Service подбирает публикации противоположной роли.
type Service interface {
	Recommend(ctx context.Context, identity models.Identity, limit int) ([]models.MatchView, error)
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
// @Summary Рекомендации
// @Description Публикации противоположной роли по убыванию оценки совместимости.
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Сколько вернуть"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "У пользователя нет публикации"
// @Router /recommendations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.post.recommend"
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

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Warn("invalid limit", slog.String("limit", v))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	matches, err := h.service.Recommend(r.Context(), *identity, limit)
	if err != nil {
		log.Warn("failed to recommend", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("recommendations built", slog.Int("count", len(matches)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"list_count":      len(matches),
		"recommendations": matches,
	}))
}
