// Package list реализует HTTP-обработчик ленты публикаций с фильтрами.
package list

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

// Service возвращает ленту с контактами, скрытыми для зрителя.
type Service interface {
	List(ctx context.Context, viewer *models.Identity, filter models.PostFilter) ([]models.PostView, error)
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
// @Summary Лента публикаций
// @Description Новые сначала. Анонимный зритель видит маску вместо контактов.
// @Tags Posts
// @Produce json
// @Param user_type query string false "creator или sponsor"
// @Param platform query string false "Площадка"
// @Param min_followers query int false "Минимум подписчиков"
// @Param max_followers query int false "Максимум подписчиков"
// @Param min_price query number false "Минимальная цена"
// @Param max_price query number false "Максимальная цена"
// @Param interests query string false "Подстрока интереса"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный фильтр"
// @Router /posts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.post.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		log.Warn("invalid filter", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	views, err := h.service.List(r.Context(), middlewarectx.IdentityFrom(r.Context()), filter)
	if err != nil {
		log.Error("failed to list posts", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("listed posts", slog.Int("count", len(views)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"list_count": len(views),
		"posts":      views,
	}))
}
