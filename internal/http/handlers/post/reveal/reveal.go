// Package reveal реализует HTTP-обработчик раскрытия контакта публикации.
//
// Если раскрытие уже оплачено или публикация своя, возвращается настоящий
// контакт. Иначе ответ 402 с payment_type=contact_reveal, после чего клиент
// открывает сессию оплаты.
package reveal

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

// Service раскрывает контакт, если это оплачено.
type Service interface {
	RevealContact(ctx context.Context, identity models.Identity, postID int64) (*models.PostView, error)
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
// @Summary Раскрыть контакт
// @Tags Posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID публикации"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.PaymentRequiredResponse "Раскрытие не оплачено"
// @Failure 404 {object} response.ErrorResponse "Публикация не найдена"
// @Router /posts/{id}/reveal [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.post.reveal"
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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Warn("invalid post id", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid post id"))
		return
	}

	view, err := h.service.RevealContact(r.Context(), *identity, id)
	if err != nil {
		log.Info("contact not revealed", slog.Int64("post_id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(view))
}
