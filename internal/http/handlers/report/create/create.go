// Package create реализует HTTP-обработчик жалобы на публикацию.
// Жаловаться можно анонимно, личность берётся из контекста, если она есть.
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

// Service принимает жалобы.
type Service interface {
	Submit(ctx context.Context, reporter *models.Identity, postID int64, reason string) (*models.Report, error)
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
// @Summary Пожаловаться на публикацию
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body models.ReportRequest true "Жалоба"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Публикация не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /reports [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ReportRequest
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

	report, err := h.service.Submit(r.Context(), middlewarectx.IdentityFrom(r.Context()), req.PostID, req.Reason)
	if err != nil {
		log.Warn("failed to submit report", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("report submitted", slog.String("id", report.ID), slog.Int64("post_id", report.ReportedPostID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(report))
}
