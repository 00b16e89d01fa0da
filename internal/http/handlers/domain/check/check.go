// Package check проверяет TXT-запись домена и отмечает домен подтверждённым.
package check

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

// Service проверяет домен.
type Service interface {
	Check(ctx context.Context, identity models.Identity, domain string) (*models.DomainVerification, error)
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
// @Summary Проверить домен
// @Tags Domains
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DomainRequest true "Домен"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Подтверждение не начато"
// @Router /domains/check [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.domain.check"
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

	var req models.DomainRequest
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

	result, err := h.service.Check(r.Context(), *identity, req.Domain)
	if err != nil {
		log.Error("failed to check domain", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("domain checked", slog.String("domain", result.Domain), slog.Bool("verified", result.Verified))
	render.JSON(w, r, response.OKWithData(result))
}
