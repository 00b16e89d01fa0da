// Package middlewarectx содержит HTTP middleware API-шлюза.
//
// JWTMiddleware проверяет bearer-токен через gRPC-сервис идентификации и кладёт
// личность вызывающего в контекст запроса. OptionalJWTMiddleware делает то же
// для публичных маршрутов, где анонимный зритель видит скрытые контакты.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sponsor-match/internal/http/response"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey хранит личность вызывающего в контексте.
const IdentityKey Key = "identity"

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*models.Identity, error)
}

// WithIdentity кладёт личность в контекст.
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// IdentityFrom возвращает личность из контекста или nil для анонимного запроса.
func IdentityFrom(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(IdentityKey).(*models.Identity)
	return identity
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет личность пользователя в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(authClient Service, log *slog.Logger) func(http.Handler) http.Handler {
	const op = "middlewarectx.JWTMiddleware"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := bearerToken(r)
			if !ok {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			identity, err := authClient.ValidateToken(r.Context(), token)
			if err != nil {
				log.Warn("token rejected", sl.Err(err))
				status, body := response.FromError(err)
				if status != http.StatusInternalServerError {
					status, body = http.StatusUnauthorized, response.Error("invalid or expired token")
				}
				render.Status(r, status)
				render.JSON(w, r, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// OptionalJWTMiddleware кладёт личность в контекст, если запрос несёт валидный
// токен. Без токена или с невалидным токеном запрос идёт дальше анонимно.
func OptionalJWTMiddleware(authClient Service, log *slog.Logger) func(http.Handler) http.Handler {
	const op = "middlewarectx.OptionalJWTMiddleware"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			identity, err := authClient.ValidateToken(r.Context(), token)
			if err != nil {
				log.Debug("ignoring invalid token on public route",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
