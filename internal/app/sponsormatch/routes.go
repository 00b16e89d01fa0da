// Package sponsormatch собирает HTTP-приложение маркетплейса: маршруты,
// middleware и зависимости сервисов.
package sponsormatch

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/sponsor-match/internal/config"
	"github.com/magabrotheeeer/sponsor-match/internal/grpc/client"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/auth/verify"
	domaincheck "github.com/magabrotheeeer/sponsor-match/internal/http/handlers/domain/check"
	domainstart "github.com/magabrotheeeer/sponsor-match/internal/http/handlers/domain/start"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/health"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/payment/paymentreveal"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/payment/paymentstatus"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/payment/paymentsuccess"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/payment/paymentwebhook"
	postcreate "github.com/magabrotheeeer/sponsor-match/internal/http/handlers/post/create"
	postlist "github.com/magabrotheeeer/sponsor-match/internal/http/handlers/post/list"
	postread "github.com/magabrotheeeer/sponsor-match/internal/http/handlers/post/read"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/post/recommend"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/post/remove"
	postreveal "github.com/magabrotheeeer/sponsor-match/internal/http/handlers/post/reveal"
	reportcreate "github.com/magabrotheeeer/sponsor-match/internal/http/handlers/report/create"
	"github.com/magabrotheeeer/sponsor-match/internal/http/middlewarectx"
	domainservice "github.com/magabrotheeeer/sponsor-match/internal/services/domain"
	paymentservice "github.com/magabrotheeeer/sponsor-match/internal/services/payment"
	postservice "github.com/magabrotheeeer/sponsor-match/internal/services/post"
	reportservice "github.com/magabrotheeeer/sponsor-match/internal/services/report"
)

// Services объединяет зависимости обработчиков.
type Services struct {
	Auth    *client.AuthClient
	Posts   *postservice.PostService
	Payment *paymentservice.PaymentService
	Reports *reportservice.ReportService
	Domains *domainservice.DomainService
	Health  map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RequestsPerSecond, cfg.Burst))

		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/verify/{token}", verify.New(logger, s.Auth).ServeHTTP)
		r.Get("/payments/success", paymentsuccess.New(logger, s.Payment).ServeHTTP)

		// Webhook провайдера оплаты (подпись вместо JWT)
		r.Post("/payments/webhook", paymentwebhook.New(logger, s.Payment, cfg.WebhookSecret, cfg.WebhookTolerance).ServeHTTP)

		// Анонимный доступ: контакты скрыты, если токена нет
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(s.Auth, logger))
			r.Get("/posts", postlist.New(logger, s.Posts).ServeHTTP)
			r.Get("/posts/{id}", postread.New(logger, s.Posts).ServeHTTP)
			r.Post("/reports", reportcreate.New(logger, s.Reports).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Post("/posts", postcreate.New(logger, s.Posts).ServeHTTP)
			r.Delete("/posts", remove.New(logger, s.Posts).ServeHTTP)
			r.Post("/posts/{id}/reveal", postreveal.New(logger, s.Posts).ServeHTTP)
			r.Get("/recommendations", recommend.New(logger, s.Posts).ServeHTTP)
			r.Post("/payments/posting-session", paymentcreate.New(logger, s.Payment).ServeHTTP)
			r.Post("/payments/reveal-session", paymentreveal.New(logger, s.Payment).ServeHTTP)
			r.Get("/payments/status", paymentstatus.New(logger, s.Payment).ServeHTTP)
			r.Get("/payments/history", paymentlist.New(logger, s.Payment).ServeHTTP)
			r.Post("/domains/start", domainstart.New(logger, s.Domains).ServeHTTP)
			r.Post("/domains/check", domaincheck.New(logger, s.Domains).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
