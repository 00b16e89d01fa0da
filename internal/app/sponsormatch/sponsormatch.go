package sponsormatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/streadway/amqp"

	_ "github.com/magabrotheeeer/sponsor-match/docs" // swagger
	"github.com/magabrotheeeer/sponsor-match/internal/cache"
	"github.com/magabrotheeeer/sponsor-match/internal/config"
	"github.com/magabrotheeeer/sponsor-match/internal/grpc/client"
	"github.com/magabrotheeeer/sponsor-match/internal/http/handlers/health"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/migrations"
	"github.com/magabrotheeeer/sponsor-match/internal/paymentprovider"
	"github.com/magabrotheeeer/sponsor-match/internal/reveal"
	domainservice "github.com/magabrotheeeer/sponsor-match/internal/services/domain"
	paymentservice "github.com/magabrotheeeer/sponsor-match/internal/services/payment"
	postservice "github.com/magabrotheeeer/sponsor-match/internal/services/post"
	reportservice "github.com/magabrotheeeer/sponsor-match/internal/services/report"
	"github.com/magabrotheeeer/sponsor-match/internal/storage/repository"
)

const (
	shutdownTimeout = 15 * time.Second
	providerTimeout = 10 * time.Second
)

// App представляет HTTP-приложение маркетплейса.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	authClient *client.AuthClient
	conn       *amqp.Connection
	ch         *amqp.Channel
}

// New подключает хранилище, кеш, брокер и сервис идентификации и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	db, err := repository.New(ctx, cfg.StorageConnectionString, cfg.StorageMaxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	a.db = db

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	err = migrations.Run(sqlDB, cfg.MigrationsPath)
	_ = sqlDB.Close()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	a.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	a.authClient, err = client.NewAuthClient(cfg.GRPCAuthAddress)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}

	a.conn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	a.ch, err = rabbitmq.SetupChannel(a.conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	publisher := rabbitmq.NewPublisher(a.ch)

	gate := reveal.New(db)
	provider := paymentprovider.NewClient(logger, cfg.PaymentAPIURL, cfg.PaymentSecretKey, providerTimeout)

	services := Services{
		Auth:    a.authClient,
		Posts:   postservice.New(logger, db, gate, a.cache, cfg.PoolCacheTTL, cfg.DefaultLimit),
		Payment: paymentservice.New(logger, cfg.Payment, db, gate, provider, publisher),
		Reports: reportservice.New(logger, db),
		Domains: domainservice.New(logger, db, net.DefaultResolver),
		Health: map[string]health.Pinger{
			"postgres": db,
			"redis":    a.cache,
		},
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, services)

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// Run обслуживает HTTP до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.authClient != nil {
		if err := a.authClient.Close(); err != nil {
			a.logger.Error("failed to close auth client", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
