// Package auth собирает gRPC-сервис идентификации.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/streadway/amqp"
	"google.golang.org/grpc"

	"github.com/magabrotheeeer/sponsor-match/internal/config"
	authpb "github.com/magabrotheeeer/sponsor-match/internal/grpc/gen"
	"github.com/magabrotheeeer/sponsor-match/internal/grpc/server"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/jwt"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	authservices "github.com/magabrotheeeer/sponsor-match/internal/services/auth"
	"github.com/magabrotheeeer/sponsor-match/internal/storage/repository"
)

// App представляет gRPC-приложение сервиса идентификации.
type App struct {
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *slog.Logger
	db         *repository.Storage
	conn       *amqp.Connection
	ch         *amqp.Channel
}

// New подключает хранилище и брокер и регистрирует AuthService.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	db, err := repository.New(ctx, cfg.StorageConnectionString, cfg.StorageMaxConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	a.db = db

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

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservices.NewAuthService(logger, db, jwtMaker, rabbitmq.NewPublisher(a.ch),
		cfg.VerificationTokenTTL, cfg.VerificationBaseURL)

	a.listener, err = net.Listen("tcp", cfg.GRPCAuthAddress)
	if err != nil {
		a.close()
		return nil, err
	}

	a.grpcServer = grpc.NewServer()
	authpb.RegisterAuthServiceServer(a.grpcServer, server.NewAuthServer(authService, logger))

	return a, nil
}

// Run обслуживает gRPC до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("Auth gRPC service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	select {
	case <-ctx.Done():
		a.grpcServer.GracefulStop()
		a.close()
		return nil
	case err := <-errCh:
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
	if a.db != nil {
		a.db.Close()
	}
}
