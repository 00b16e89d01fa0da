// Package sender собирает сервис рассылки писем из очередей уведомлений.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/sponsor-match/internal/config"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/sl"
	"github.com/magabrotheeeer/sponsor-match/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/sponsor-match/internal/services/sender"
)

// App читает очереди уведомлений и отправляет письма.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New подключается к брокеру и готовит SMTP-транспорт.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(logger, transport, cfg.SMTPFrom)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) handlerFor(routingKey string) func([]byte) error {
	switch routingKey {
	case rabbitmq.RoutingVerification:
		return a.senderService.SendVerification
	case rabbitmq.RoutingReceipt:
		return a.senderService.SendReceipt
	default:
		return nil
	}
}

// Run запускает потребителей всех очередей и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	for _, q := range rabbitmq.GetNotificationQueues() {
		handler := a.handlerFor(q.RoutingKey)
		if handler == nil {
			continue
		}
		if err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, q.QueueName, handler); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			a.close()
			return err
		}
		a.logger.Info("consuming queue", slog.String("queue", q.QueueName))
	}

	<-ctx.Done()
	a.logger.Info("Sender service shutting down gracefully")
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
