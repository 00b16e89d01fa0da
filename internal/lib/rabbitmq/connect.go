// Package rabbitmq содержит помощники для работы с RabbitMQ: подключение
// с повторами, объявление обменника уведомлений и очередей, публикацию JSON
// и конкурентное потребление сообщений.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// NotificationsExchange задаёт direct-обменник, через который ходят все уведомления.
const NotificationsExchange = "notifications"

// Маршруты уведомлений.
const (
	RoutingVerification = "verification"
	RoutingReceipt      = "receipt"
)

// QueueConfig описывает очередь и ключ её привязки к NotificationsExchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые читает сервис рассылки.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.verification", RoutingKey: RoutingVerification},
		{QueueName: "notification.receipt", RoutingKey: RoutingReceipt},
	}
}

// Connect подключается к брокеру, делая до retries попыток с паузой delay.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var (
		conn *amqp.Connection
		err  error
	)
	if retries < 1 {
		retries = 1
	}

	for attempt := range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		if attempt < retries-1 {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал, объявляет обменник уведомлений и
// переданные очереди с привязками.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		NotificationsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range queues {
		if _, err = ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, q.QueueName, err)
		}
		if err = ch.QueueBind(q.QueueName, q.RoutingKey, NotificationsExchange, false, nil); err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w",
				op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
