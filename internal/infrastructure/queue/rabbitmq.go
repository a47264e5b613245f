package queue

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQ holds one long-lived connection and channel, shared by the
// publisher and the consumer for the process lifetime.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *zap.Logger
}

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
}

func NewRabbitMQ(cfg Config, log *zap.Logger) (*RabbitMQ, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s", cfg.User, cfg.Password, cfg.Host, cfg.Port)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	log.Info("rabbitmq connected", zap.String("host", cfg.Host))
	return &RabbitMQ{conn: conn, channel: channel, log: log}, nil
}

// DeclareQueue is idempotent; declaring an existing queue is a no-op.
func (r *RabbitMQ) DeclareQueue(name string) error {
	_, err := r.channel.QueueDeclare(name, true, false, false, false, nil)
	return err
}

func (r *RabbitMQ) Publish(ctx context.Context, queue string, body []byte) error {
	return r.channel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Consume returns a manual-ack delivery channel for the queue.
func (r *RabbitMQ) Consume(queue string) (<-chan amqp.Delivery, error) {
	return r.channel.Consume(queue, "", false, false, false, false, nil)
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		r.log.Warn("close channel", zap.Error(err))
	}
	return r.conn.Close()
}
