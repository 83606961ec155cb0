package messaging

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
)

type RabbitMQ struct {
	conn    *amqp.Connection
	mu      sync.Mutex // amqp channels are not safe for concurrent publishing
	channel *amqp.Channel
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	logger.Info("Connected to RabbitMQ")
	return &RabbitMQ{conn: conn, channel: channel}, nil
}

// DeclareQueue creates a durable queue if it doesn't exist.
func (r *RabbitMQ) DeclareQueue(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.channel.QueueDeclare(
		name,  // queue name
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	logger.Info("Queue declared", "queue", name)
	return nil
}

// Publish sends a JSON message to queue through the default exchange.
func (r *RabbitMQ) Publish(ctx context.Context, queue string, message []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.channel.PublishWithContext(ctx,
		"",    // exchange
		queue, // routing key (queue name)
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         message,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", queue, err)
	}
	return nil
}

func (r *RabbitMQ) Close() {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}
