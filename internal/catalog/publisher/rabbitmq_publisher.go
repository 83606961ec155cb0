package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ridloal/storefront-dashboard/internal/catalog/domain"
)

// Broker is the part of the message broker the publisher needs.
type Broker interface {
	DeclareQueue(name string) error
	Publish(ctx context.Context, queue string, message []byte) error
}

// Message is the wire form of a catalog event.
type Message struct {
	domain.Event
	OccurredAt time.Time `json:"occurred_at"`
}

type RabbitMQPublisher struct {
	broker Broker
	queue  string
	now    func() time.Time
}

// NewRabbitMQPublisher declares queue and returns a publisher sending every
// event to it as JSON.
func NewRabbitMQPublisher(broker Broker, queue string) (*RabbitMQPublisher, error) {
	if err := broker.DeclareQueue(queue); err != nil {
		return nil, err
	}
	return &RabbitMQPublisher{broker: broker, queue: queue, now: time.Now}, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, e domain.Event) error {
	body, err := json.Marshal(Message{Event: e, OccurredAt: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode catalog event: %w", err)
	}
	return p.broker.Publish(ctx, p.queue, body)
}
