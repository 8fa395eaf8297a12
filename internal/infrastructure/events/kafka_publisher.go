package events

import (
	"context"
	"errors"

	"github.com/retail-platform/order-fulfillment/internal/domain"
	"github.com/retail-platform/order-fulfillment/pkg/kafka"
)

// producer is the Kafka producer surface the publisher needs
type producer interface {
	PublishEvent(ctx context.Context, topic string, event *kafka.Event) error
}

// KafkaEventPublisher publishes domain events to the order events topic,
// wrapped in the platform event envelope
type KafkaEventPublisher struct {
	producer producer
	source   string
}

// NewKafkaEventPublisher creates a publisher for domain events
func NewKafkaEventPublisher(p producer, source string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: p, source: source}
}

// Publish publishes a single domain event
func (p *KafkaEventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	envelope, err := kafka.NewEvent(event.EventType(), p.source, event.AggregateID(), event)
	if err != nil {
		return err
	}
	envelope.OrderID = event.AggregateID()

	return p.producer.PublishEvent(ctx, kafka.Topics.OrderEvents, envelope)
}

// PublishAll publishes multiple domain events. All events are attempted;
// failures are joined so a single broken event does not hide the rest.
func (p *KafkaEventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	var errs []error
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
