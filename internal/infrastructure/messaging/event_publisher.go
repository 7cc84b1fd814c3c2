// Package messaging publishes domain events to the message bus.
package messaging

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tenant-identity/internal/domain/event"
	"github.com/oksasatya/tenant-identity/internal/domain/port"
)

// JSONPublisher is implemented by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, routingKey, messageID string, body any) error
}

// EventPublisher sends each event to the topic exchange under its routing key.
type EventPublisher struct {
	pub     JSONPublisher
	timeout time.Duration
}

func NewEventPublisher(pub JSONPublisher, timeout time.Duration) *EventPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &EventPublisher{pub: pub, timeout: timeout}
}

func (p *EventPublisher) Publish(ctx context.Context, e event.DomainEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.pub.PublishJSON(ctx, e.RoutingKey(), e.ID(), e)
}

// LogPublisher only logs events. It stands in for the bus when no broker is
// configured.
type LogPublisher struct {
	Logger *logrus.Logger
}

func (p LogPublisher) Publish(_ context.Context, e event.DomainEvent) error {
	if p.Logger != nil {
		p.Logger.WithFields(logrus.Fields{
			"event":    e.RoutingKey(),
			"event_id": e.ID(),
		}).Info("event published (no broker configured)")
	}
	return nil
}

var (
	_ port.EventPublisher = (*EventPublisher)(nil)
	_ port.EventPublisher = LogPublisher{}
)
