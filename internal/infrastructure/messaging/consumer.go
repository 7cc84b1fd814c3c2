package messaging

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Handler processes one delivery. Returning an error wrapping a poison error
// drops the message; any other error requeues it.
type Handler func(ctx context.Context, routingKey string, body []byte) error

type disposition int

const (
	ack disposition = iota
	drop
	requeue
)

func decide(err, poison error) disposition {
	switch {
	case err == nil:
		return ack
	case poison != nil && errors.Is(err, poison):
		return drop
	default:
		return requeue
	}
}

// Consumer reads one queue with manual acknowledgements.
type Consumer struct {
	ch       *amqp.Channel
	queue    string
	prefetch int
	poison   error
	logger   *logrus.Logger
}

func NewConsumer(ch *amqp.Channel, queue string, prefetch int, poison error, logger *logrus.Logger) *Consumer {
	if prefetch <= 0 {
		prefetch = 16
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Consumer{ch: ch, queue: queue, prefetch: prefetch, poison: poison, logger: logger}
}

// Run dispatches deliveries to h until ctx is cancelled or the channel closes.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	if err := c.ch.Qos(c.prefetch, 0, false); err != nil {
		return err
	}
	msgs, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.dispatch(ctx, msg, h)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg amqp.Delivery, h Handler) {
	err := h(ctx, msg.RoutingKey, msg.Body)
	entry := c.logger.WithFields(logrus.Fields{"routing_key": msg.RoutingKey, "message_id": msg.MessageId})
	switch decide(err, c.poison) {
	case ack:
		_ = msg.Ack(false)
	case drop:
		entry.WithError(err).Error("dropping message")
		_ = msg.Nack(false, false)
	case requeue:
		entry.WithError(err).Warn("requeueing message")
		_ = msg.Nack(false, true)
	}
}
