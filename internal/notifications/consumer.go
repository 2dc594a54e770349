package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"products-api/internal/products"
	"products-api/internal/products/messaging"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "notifications-service"

var (
	errMalformedEvent   = errors.New("malformed event")
	errUnknownEventType = errors.New("unknown event type")
)

var notificationText = map[string]string{
	products.EventCreated: "product added to catalogue",
	products.EventUpdated: "product details changed",
	products.EventDeleted: "product removed from catalogue",
}

type Consumer struct {
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
}

func NewConsumer(conn *amqp.Connection, queue string, prefetch int, logger *slog.Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := messaging.DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}

	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set prefetch %d: %w", prefetch, err)
	}

	return &Consumer{
		channel: ch,
		queue:   queue,
		logger:  logger,
	}, nil
}

func (c *Consumer) Listen(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			c.settle(&msg, c.handleMessage(msg.Body))
		}
	}
}

// settle acks handled messages. Events that can never be handled are
// dropped; anything else is requeued.
func (c *Consumer) settle(msg *amqp.Delivery, err error) {
	if err == nil {
		_ = msg.Ack(false)
		return
	}

	requeue := !errors.Is(err, errMalformedEvent) && !errors.Is(err, errUnknownEventType)
	c.logger.Error("handle message failed",
		"message_id", msg.MessageId,
		"requeue", requeue,
		"error", err,
	)
	_ = msg.Nack(false, requeue)
}

func (c *Consumer) handleMessage(body []byte) error {
	var event products.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformedEvent, err)
	}

	text, ok := notificationText[event.EventType]
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownEventType, event.EventType)
	}

	c.logger.Info("notification event",
		"notification", text,
		"event_type", event.EventType,
		"product_id", event.ProductID,
		"name", event.Name,
		"timestamp", event.Timestamp,
	)

	return nil
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
