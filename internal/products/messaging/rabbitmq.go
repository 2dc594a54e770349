package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"products-api/internal/products"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	contentTypeJSON = "application/json"
	appID           = "products-api"
)

// RabbitPublisher sends product change events to a durable queue. It is safe
// for concurrent use; publishes on the shared channel are serialised.
type RabbitPublisher struct {
	mu      sync.Mutex
	channel *amqp.Channel
	queue   string
}

func NewRabbitPublisher(conn *amqp.Connection, queue string) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}

	return &RabbitPublisher{
		channel: ch,
		queue:   queue,
	}, nil
}

// DeclareQueue declares the durable events queue. Publisher and consumer
// declare it with identical arguments.
func DeclareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %q: %w", queue, err)
	}
	return nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event products.ProductEvent) error {
	msg, err := newMessage(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish %s to %q: %w", event.EventType, p.queue, err)
	}

	return nil
}

func newMessage(event products.ProductEvent) (amqp.Publishing, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         event.EventType,
		AppId:        appID,
		Timestamp:    event.Timestamp,
		Body:         payload,
	}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.channel.Close()
}

// NopPublisher drops events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, products.ProductEvent) error {
	return nil
}
