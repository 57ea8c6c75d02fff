// Package eventbus publishes order lifecycle events to RabbitMQ.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/rl1809/storefront/internal/core/domain"
)

var eventPriority = map[domain.EventType]uint8{
	domain.EventOrderPlaced:        5,
	domain.EventSaleFinalized:      3,
	domain.EventOrderStatusChanged: 1,
}

// RabbitPublisher sends events to a topic exchange, routed by event type.
type RabbitPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex // amqp channels are not safe for concurrent publishes
	ch       *amqp.Channel
	exchange string
}

func DialRabbit(url, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &RabbitPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		ContentType:  "application/json",
		MessageId:    event.ID,
		Type:         string(event.Type),
		Body:         body,
		Priority:     eventPriority[event.Type],
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx,
		p.exchange,
		string(event.Type), // routing key
		false,              // mandatory
		false,              // immediate
		msg,
	)
}

func (p *RabbitPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		log.Warn().Err(err).Msg("close rabbitmq channel")
	}
	return p.conn.Close()
}

// LogPublisher stands in for the broker when none is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	log.Debug().
		Str("event", string(event.Type)).
		Int64("order_id", event.OrderID).
		Str("status", event.Status.String()).
		Time("occurred_at", event.OccurredAt.Truncate(time.Millisecond)).
		Msg("order event")
	return nil
}
