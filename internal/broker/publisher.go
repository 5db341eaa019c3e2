// Package broker forwards staffing requests to RabbitMQ so floor managers' tools can
// page on-call staff.
package broker

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/config"
	"github.com/spec-kit/reservation-service/internal/events"
)

// Publisher sends events to a durable queue. Each publish dials its own connection.
type Publisher struct {
	url    string
	queue  string
	logger *zap.Logger
	send   func(ctx context.Context, queue string, msg amqp.Publishing) error
}

// NewPublisher returns nil when no broker URL is configured.
func NewPublisher(cfg config.BrokerConfig, logger *zap.Logger) *Publisher {
	if cfg.URL == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Publisher{url: cfg.URL, queue: cfg.StaffingQueue, logger: logger}
	if p.queue == "" {
		p.queue = "staffing.requested"
	}
	p.send = p.dialAndPublish
	return p
}

// Register subscribes the publisher to staffing events. A nil publisher is a no-op.
func (p *Publisher) Register(dispatcher events.Dispatcher) {
	if p == nil || dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventStaffingRequested, p.Publish)
}

// Publish sends one event as a persistent JSON message. Errors are logged and returned.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	msg, err := Message(event)
	if err != nil {
		p.logger.Warn("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}
	if err := p.send(ctx, p.queue, msg); err != nil {
		p.logger.Warn("rabbitmq: publish failed",
			zap.String("queue", p.queue), zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	p.logger.Info("staffing request published", zap.String("queue", p.queue), zap.String("event_id", event.ID))
	return nil
}

// Message encodes an event for the wire.
func Message(event events.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

func (p *Publisher) dialAndPublish(ctx context.Context, queue string, msg amqp.Publishing) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return ch.PublishWithContext(ctx, "", queue, false, false, msg)
}
