// Package service publishes audit events to RabbitMQ.  Failures are logged
// and returned so request handlers can ignore them without interrupting
// the page flow.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/oxbridge-lms/internal/logging"
	"github.com/iliyamo/oxbridge-lms/internal/queue"
)

// Publisher sends audit events.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// Nop drops every event; used when EVENTS_ENABLED is off.
type Nop struct{}

func (Nop) Publish(context.Context, queue.Event) error { return nil }

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQP dials the broker for every event.  Events are rare (one per login or
// study launch) so no connection is kept open between requests.
type AMQP struct {
	url  string
	log  logging.Logger
	open func(url string) (channel, func() error, error)
}

func NewAMQP(url string, log logging.Logger) *AMQP {
	return &AMQP{url: url, log: log, open: dial}
}

func dial(url string) (channel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("channel open: %w", err)
	}
	return ch, conn.Close, nil
}

// Publish declares the durable queue and sends ev as a persistent JSON
// message on the default exchange.
func (p *AMQP) Publish(ctx context.Context, ev queue.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error(ctx, "rabbitmq: marshal event failed", "err", err)
		return err
	}

	ch, closeConn, err := p.open(p.url)
	if err != nil {
		p.log.Warn(ctx, "rabbitmq: connect failed", "err", err)
		return err
	}
	defer func() { _ = closeConn() }()
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.QueueName, true, false, false, false, nil); err != nil {
		p.log.Warn(ctx, "rabbitmq: queue declare failed", "err", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(ev.Kind),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.QueueName, false, false, pub); err != nil {
		p.log.Warn(ctx, "rabbitmq: publish failed", "err", err, "kind", ev.Kind)
		return err
	}
	return nil
}

// New returns an AMQP publisher when events are enabled and Nop otherwise.
func New(enabled bool, url string, log logging.Logger) Publisher {
	if !enabled {
		return Nop{}
	}
	return NewAMQP(url, log)
}
