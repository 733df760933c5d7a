package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/club-events/internal/service"
)

// Publisher sends member notifications to RabbitMQ. It dials per
// publish; notifications are rare enough that a pooled connection would
// only add reconnect handling.
type Publisher struct {
	url  string
	dial func(url string) (amqpConn, error)
}

// amqpConn and amqpChannel narrow the amqp091 types to what Publisher
// uses so tests can substitute them.
type amqpConn interface {
	Channel() (amqpChannel, error)
	Close() error
}

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type realConn struct{ *amqp.Connection }

func (c realConn) Channel() (amqpChannel, error) { return c.Connection.Channel() }

func NewPublisher(url string) *Publisher {
	return &Publisher{
		url: url,
		dial: func(url string) (amqpConn, error) {
			conn, err := amqp.Dial(url)
			if err != nil {
				return nil, err
			}
			return realConn{conn}, nil
		},
	}
}

var (
	_ service.Notifier      = (*Publisher)(nil)
	_ service.EmailVerifier = (*Publisher)(nil)
)

// NotifyRegistration publishes a persistent RegistrationConfirmedEvent.
func (p *Publisher) NotifyRegistration(ctx context.Context, recipient string, summary service.EventSummary) error {
	return p.publish(ctx, RegistrationQueue, newRegistrationConfirmed(recipient, summary))
}

// SendEmailVerification publishes a persistent EmailVerificationEvent.
func (p *Publisher) SendEmailVerification(ctx context.Context, v service.EmailVerification) error {
	return p.publish(ctx, EmailVerificationQueue, newEmailVerification(v))
}

func (p *Publisher) publish(ctx context.Context, queue string, ev any) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
