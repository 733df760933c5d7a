package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer reads registration confirmations and email change links and
// hands them to a Mailer.
type Consumer struct {
	URL    string
	Mailer Mailer
	Logger *slog.Logger
}

const maxBackoff = 30 * time.Second

// Run connects to RabbitMQ, declares the durable queues and consumes until
// ctx is cancelled, reconnecting with exponential backoff when the broker
// goes away.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn("notifier: dial failed", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn("notifier: consume loop ended; reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.Warn("notifier: set QoS failed", "err", err)
	}
	confirmations, err := declareAndConsume(ch, RegistrationQueue)
	if err != nil {
		return err
	}
	verifications, err := declareAndConsume(ch, EmailVerificationQueue)
	if err != nil {
		return err
	}

	for {
		var (
			d  amqp.Delivery
			ok bool
		)
		handle := c.Handle
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-confirmations:
		case d, ok = <-verifications:
			handle = c.HandleEmailVerification
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := handle(ctx, d.Body); err != nil {
			c.Logger.Error("notifier: handle message failed", "queue", d.RoutingKey, "message_id", d.MessageId, "err", err)
			_ = d.Nack(false, false) // drop, do not requeue into a tight loop
			continue
		}
		_ = d.Ack(false)
	}
}

func declareAndConsume(ch *amqp.Channel, queue string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", queue, err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", queue, err)
	}
	return msgs, nil
}

// Handle decodes one registration confirmation and delivers it.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev RegistrationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Recipient == "" {
		return errors.New("message has no recipient")
	}
	return c.Mailer.SendRegistrationConfirmation(ctx, ev)
}

// HandleEmailVerification decodes one email change link and delivers it.
func (c *Consumer) HandleEmailVerification(ctx context.Context, body []byte) error {
	var ev EmailVerificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Recipient == "" || ev.Token == "" {
		return errors.New("message has no recipient or token")
	}
	return c.Mailer.SendEmailVerification(ctx, ev)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
