package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-events/internal/service"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendRegistrationConfirmation(ctx context.Context, ev RegistrationConfirmedEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *mockMailer) SendEmailVerification(ctx context.Context, ev EmailVerificationEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type fakeChannel struct {
	declared  string
	published []amqp.Publishing
	key       string
	closed    bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if !durable {
		return amqp.Queue{}, errors.New("queue must be durable")
	}
	f.declared = name
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.key = key
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { f.closed = true; return nil }

type fakeConn struct{ ch *fakeChannel }

func (f fakeConn) Channel() (amqpChannel, error) { return f.ch, nil }
func (f fakeConn) Close() error                  { return nil }

func summary() service.EventSummary {
	return service.EventSummary{
		RegistrationID: 9,
		UserID:         4,
		RecipientName:  "Ada",
		EventID:        2,
		Title:          "Go meetup",
		EventDate:      time.Date(2030, 1, 2, 18, 0, 0, 0, time.UTC),
		Location:       "Room 101",
		RegisteredAt:   time.Date(2029, 12, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_PublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher("amqp://unused")
	p.dial = func(string) (amqpConn, error) { return fakeConn{ch: ch}, nil }

	require.NoError(t, p.NotifyRegistration(context.Background(), "ada@club.test", summary()))

	assert.Equal(t, RegistrationQueue, ch.declared)
	assert.Equal(t, RegistrationQueue, ch.key)
	assert.True(t, ch.closed)
	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.NotEmpty(t, msg.MessageId)

	var ev RegistrationConfirmedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &ev))
	assert.Equal(t, "ada@club.test", ev.Recipient)
	assert.Equal(t, "Go meetup", ev.EventTitle)
	assert.Equal(t, "2030-01-02T18:00:00Z", ev.EventDate)
}

func TestPublisher_SendEmailVerification(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher("amqp://unused")
	p.dial = func(string) (amqpConn, error) { return fakeConn{ch: ch}, nil }

	require.NoError(t, p.SendEmailVerification(context.Background(), service.EmailVerification{
		UserID:        4,
		RecipientName: "Ada",
		NewEmail:      "ada.new@club.test",
		Token:         "signed-token",
		ExpiresAt:     time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC),
	}))

	assert.Equal(t, EmailVerificationQueue, ch.declared)
	assert.Equal(t, EmailVerificationQueue, ch.key)
	require.Len(t, ch.published, 1)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	var ev EmailVerificationEvent
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &ev))
	assert.Equal(t, "ada.new@club.test", ev.Recipient)
	assert.Equal(t, "signed-token", ev.Token)
	assert.Equal(t, "2030-01-01T10:00:00Z", ev.ExpiresAt)
}

func TestPublisher_DialError(t *testing.T) {
	p := NewPublisher("amqp://unused")
	p.dial = func(string) (amqpConn, error) { return nil, errors.New("connection refused") }

	err := p.NotifyRegistration(context.Background(), "ada@club.test", summary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestConsumer_Handle(t *testing.T) {
	m := &mockMailer{}
	c := &Consumer{Mailer: m, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	ev := newRegistrationConfirmed("ada@club.test", summary())
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	m.On("SendRegistrationConfirmation", mock.Anything, ev).Return(nil).Once()

	require.NoError(t, c.Handle(context.Background(), body))
	m.AssertExpectations(t)
}

func TestConsumer_HandleRejectsBadMessages(t *testing.T) {
	m := &mockMailer{}
	c := &Consumer{Mailer: m, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	assert.Error(t, c.Handle(context.Background(), []byte("{not json")))
	assert.Error(t, c.Handle(context.Background(), []byte(`{"event_id":1}`)))
	m.AssertNotCalled(t, "SendRegistrationConfirmation", mock.Anything, mock.Anything)
}

func TestConsumer_HandleEmailVerification(t *testing.T) {
	m := &mockMailer{}
	c := &Consumer{Mailer: m, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	ev := EmailVerificationEvent{UserID: 4, Recipient: "ada.new@club.test", Token: "signed-token", ExpiresAt: "2030-01-01T10:00:00Z"}
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	m.On("SendEmailVerification", mock.Anything, ev).Return(nil).Once()
	require.NoError(t, c.HandleEmailVerification(context.Background(), body))

	assert.Error(t, c.HandleEmailVerification(context.Background(), []byte(`{"recipient":"x@club.test"}`)))
	m.AssertExpectations(t)
}

func TestConsumer_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Consumer{URL: "amqp://127.0.0.1:1/", Mailer: LogMailer{}, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}
