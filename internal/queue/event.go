// Package queue carries member notifications over RabbitMQ: the API
// publishes them and cmd/notifier consumes and delivers them.
package queue

import (
	"time"

	"github.com/iliyamo/club-events/internal/service"
)

// Durable queues the publisher routes to.
const (
	RegistrationQueue      = "registration.confirmed"
	EmailVerificationQueue = "email.verification"
)

// RegistrationConfirmedEvent is published after a registration commits.
// It contains enough for the notifier to address the member without
// querying the primary database.
type RegistrationConfirmedEvent struct {
	RegistrationID uint64 `json:"registration_id"`
	UserID         uint64 `json:"user_id"`
	Recipient      string `json:"recipient"`
	RecipientName  string `json:"recipient_name"`
	EventID        uint64 `json:"event_id"`
	EventTitle     string `json:"event_title"`
	EventDate      string `json:"event_date"`
	EventTime      string `json:"event_time,omitempty"`
	Location       string `json:"location"`
	RegisteredAt   string `json:"registered_at"`
}

func newRegistrationConfirmed(recipient string, s service.EventSummary) RegistrationConfirmedEvent {
	return RegistrationConfirmedEvent{
		RegistrationID: s.RegistrationID,
		UserID:         s.UserID,
		Recipient:      recipient,
		RecipientName:  s.RecipientName,
		EventID:        s.EventID,
		EventTitle:     s.Title,
		EventDate:      s.EventDate.UTC().Format(time.RFC3339),
		EventTime:      s.EventTime,
		Location:       s.Location,
		RegisteredAt:   s.RegisteredAt.UTC().Format(time.RFC3339),
	}
}

// EmailVerificationEvent carries an email change link to the new address.
type EmailVerificationEvent struct {
	UserID        uint64 `json:"user_id"`
	Recipient     string `json:"recipient"`
	RecipientName string `json:"recipient_name"`
	Token         string `json:"token"`
	ExpiresAt     string `json:"expires_at"`
}

func newEmailVerification(v service.EmailVerification) EmailVerificationEvent {
	return EmailVerificationEvent{
		UserID:        v.UserID,
		Recipient:     v.NewEmail,
		RecipientName: v.RecipientName,
		Token:         v.Token,
		ExpiresAt:     v.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
