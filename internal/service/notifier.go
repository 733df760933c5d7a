package service

import (
	"context"
	"time"
)

// EventSummary is what a member is told about the event they registered for.
type EventSummary struct {
	RegistrationID uint64
	UserID         uint64
	RecipientName  string
	EventID        uint64
	Title          string
	EventDate      time.Time
	EventTime      string
	Location       string
	RegisteredAt   time.Time
}

// Notifier delivers a registration confirmation to recipient. Delivery is
// best effort: callers log errors and never roll back on them.
type Notifier interface {
	NotifyRegistration(ctx context.Context, recipient string, summary EventSummary) error
}

// NopNotifier drops every notification. Used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyRegistration(context.Context, string, EventSummary) error { return nil }

// EmailVerification asks the owner of NewEmail to confirm an address change.
type EmailVerification struct {
	UserID        uint64
	RecipientName string
	NewEmail      string
	Token         string
	ExpiresAt     time.Time
}

// EmailVerifier delivers email change links. Unlike confirmations, a
// failed send is reported to the caller since the change cannot complete
// without the link.
type EmailVerifier interface {
	SendEmailVerification(ctx context.Context, v EmailVerification) error
}

func (NopNotifier) SendEmailVerification(context.Context, EmailVerification) error { return nil }
