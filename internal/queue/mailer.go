package queue

import (
	"context"
	"log/slog"
)

// Mailer delivers notifications to the member.
type Mailer interface {
	SendRegistrationConfirmation(ctx context.Context, ev RegistrationConfirmedEvent) error
	SendEmailVerification(ctx context.Context, ev EmailVerificationEvent) error
}

// LogMailer writes one structured log line per message instead of
// sending mail.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m LogMailer) SendRegistrationConfirmation(ctx context.Context, ev RegistrationConfirmedEvent) error {
	m.logger().InfoContext(ctx, "registration confirmed",
		"to", ev.Recipient,
		"name", ev.RecipientName,
		"registration_id", ev.RegistrationID,
		"event_id", ev.EventID,
		"event", ev.EventTitle,
		"event_date", ev.EventDate,
		"location", ev.Location,
	)
	return nil
}

func (m LogMailer) SendEmailVerification(ctx context.Context, ev EmailVerificationEvent) error {
	m.logger().InfoContext(ctx, "email verification",
		"to", ev.Recipient,
		"name", ev.RecipientName,
		"user_id", ev.UserID,
		"token", ev.Token,
		"expires_at", ev.ExpiresAt,
	)
	return nil
}
