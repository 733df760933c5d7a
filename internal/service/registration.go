package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iliyamo/club-events/internal/database"
	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
)

// CancellationWindow is the minimum time between cancelling and the
// event start. Cancelling exactly this far ahead is still allowed.
const CancellationWindow = 24 * time.Hour

const notifyTimeout = 10 * time.Second

// RegistrationService is the event registration ledger. Every change to
// a registration and to the owning event's counter happens in a single
// transaction that holds the event row lock, so the counter always
// equals the number of active registrations and never exceeds capacity.
type RegistrationService struct {
	db            *sql.DB
	events        *repository.EventRepo
	registrations *repository.RegistrationRepo
	users         *repository.UserRepo
	notifier      Notifier
	log           *slog.Logger
	now           func() time.Time

	// beforeInsert, when set, runs after the checks and before the insert
	// inside the registration transaction. Tests use it to race a row in.
	beforeInsert func(ctx context.Context, tx *sql.Tx) error

	pending sync.WaitGroup
}

// NewRegistrationService wires the ledger. A nil notifier disables
// confirmations and a nil logger falls back to slog.Default.
func NewRegistrationService(db *sql.DB, events *repository.EventRepo, regs *repository.RegistrationRepo,
	users *repository.UserRepo, notifier Notifier, logger *slog.Logger) *RegistrationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{
		db:            db,
		events:        events,
		registrations: regs,
		users:         users,
		notifier:      notifier,
		log:           logger,
		now:           time.Now,
	}
}

// Register books userID onto eventID. Checks run in this order: event
// exists, event active, deadline not reached, capacity left, no active
// registration for the pair.
func (s *RegistrationService) Register(ctx context.Context, eventID, userID uint64) (model.Registration, error) {
	var (
		reg   model.Registration
		event model.Event
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		now := s.now().UTC()

		ev, err := s.events.GetForUpdateTx(ctx, tx, eventID)
		if errors.Is(err, repository.ErrNotFound) {
			return newError(CodeNotFound, "event %d not found", eventID)
		}
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}
		if !ev.IsActive {
			return newError(CodeInvalidState, "event is not open for registration")
		}
		if !now.Before(ev.RegistrationDeadline) {
			return newError(CodeDeadlinePassed, "registration deadline has passed")
		}
		if ev.CurrentRegistrations >= ev.Capacity {
			return newError(CodeCapacityExceeded, "event is full")
		}

		exists, err := s.registrations.ActiveExistsTx(ctx, tx, userID, eventID)
		if err != nil {
			return fmt.Errorf("check existing registration: %w", err)
		}
		if exists {
			return newError(CodeDuplicateRegistration, "already registered for this event")
		}

		if s.beforeInsert != nil {
			if err := s.beforeInsert(ctx, tx); err != nil {
				return err
			}
		}

		r := model.Registration{UserID: userID, EventID: eventID, RegisteredAt: now}
		if err := s.registrations.CreateTx(ctx, tx, &r); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return newError(CodeDuplicateRegistration, "already registered for this event")
			}
			return fmt.Errorf("insert registration: %w", err)
		}
		if err := s.events.IncrementRegistrationsTx(ctx, tx, eventID, now); err != nil {
			if errors.Is(err, repository.ErrNoChange) {
				return newError(CodeCapacityExceeded, "event is full")
			}
			return fmt.Errorf("increment counter: %w", err)
		}

		reg, event = r, ev
		return nil
	})
	if err != nil {
		return model.Registration{}, err
	}

	s.log.InfoContext(ctx, "registration created",
		"registration_id", reg.ID, "event_id", eventID, "user_id", userID)
	s.notifyAsync(ctx, reg, event)
	return reg, nil
}

// Cancel releases a registration owned by userID. Checks run in this
// order: registration exists, caller owns it, not already cancelled, at
// least CancellationWindow before the event.
func (s *RegistrationService) Cancel(ctx context.Context, registrationID, userID uint64) (model.Registration, error) {
	var out model.Registration
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		reg, err := s.cancelTx(ctx, tx, registrationID, userID, s.now().UTC(), true)
		out = reg
		return err
	})
	if err != nil {
		return model.Registration{}, err
	}
	s.log.InfoContext(ctx, "registration cancelled",
		"registration_id", out.ID, "event_id", out.EventID, "user_id", userID)
	return out, nil
}

// cancelTx runs the cancellation checks and writes inside tx. The
// cancellation window applies only when enforceWindow is set.
func (s *RegistrationService) cancelTx(ctx context.Context, tx *sql.Tx, registrationID, userID uint64,
	now time.Time, enforceWindow bool) (model.Registration, error) {
	// Unlocked read to learn the event; locks are then taken event
	// first, registration second, the same order Register uses.
	peek, err := s.registrations.GetTx(ctx, tx, registrationID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Registration{}, newError(CodeNotFound, "registration %d not found", registrationID)
	}
	if err != nil {
		return model.Registration{}, fmt.Errorf("load registration: %w", err)
	}

	ev, err := s.events.GetForUpdateTx(ctx, tx, peek.EventID)
	if err != nil {
		return model.Registration{}, fmt.Errorf("lock event: %w", err)
	}
	reg, err := s.registrations.GetForUpdateTx(ctx, tx, registrationID)
	if err != nil {
		return model.Registration{}, fmt.Errorf("lock registration: %w", err)
	}

	if reg.UserID != userID {
		return model.Registration{}, newError(CodeForbidden, "registration belongs to another user")
	}
	if reg.IsCancelled {
		return model.Registration{}, newError(CodeAlreadyCancelled, "registration is already cancelled")
	}
	if enforceWindow && ev.EventDate.Sub(now) < CancellationWindow {
		return model.Registration{}, newError(CodeTooLateToCancel, "cancellations close 24 hours before the event")
	}

	if err := s.registrations.CancelTx(ctx, tx, reg.ID, now); err != nil {
		if errors.Is(err, repository.ErrNoChange) {
			return model.Registration{}, newError(CodeAlreadyCancelled, "registration is already cancelled")
		}
		return model.Registration{}, fmt.Errorf("cancel registration: %w", err)
	}
	if err := s.events.DecrementRegistrationsTx(ctx, tx, ev.ID, now); err != nil {
		return model.Registration{}, fmt.Errorf("decrement counter for event %d: %w", ev.ID, err)
	}

	cancelledAt := now.Truncate(time.Microsecond)
	reg.IsCancelled = true
	reg.CancelledAt = &cancelledAt
	return reg, nil
}

// CancelUpcomingForUser releases every active registration userID holds
// for an event that has not started yet. It is used when an account is
// closed, so the cancellation window does not apply. Each registration is
// released in its own transaction; the count of released ones is returned.
func (s *RegistrationService) CancelUpcomingForUser(ctx context.Context, userID uint64) (int, error) {
	regs, err := s.registrations.ListByUser(ctx, userID, false)
	if err != nil {
		return 0, fmt.Errorf("list registrations: %w", err)
	}
	released := 0
	for _, r := range regs {
		now := s.now().UTC()
		if !r.EventDate.After(now) {
			continue
		}
		err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			_, err := s.cancelTx(ctx, tx, r.ID, userID, now, false)
			return err
		})
		if errors.Is(err, ErrAlreadyCancelled) {
			continue
		}
		if err != nil {
			return released, fmt.Errorf("cancel registration %d: %w", r.ID, err)
		}
		released++
	}
	s.log.InfoContext(ctx, "upcoming registrations released", "user_id", userID, "count", released)
	return released, nil
}

// Get returns a registration owned by userID.
func (s *RegistrationService) Get(ctx context.Context, registrationID, userID uint64) (model.Registration, error) {
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Registration{}, newError(CodeNotFound, "registration %d not found", registrationID)
	}
	if err != nil {
		return model.Registration{}, err
	}
	if reg.UserID != userID {
		return model.Registration{}, newError(CodeForbidden, "registration belongs to another user")
	}
	return reg, nil
}

// ListForUser returns the member's registrations, newest first.
func (s *RegistrationService) ListForUser(ctx context.Context, userID uint64, includeCancelled bool) ([]model.RegistrationDetail, error) {
	return s.registrations.ListByUser(ctx, userID, includeCancelled)
}

// ListParticipants returns the active registrations of an existing event.
func (s *RegistrationService) ListParticipants(ctx context.Context, eventID uint64) ([]model.Participant, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(CodeNotFound, "event %d not found", eventID)
		}
		return nil, err
	}
	return s.registrations.ListParticipants(ctx, eventID)
}

// Wait blocks until in-flight notifications have finished.
func (s *RegistrationService) Wait() { s.pending.Wait() }

func (s *RegistrationService) notifyAsync(ctx context.Context, reg model.Registration, ev model.Event) {
	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()

		u, err := s.users.GetByID(ctx, reg.UserID)
		if err != nil {
			s.log.WarnContext(ctx, "notification skipped: load user", "user_id", reg.UserID, "err", err)
			return
		}
		summary := EventSummary{
			RegistrationID: reg.ID,
			UserID:         u.ID,
			RecipientName:  u.FullName,
			EventID:        ev.ID,
			Title:          ev.Title,
			EventDate:      ev.EventDate,
			Location:       ev.Location,
			RegisteredAt:   reg.RegisteredAt,
		}
		if ev.EventTime != nil {
			summary.EventTime = *ev.EventTime
		}
		if err := s.notifier.NotifyRegistration(ctx, u.Email, summary); err != nil {
			s.log.WarnContext(ctx, "registration notification failed",
				"registration_id", reg.ID, "err", err)
		}
	}()
}
