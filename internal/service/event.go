package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/club-events/internal/database"
	"github.com/iliyamo/club-events/internal/model"
	"github.com/iliyamo/club-events/internal/repository"
)

// EventInput is the admin-editable part of an event.
type EventInput struct {
	Title                string
	Description          string
	EventDate            time.Time
	EventTime            *string
	Location             string
	Capacity             int
	RegistrationDeadline time.Time
	ImageURL             *string
}

func (in EventInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return newError(CodeValidation, "title is required")
	case strings.TrimSpace(in.Location) == "":
		return newError(CodeValidation, "location is required")
	case in.Capacity <= 0:
		return newError(CodeValidation, "capacity must be greater than zero")
	case in.EventDate.IsZero() || in.RegistrationDeadline.IsZero():
		return newError(CodeValidation, "event_date and registration_deadline are required")
	case !in.RegistrationDeadline.Before(in.EventDate):
		return newError(CodeValidation, "registration_deadline must be before event_date")
	}
	return nil
}

func (in EventInput) apply(e *model.Event) {
	e.Title = strings.TrimSpace(in.Title)
	e.Description = in.Description
	e.EventDate = in.EventDate.UTC()
	e.EventTime = in.EventTime
	e.Location = strings.TrimSpace(in.Location)
	e.Capacity = in.Capacity
	e.RegistrationDeadline = in.RegistrationDeadline.UTC()
	e.ImageURL = in.ImageURL
}

// EventPatch is a partial update: nil fields keep their stored value.
// IsActive lets an admin bring back a deleted event.
type EventPatch struct {
	Title                *string
	Description          *string
	EventDate            *time.Time
	EventTime            *string
	Location             *string
	Capacity             *int
	RegistrationDeadline *time.Time
	ImageURL             *string
	IsActive             *bool
}

// merge overlays p on the stored event's values.
func (p EventPatch) merge(e model.Event) EventInput {
	in := EventInput{
		Title:                e.Title,
		Description:          e.Description,
		EventDate:            e.EventDate,
		EventTime:            e.EventTime,
		Location:             e.Location,
		Capacity:             e.Capacity,
		RegistrationDeadline: e.RegistrationDeadline,
		ImageURL:             e.ImageURL,
	}
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.EventDate != nil {
		in.EventDate = *p.EventDate
	}
	if p.EventTime != nil {
		in.EventTime = p.EventTime
	}
	if p.Location != nil {
		in.Location = *p.Location
	}
	if p.Capacity != nil {
		in.Capacity = *p.Capacity
	}
	if p.RegistrationDeadline != nil {
		in.RegistrationDeadline = *p.RegistrationDeadline
	}
	if p.ImageURL != nil {
		in.ImageURL = p.ImageURL
	}
	return in
}

// Availability is the public view of an event's remaining capacity.
type Availability struct {
	EventID              uint64
	Capacity             int
	CurrentRegistrations int
	AvailableSpots       int
	IsFull               bool
	RegistrationOpen     bool
}

// EventService manages the event catalogue. Changes that interact with
// the registration counter run under the same event row lock as the
// ledger.
type EventService struct {
	db            *sql.DB
	events        *repository.EventRepo
	registrations *repository.RegistrationRepo
	log           *slog.Logger
	now           func() time.Time
}

func NewEventService(db *sql.DB, events *repository.EventRepo, regs *repository.RegistrationRepo, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{db: db, events: events, registrations: regs, log: logger, now: time.Now}
}

// Create validates and stores a new active event.
func (s *EventService) Create(ctx context.Context, in EventInput) (model.Event, error) {
	if err := in.validate(); err != nil {
		return model.Event{}, err
	}
	var e model.Event
	in.apply(&e)
	if err := s.events.Create(ctx, &e, s.now()); err != nil {
		return model.Event{}, fmt.Errorf("create event: %w", err)
	}
	s.log.InfoContext(ctx, "event created", "event_id", e.ID, "capacity", e.Capacity)
	return s.events.GetByID(ctx, e.ID)
}

// Update applies p to the event. The merged result is validated as a
// whole, and capacity may not drop below the number of active
// registrations. Deactivating through Update follows the same rule as
// Delete.
func (s *EventService) Update(ctx context.Context, id uint64, p EventPatch) (model.Event, error) {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		e, err := s.events.GetForUpdateTx(ctx, tx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return newError(CodeNotFound, "event %d not found", id)
		}
		if err != nil {
			return err
		}
		in := p.merge(e)
		if err := in.validate(); err != nil {
			return err
		}
		if in.Capacity < e.CurrentRegistrations {
			return newError(CodeConflict, "capacity %d is below the %d active registrations", in.Capacity, e.CurrentRegistrations)
		}
		if p.IsActive != nil && !*p.IsActive && e.IsActive {
			n, err := s.registrations.CountActiveTx(ctx, tx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return newError(CodeConflict, "event has %d active registrations", n)
			}
		}
		in.apply(&e)
		if p.IsActive != nil {
			e.IsActive = *p.IsActive
		}
		return s.events.UpdateTx(ctx, tx, &e, s.now())
	})
	if err != nil {
		return model.Event{}, err
	}
	if p.IsActive != nil {
		s.log.InfoContext(ctx, "event activity changed", "event_id", id, "is_active", *p.IsActive)
	}
	return s.events.GetByID(ctx, id)
}

// Delete deactivates the event. It is refused while active
// registrations exist so no member silently loses a place.
func (s *EventService) Delete(ctx context.Context, id uint64) error {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		e, err := s.events.GetForUpdateTx(ctx, tx, id)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && !e.IsActive) {
			return newError(CodeNotFound, "event %d not found", id)
		}
		if err != nil {
			return err
		}
		n, err := s.registrations.CountActiveTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return newError(CodeConflict, "event has %d active registrations", n)
		}
		return s.events.DeactivateTx(ctx, tx, id, s.now())
	})
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "event deactivated", "event_id", id)
	return nil
}

// Get returns an event. Inactive events are hidden unless includeInactive.
func (s *EventService) Get(ctx context.Context, id uint64, includeInactive bool) (model.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !e.IsActive && !includeInactive) {
		return model.Event{}, newError(CodeNotFound, "event %d not found", id)
	}
	return e, err
}

// List returns one page of events matching f and the total match count;
// upcoming only unless f.IncludePast.
func (s *EventService) List(ctx context.Context, f model.EventFilter) ([]model.Event, int64, error) {
	if f.From.IsZero() {
		f.From = s.now()
	}
	return s.events.List(ctx, f)
}

// Search finds active events by title or location text. When is one of
// "upcoming", "open" or "any"; anything else means upcoming.
func (s *EventService) Search(ctx context.Context, q repository.EventSearchQuery) ([]model.Event, int64, error) {
	q.Now = s.now()
	return s.events.Search(ctx, q)
}

// Availability reports remaining capacity for an active event.
func (s *EventService) Availability(ctx context.Context, id uint64) (Availability, error) {
	e, err := s.Get(ctx, id, false)
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		EventID:              e.ID,
		Capacity:             e.Capacity,
		CurrentRegistrations: e.CurrentRegistrations,
		AvailableSpots:       e.AvailableSpots(),
		IsFull:               e.IsFull(),
		RegistrationOpen:     e.RegistrationOpen(s.now()),
	}, nil
}
