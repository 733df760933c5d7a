package model

import "time"

// Event is a club event members can register for. The pair
// (Capacity, CurrentRegistrations) is the ledger the registration
// service guards: the counter always equals the number of active
// registrations and never exceeds Capacity.
//
// Fields:
//  ID                   – primary key identifier.
//  Title, Description   – listing text.
//  EventDate            – when the event starts (UTC).
//  EventTime            – optional free text such as "18:00 - 20:00".
//  Location             – where the event takes place.
//  Capacity             – maximum number of active registrations.
//  CurrentRegistrations – number of active registrations.
//  RegistrationDeadline – registrations are refused at or after this instant.
//  ImageURL             – optional banner image.
//  IsActive             – false once an admin deletes the event.
type Event struct {
	ID                   uint64    // events.id
	Title                string    // events.title
	Description          string    // events.description
	EventDate            time.Time // events.event_date
	EventTime            *string   // events.event_time (nullable)
	Location             string    // events.location
	Capacity             int       // events.capacity
	CurrentRegistrations int       // events.current_registrations
	RegistrationDeadline time.Time // events.registration_deadline
	ImageURL             *string   // events.image_url (nullable)
	IsActive             bool      // events.is_active
	CreatedAt            time.Time // events.created_at
	UpdatedAt            time.Time // events.updated_at
}

// AvailableSpots is the remaining capacity, never negative.
func (e Event) AvailableSpots() int {
	if n := e.Capacity - e.CurrentRegistrations; n > 0 {
		return n
	}
	return 0
}

// IsFull reports whether no spots remain.
func (e Event) IsFull() bool { return e.CurrentRegistrations >= e.Capacity }

// RegistrationOpen reports whether a registration attempted at now would
// pass the state and deadline checks.
func (e Event) RegistrationOpen(now time.Time) bool {
	return e.IsActive && now.Before(e.RegistrationDeadline)
}

// EventFilter narrows event listings.
type EventFilter struct {
	From            time.Time // only events on or after this instant unless IncludePast
	IncludePast     bool
	IncludeInactive bool
	Limit           int
	Offset          int
}
