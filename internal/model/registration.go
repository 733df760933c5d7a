package model

import "time"

// Registration is one member's place at one event. Only the
// cancellation flag and timestamp change after insert.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – member who registered.
//  EventID      – event registered for.
//  RegisteredAt – insert time.
//  IsCancelled  – true once cancelled; a cancelled row is never reactivated.
//  CancelledAt  – set together with IsCancelled.
type Registration struct {
	ID           uint64     // registrations.id
	UserID       uint64     // registrations.user_id
	EventID      uint64     // registrations.event_id
	RegisteredAt time.Time  // registrations.registered_at
	IsCancelled  bool       // registrations.is_cancelled
	CancelledAt  *time.Time // registrations.cancelled_at (nullable)
}

// Participant is an active registration joined with the member's name
// and email for the admin participant list.
type Participant struct {
	RegistrationID uint64
	UserID         uint64
	FullName       string
	Email          string
	RegisteredAt   time.Time
}

// RegistrationDetail is a registration joined with the event fields a
// member sees in "my registrations".
type RegistrationDetail struct {
	Registration
	EventTitle    string
	EventDate     time.Time
	EventLocation string
}
