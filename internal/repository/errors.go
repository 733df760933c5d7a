// Package repository holds the SQL data access for users, events,
// registrations and site content. The sentinel errors below let the
// service layer tell failure scenarios apart without inspecting driver
// errors; driver-specific detection lives in package database.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as deactivating an event that still has
// active registrations.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert violates the active
// (user_id, event_id) registration index.
var ErrDuplicate = errors.New("duplicate registration")

// ErrNoChange is returned by guarded updates whose WHERE clause matched
// no row, e.g. a compare-and-swap on the registration counter.
var ErrNoChange = errors.New("no rows changed")

var (
	ErrEmailExists    = errors.New("email already exists")
	ErrIdentityExists = errors.New("identity already registered")
)
