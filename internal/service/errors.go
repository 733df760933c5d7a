// Package service holds the business rules that span more than one
// repository call: the registration ledger and event administration.
package service

import "fmt"

// Code is a stable, client-facing error identifier.
type Code string

const (
	CodeNotFound              Code = "NOT_FOUND"
	CodeInvalidState          Code = "INVALID_STATE"
	CodeDeadlinePassed        Code = "DEADLINE_PASSED"
	CodeCapacityExceeded      Code = "CAPACITY_EXCEEDED"
	CodeDuplicateRegistration Code = "DUPLICATE_REGISTRATION"
	CodeForbidden             Code = "FORBIDDEN"
	CodeAlreadyCancelled      Code = "ALREADY_CANCELLED"
	CodeTooLateToCancel       Code = "TOO_LATE_TO_CANCEL"
	CodeValidation            Code = "VALIDATION"
	CodeConflict              Code = "CONFLICT"
	CodeUnauthorized          Code = "UNAUTHORIZED"
)

// Error is a terminal business-rule failure. It is never retried and is
// safe to show to the caller.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Is matches any *Error with the same code, so errors.Is(err, ErrCapacityExceeded)
// holds whatever the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound              = &Error{Code: CodeNotFound}
	ErrInvalidState          = &Error{Code: CodeInvalidState}
	ErrDeadlinePassed        = &Error{Code: CodeDeadlinePassed}
	ErrCapacityExceeded      = &Error{Code: CodeCapacityExceeded}
	ErrDuplicateRegistration = &Error{Code: CodeDuplicateRegistration}
	ErrForbidden             = &Error{Code: CodeForbidden}
	ErrAlreadyCancelled      = &Error{Code: CodeAlreadyCancelled}
	ErrTooLateToCancel       = &Error{Code: CodeTooLateToCancel}
	ErrValidation            = &Error{Code: CodeValidation}
	ErrConflict              = &Error{Code: CodeConflict}
)
