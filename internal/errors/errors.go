package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	// ErrPermissionDenied is returned when do-not-disturb policy access is missing
	ErrPermissionDenied = stderrors.New("policy access denied")
	// ErrSchedulingDenied is returned when the exact-alarm capability is revoked
	ErrSchedulingDenied = stderrors.New("exact alarm scheduling denied")
	// ErrMalformedState marks persisted state that could not be decoded
	ErrMalformedState = stderrors.New("malformed persisted state")
	// ErrIdentifierCollision is returned when an alarm id is held by another timer, day or edge
	ErrIdentifierCollision = stderrors.New("alarm identifier collision")
	// ErrNotFound is returned when a timer or location does not exist
	ErrNotFound = stderrors.New("not found")
	// ErrInvalid wraps validation failures of user input
	ErrInvalid = stderrors.New("invalid input")
)

// Kind classifies an error for reporting and metrics.
type Kind string

const (
	KindNone             Kind = "none"
	KindPermissionDenied Kind = "permission_denied"
	KindSchedulingDenied Kind = "scheduling_denied"
	KindMalformedState   Kind = "malformed_state"
	KindCollision        Kind = "collision"
	KindNotFound         Kind = "not_found"
	KindInvalid          Kind = "invalid"
	KindOther            Kind = "other"
)

// KindOf returns the taxonomy kind of a possibly wrapped error.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case stderrors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case stderrors.Is(err, ErrSchedulingDenied):
		return KindSchedulingDenied
	case stderrors.Is(err, ErrMalformedState):
		return KindMalformedState
	case stderrors.Is(err, ErrIdentifierCollision):
		return KindCollision
	case stderrors.Is(err, ErrNotFound):
		return KindNotFound
	case stderrors.Is(err, ErrInvalid):
		return KindInvalid
	default:
		return KindOther
	}
}

// Invalidf returns a validation error that matches ErrInvalid.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}
