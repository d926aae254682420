package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound       = errors.New("not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrDuplicateEmail = errors.New("email already in use")
)

// UnauthorizedError is a guard failure with a caller-facing message that
// identifies what was denied without leaking entity contents.
// errors.Is(err, ErrUnauthorized) matches it.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// ValidationError is a terminal input or state error. The message is surfaced
// verbatim to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError returns a ValidationError with the given message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictDescriptor describes one event that overlaps a candidate time window.
// swagger:model ConflictDescriptor
type ConflictDescriptor struct {
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Location  string    `json:"location"`
	Reason    string    `json:"reason"`
}

// ConflictError aborts an event write because the user already has overlapping
// commitments. It always carries the full descriptor list.
type ConflictError struct {
	Conflicts []ConflictDescriptor
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("event conflicts with %d existing event(s)", len(e.Conflicts))
}

// AsConflict returns the ConflictError wrapped in err, if any.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	ok := errors.As(err, &ce)
	return ce, ok
}
