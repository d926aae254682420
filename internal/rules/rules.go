// Package rules implements the event scheduling-conflict, visibility, and
// lifecycle decision logic. It is a pure decision layer: the only I/O it
// performs is reads through the Store contract, and nothing here is retried.
package rules

import (
	"context"
	"time"

	"eventmanage/internal/domain"
)

// Store is the narrow read contract the rule engine consumes.
type Store interface {
	// FindOverlapping returns non-deleted events the user hosts or attends
	// whose window satisfies start_time <= end AND end_time >= start.
	FindOverlapping(ctx context.Context, userID string, start, end time.Time) ([]*domain.Event, error)
	// AttendanceExists reports whether the user has an RSVP for the event.
	AttendanceExists(ctx context.Context, eventID, userID string) (bool, error)
	// IsAdmin reports whether the user exists and has the ADMIN role.
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Action is the closed set of operations gated by the engine.
type Action string

const (
	ActionJoin       Action = "join"
	ActionChangeRSVP Action = "change RSVP for"
	ActionLeave      Action = "leave"
	ActionDelete     Action = "delete"
	ActionRestore    Action = "restore"
	ActionUpdate     Action = "update"
)

// Engine evaluates conflict, visibility, and lifecycle rules over a Store.
type Engine struct {
	store Store
	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewEngine returns an Engine backed by the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// WithClock returns a copy of the engine using the given clock. Test helper.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	return &Engine{store: e.store, now: now}
}
