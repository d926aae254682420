package rules

import (
	"time"

	"eventmanage/internal/domain"
)

// CheckTransition enforces temporal and soft-delete state rules for the given
// action. It is pure: the decision depends only on the event and the engine's
// clock.
//
// RSVPs (join, change, leave) are rejected once the event is past, regardless
// of who asks. Deleting an already-deleted event and restoring a non-deleted
// event are both validation errors.
func (e *Engine) CheckTransition(event *domain.Event, action Action) error {
	now := e.now()
	switch action {
	case ActionJoin:
		if event.IsPast(now) {
			return domain.NewValidationError("Cannot attend a past event")
		}
	case ActionChangeRSVP:
		if event.IsPast(now) {
			return domain.NewValidationError("Cannot update attendance for a past event")
		}
	case ActionLeave:
		if event.IsPast(now) {
			return domain.NewValidationError("Cannot remove attendance for a past event")
		}
	case ActionDelete:
		if event.Deleted {
			return domain.NewValidationError("Event is already deleted")
		}
	case ActionRestore:
		if !event.Deleted {
			return domain.NewValidationError("Event is not deleted")
		}
	case ActionUpdate:
		// No temporal restriction beyond ValidateEventDates on the new window.
	}
	return nil
}

// ValidateEventDates checks the candidate window for a create or update:
// the start must be strictly in the future, and the end after the start.
func (e *Engine) ValidateEventDates(start, end time.Time) error {
	now := e.now()
	if !start.After(now) {
		return domain.NewValidationError("Event start time must be in the future")
	}
	if end.Before(start) {
		return domain.NewValidationError("Event end time must be after start time")
	}
	if end.Before(now) {
		return domain.NewValidationError("Event end time must be in the future")
	}
	return nil
}
