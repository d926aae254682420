package rules

import (
	"context"
	"fmt"

	"eventmanage/internal/domain"
)

// CheckViewable decides whether viewerID may see the event. PUBLIC events are
// visible to everyone, including anonymous viewers (empty viewerID). PRIVATE
// events are visible only to the host and users with an attendance record.
func (e *Engine) CheckViewable(ctx context.Context, event *domain.Event, viewerID string) error {
	if event.Visibility == domain.VisibilityPublic {
		return nil
	}
	if event.IsHostedBy(viewerID) {
		return nil
	}
	if viewerID == "" {
		return &domain.UnauthorizedError{Message: "You are not authorized to view this private event"}
	}
	attending, err := e.store.AttendanceExists(ctx, event.ID, viewerID)
	if err != nil {
		return fmt.Errorf("check attendance: %w", err)
	}
	if !attending {
		return &domain.UnauthorizedError{Message: "You are not authorized to view this private event"}
	}
	return nil
}

// CheckMutable decides whether actorID may mutate the event. Only the host or
// a user with the ADMIN role may update, soft-delete, or restore an event.
// The action is named in the failure message.
func (e *Engine) CheckMutable(ctx context.Context, event *domain.Event, actorID string, action Action) error {
	if event.IsHostedBy(actorID) {
		return nil
	}
	if actorID != "" {
		admin, err := e.store.IsAdmin(ctx, actorID)
		if err != nil {
			return fmt.Errorf("check admin role: %w", err)
		}
		if admin {
			return nil
		}
	}
	return &domain.UnauthorizedError{
		Message: fmt.Sprintf("Only the host or an admin can %s this event", action),
	}
}
