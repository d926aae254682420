package rules

import (
	"context"
	"fmt"
	"time"

	"eventmanage/internal/domain"
)

// conflictReason is the fixed reason attached to every conflict descriptor.
const conflictReason = "Time overlap with existing event"

// FindConflicts returns one descriptor per non-deleted event the user hosts or
// attends that overlaps [start, end]. Overlap is inclusive on both bounds
// (start_time <= end AND end_time >= start), so back-to-back events where one
// ends exactly when the next starts are reported as conflicts.
// excludeEventID, when non-empty, is skipped so an event edit that keeps its
// window is not flagged against itself. Read-only; an empty result means no
// conflict.
func (e *Engine) FindConflicts(ctx context.Context, userID string, start, end time.Time, excludeEventID string) ([]domain.ConflictDescriptor, error) {
	events, err := e.store.FindOverlapping(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("find overlapping events: %w", err)
	}

	conflicts := make([]domain.ConflictDescriptor, 0, len(events))
	for _, ev := range events {
		if excludeEventID != "" && ev.ID == excludeEventID {
			continue
		}
		conflicts = append(conflicts, domain.ConflictDescriptor{
			EventID:   ev.ID,
			Title:     ev.Title,
			StartTime: ev.StartTime,
			EndTime:   ev.EndTime,
			Location:  ev.Location,
			Reason:    conflictReason,
		})
	}
	return conflicts, nil
}

// RequireNoConflicts runs FindConflicts and converts a non-empty result into a
// domain.ConflictError carrying the full descriptor list. Callers must abort
// the write on error.
func (e *Engine) RequireNoConflicts(ctx context.Context, userID string, start, end time.Time, excludeEventID string) error {
	conflicts, err := e.FindConflicts(ctx, userID, start, end, excludeEventID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &domain.ConflictError{Conflicts: conflicts}
	}
	return nil
}
