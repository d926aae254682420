package rules

import (
	"testing"
	"time"

	"eventmanage/internal/domain"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func pastEvent() *domain.Event {
	return &domain.Event{
		ID:        "ev-past",
		StartTime: testNow.Add(-3 * time.Hour),
		EndTime:   testNow.Add(-1 * time.Hour),
	}
}

func upcomingEvent() *domain.Event {
	return &domain.Event{
		ID:        "ev-up",
		StartTime: testNow.Add(1 * time.Hour),
		EndTime:   testNow.Add(2 * time.Hour),
	}
}

func TestEngine_CheckTransition_RSVPOnPastEvent(t *testing.T) {
	engine := NewEngine(&mockStore{}).WithClock(fixedClock)

	tests := []struct {
		action  Action
		wantMsg string
	}{
		{ActionJoin, "Cannot attend a past event"},
		{ActionChangeRSVP, "Cannot update attendance for a past event"},
		{ActionLeave, "Cannot remove attendance for a past event"},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			err := engine.CheckTransition(pastEvent(), tt.action)
			require.Error(t, err)
			require.True(t, domain.IsValidation(err))
			require.Equal(t, tt.wantMsg, err.Error())

			require.NoError(t, engine.CheckTransition(upcomingEvent(), tt.action))
		})
	}
}

func TestEngine_CheckTransition_RSVPOnOngoingEventAllowed(t *testing.T) {
	engine := NewEngine(&mockStore{}).WithClock(fixedClock)

	ongoing := &domain.Event{
		ID:        "ev-on",
		StartTime: testNow.Add(-30 * time.Minute),
		EndTime:   testNow.Add(30 * time.Minute),
	}
	require.NoError(t, engine.CheckTransition(ongoing, ActionJoin))

	// An event that ends exactly now is past: end >= now.
	endsNow := &domain.Event{
		ID:        "ev-end",
		StartTime: testNow.Add(-1 * time.Hour),
		EndTime:   testNow,
	}
	err := engine.CheckTransition(endsNow, ActionJoin)
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
}

func TestEngine_CheckTransition_SoftDelete(t *testing.T) {
	engine := NewEngine(&mockStore{}).WithClock(fixedClock)

	active := upcomingEvent()
	require.NoError(t, engine.CheckTransition(active, ActionDelete))

	deleted := upcomingEvent()
	deleted.Deleted = true
	err := engine.CheckTransition(deleted, ActionDelete)
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
	require.Equal(t, "Event is already deleted", err.Error())
}

func TestEngine_CheckTransition_Restore(t *testing.T) {
	engine := NewEngine(&mockStore{}).WithClock(fixedClock)

	deleted := upcomingEvent()
	deleted.Deleted = true
	require.NoError(t, engine.CheckTransition(deleted, ActionRestore))

	err := engine.CheckTransition(upcomingEvent(), ActionRestore)
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
	require.Equal(t, "Event is not deleted", err.Error())
}

func TestEngine_CheckTransition_UpdateHasNoTemporalGate(t *testing.T) {
	engine := NewEngine(&mockStore{}).WithClock(fixedClock)
	require.NoError(t, engine.CheckTransition(pastEvent(), ActionUpdate))
}

func TestEngine_ValidateEventDates(t *testing.T) {
	engine := NewEngine(&mockStore{}).WithClock(fixedClock)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantMsg string
	}{
		{
			name:  "valid future window",
			start: testNow.Add(1 * time.Hour),
			end:   testNow.Add(2 * time.Hour),
		},
		{
			name:  "zero-length window allowed",
			start: testNow.Add(1 * time.Hour),
			end:   testNow.Add(1 * time.Hour),
		},
		{
			name:    "start in the past",
			start:   testNow.Add(-1 * time.Hour),
			end:     testNow.Add(1 * time.Hour),
			wantMsg: "Event start time must be in the future",
		},
		{
			name:    "start exactly now rejected",
			start:   testNow,
			end:     testNow.Add(1 * time.Hour),
			wantMsg: "Event start time must be in the future",
		},
		{
			name:    "end before start",
			start:   testNow.Add(2 * time.Hour),
			end:     testNow.Add(1 * time.Hour),
			wantMsg: "Event end time must be after start time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.ValidateEventDates(tt.start, tt.end)
			if tt.wantMsg != "" {
				require.Error(t, err)
				require.True(t, domain.IsValidation(err))
				require.Equal(t, tt.wantMsg, err.Error())
				return
			}
			require.NoError(t, err)
		})
	}
}
