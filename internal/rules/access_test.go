package rules

import (
	"context"
	"errors"
	"testing"

	"eventmanage/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestEngine_CheckViewable(t *testing.T) {
	ctx := context.Background()

	publicEvent := &domain.Event{ID: "ev-pub", HostID: "host-1", Visibility: domain.VisibilityPublic}
	privateEvent := &domain.Event{ID: "ev-priv", HostID: "host-1", Visibility: domain.VisibilityPrivate}

	tests := []struct {
		name     string
		event    *domain.Event
		viewerID string
		attends  map[string][]string
		wantErr  bool
	}{
		{name: "public visible to stranger", event: publicEvent, viewerID: "user-x"},
		{name: "public visible to anonymous", event: publicEvent, viewerID: ""},
		{name: "private visible to host", event: privateEvent, viewerID: "host-1"},
		{
			name:     "private visible to attendee",
			event:    privateEvent,
			viewerID: "user-x",
			attends:  map[string][]string{"user-x": {"ev-priv"}},
		},
		{name: "private hidden from stranger", event: privateEvent, viewerID: "user-x", wantErr: true},
		{name: "private hidden from anonymous", event: privateEvent, viewerID: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&mockStore{attending: tt.attends})
			err := engine.CheckViewable(ctx, tt.event, tt.viewerID)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, domain.ErrUnauthorized)
				require.Equal(t, "You are not authorized to view this private event", err.Error())
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEngine_CheckViewable_AttendeeGainsAccess(t *testing.T) {
	ctx := context.Background()
	privateEvent := &domain.Event{ID: "ev-priv", HostID: "host-1", Visibility: domain.VisibilityPrivate}

	store := &mockStore{attending: map[string][]string{}}
	engine := NewEngine(store)

	err := engine.CheckViewable(ctx, privateEvent, "user-x")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	// Same viewer added as MAYBE attendee is now permitted.
	store.attending["user-x"] = []string{"ev-priv"}
	require.NoError(t, engine.CheckViewable(ctx, privateEvent, "user-x"))
}

func TestEngine_CheckMutable(t *testing.T) {
	ctx := context.Background()

	event := &domain.Event{ID: "ev-1", HostID: "host-1"}

	tests := []struct {
		name    string
		actorID string
		admins  map[string]bool
		action  Action
		wantErr string
	}{
		{name: "host may update", actorID: "host-1", action: ActionUpdate},
		{name: "admin may delete", actorID: "admin-1", admins: map[string]bool{"admin-1": true}, action: ActionDelete},
		{name: "admin may restore", actorID: "admin-1", admins: map[string]bool{"admin-1": true}, action: ActionRestore},
		{
			name:    "stranger may not update",
			actorID: "user-x",
			action:  ActionUpdate,
			wantErr: "Only the host or an admin can update this event",
		},
		{
			name:    "stranger may not delete",
			actorID: "user-x",
			action:  ActionDelete,
			wantErr: "Only the host or an admin can delete this event",
		},
		{
			name:    "anonymous may not restore",
			actorID: "",
			action:  ActionRestore,
			wantErr: "Only the host or an admin can restore this event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&mockStore{admins: tt.admins})
			err := engine.CheckMutable(ctx, event, tt.actorID, tt.action)
			if tt.wantErr != "" {
				require.Error(t, err)
				require.ErrorIs(t, err, domain.ErrUnauthorized)
				require.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEngine_CheckMutable_StoreError(t *testing.T) {
	ctx := context.Background()
	event := &domain.Event{ID: "ev-1", HostID: "host-1"}

	engine := NewEngine(&mockStore{adminErr: errors.New("db down")})
	err := engine.CheckMutable(ctx, event, "user-x", ActionUpdate)
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrUnauthorized)
}
