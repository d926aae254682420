package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmanage/internal/delivery/http/helpers"
	"eventmanage/internal/delivery/http/middleware"
	"eventmanage/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID = "11111111-2222-3333-4444-555555555555"
	testUserID  = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createResult    *domain.Event
	createErr       error
	lastCreated     *domain.Event
	lastCreateHost  string
	detailResult    *domain.EventDetail
	detailErr       error
	lastViewerID    string
	updateResult    *domain.Event
	updateErr       error
	lastUpdate      *domain.EventUpdate
	deleteErr       error
	restoreResult   *domain.Event
	restoreErr      error
	conflictsResult []domain.ConflictDescriptor
	conflictsErr    error
	lastConflictArg struct {
		userID  string
		start   time.Time
		end     time.Time
		exclude string
	}
	listResult  []*domain.Event
	listTotal   int
	listErr     error
	statsResult *domain.EventStats
	statsErr    error
}

func (f *fakeEventService) CreateEvent(_ context.Context, hostID string, event *domain.Event) (*domain.Event, error) {
	f.lastCreateHost = hostID
	f.lastCreated = event
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createResult != nil {
		return f.createResult, nil
	}
	return event, nil
}

func (f *fakeEventService) GetEventByID(_ context.Context, eventID, viewerID string) (*domain.EventDetail, error) {
	f.lastViewerID = viewerID
	return f.detailResult, f.detailErr
}

func (f *fakeEventService) UpdateEvent(_ context.Context, eventID, actorID string, update *domain.EventUpdate) (*domain.Event, error) {
	f.lastUpdate = update
	return f.updateResult, f.updateErr
}

func (f *fakeEventService) DeleteEvent(_ context.Context, eventID, actorID string) error {
	return f.deleteErr
}

func (f *fakeEventService) RestoreEvent(_ context.Context, eventID, actorID string) (*domain.Event, error) {
	return f.restoreResult, f.restoreErr
}

func (f *fakeEventService) CheckEventConflicts(_ context.Context, userID string, start, end time.Time, excludeEventID string) ([]domain.ConflictDescriptor, error) {
	f.lastConflictArg.userID = userID
	f.lastConflictArg.start = start
	f.lastConflictArg.end = end
	f.lastConflictArg.exclude = excludeEventID
	return f.conflictsResult, f.conflictsErr
}

func (f *fakeEventService) ListEvents(_ context.Context, _ domain.PaginationParams) ([]*domain.Event, int, error) {
	return f.listResult, f.listTotal, f.listErr
}

func (f *fakeEventService) ListEventsByHost(_ context.Context, _ string, _ domain.PaginationParams) ([]*domain.Event, int, error) {
	return f.listResult, f.listTotal, f.listErr
}

func (f *fakeEventService) ListEventsByAttendee(_ context.Context, _ string, _ domain.PaginationParams) ([]*domain.Event, int, error) {
	return f.listResult, f.listTotal, f.listErr
}

func (f *fakeEventService) ListUpcomingEvents(_ context.Context, _ domain.PaginationParams) ([]*domain.Event, int, error) {
	return f.listResult, f.listTotal, f.listErr
}

func (f *fakeEventService) ListPublicEvents(_ context.Context, _ domain.PaginationParams) ([]*domain.Event, int, error) {
	return f.listResult, f.listTotal, f.listErr
}

func (f *fakeEventService) SearchEvents(_ context.Context, _ string, _ domain.PaginationParams) ([]*domain.Event, int, error) {
	return f.listResult, f.listTotal, f.listErr
}

func (f *fakeEventService) EventsHappeningToday(_ context.Context) ([]*domain.Event, error) {
	return f.listResult, f.listErr
}

func (f *fakeEventService) GetEventStats(_ context.Context, eventID string) (*domain.EventStats, error) {
	return f.statsResult, f.statsErr
}

// authedRequest builds a request with the user ID already in the context.
func authedRequest(method, target string, body []byte) *http.Request {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	return req.WithContext(middleware.SetUserID(req.Context(), testUserID))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestEventController_CreateEvent(t *testing.T) {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(2 * time.Hour)
	validBody := fmt.Sprintf(`{"title":"Team offsite","start_time":%q,"end_time":%q,"visibility":"PRIVATE"}`,
		start.Format(time.RFC3339), end.Format(time.RFC3339))

	t.Run("creates the event for the authenticated host", func(t *testing.T) {
		svc := &fakeEventService{}
		ctrl := NewEventController(testLogger, svc)

		w := httptest.NewRecorder()
		ctrl.CreateEvent(w, authedRequest(http.MethodPost, "/events", []byte(validBody)))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, testUserID, svc.lastCreateHost)
		assert.Equal(t, "Team offsite", svc.lastCreated.Title)
		assert.Equal(t, domain.VisibilityPrivate, svc.lastCreated.Visibility)
	})

	t.Run("rejects a missing title", func(t *testing.T) {
		body := fmt.Sprintf(`{"start_time":%q,"end_time":%q}`, start.Format(time.RFC3339), end.Format(time.RFC3339))
		ctrl := NewEventController(testLogger, &fakeEventService{})

		w := httptest.NewRecorder()
		ctrl.CreateEvent(w, authedRequest(http.MethodPost, "/events", []byte(body)))

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an unknown visibility", func(t *testing.T) {
		body := fmt.Sprintf(`{"title":"x","start_time":%q,"end_time":%q,"visibility":"SECRET"}`,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
		ctrl := NewEventController(testLogger, &fakeEventService{})

		w := httptest.NewRecorder()
		ctrl.CreateEvent(w, authedRequest(http.MethodPost, "/events", []byte(body)))

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires authentication", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader([]byte(validBody)))
		ctrl.CreateEvent(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("maps a scheduling conflict to 409 with details", func(t *testing.T) {
		svc := &fakeEventService{createErr: &domain.ConflictError{Conflicts: []domain.ConflictDescriptor{
			{EventID: testEventID, Title: "Standup", Reason: "Time overlap with existing event"},
		}}}
		ctrl := NewEventController(testLogger, svc)

		w := httptest.NewRecorder()
		ctrl.CreateEvent(w, authedRequest(http.MethodPost, "/events", []byte(validBody)))

		require.Equal(t, http.StatusConflict, w.Code)
		resp := decodeEnvelope(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, helpers.ErrCodeConflict, resp.Error.Code)
		assert.NotNil(t, resp.Error.Details)
	})

	t.Run("maps a validation failure to 400", func(t *testing.T) {
		svc := &fakeEventService{createErr: domain.NewValidationError("Event start time must be in the future")}
		ctrl := NewEventController(testLogger, svc)

		w := httptest.NewRecorder()
		ctrl.CreateEvent(w, authedRequest(http.MethodPost, "/events", []byte(validBody)))

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Equal(t, "Event start time must be in the future", resp.Error.Message)
	})
}

func TestEventController_GetEvent(t *testing.T) {
	t.Run("returns the event detail for an anonymous viewer", func(t *testing.T) {
		event := &domain.Event{ID: testEventID, Title: "Meetup", Visibility: domain.VisibilityPublic}
		svc := &fakeEventService{detailResult: &domain.EventDetail{Event: event}}
		ctrl := NewEventController(testLogger, svc)

		req := httptest.NewRequest(http.MethodGet, "/events/"+testEventID, nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.GetEvent(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, svc.lastViewerID)
	})

	t.Run("passes the authenticated viewer through", func(t *testing.T) {
		event := &domain.Event{ID: testEventID, Visibility: domain.VisibilityPrivate}
		svc := &fakeEventService{detailResult: &domain.EventDetail{Event: event, Attending: true}}
		ctrl := NewEventController(testLogger, svc)

		req := authedRequest(http.MethodGet, "/events/"+testEventID, nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.GetEvent(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testUserID, svc.lastViewerID)
	})

	t.Run("rejects a malformed event ID", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})

		req := httptest.NewRequest(http.MethodGet, "/events/not-a-uuid", nil)
		req.SetPathValue("eventID", "not-a-uuid")
		w := httptest.NewRecorder()
		ctrl.GetEvent(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps a private event refusal to 403", func(t *testing.T) {
		svc := &fakeEventService{detailErr: &domain.UnauthorizedError{Message: "You are not authorized to view this private event"}}
		ctrl := NewEventController(testLogger, svc)

		req := httptest.NewRequest(http.MethodGet, "/events/"+testEventID, nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.GetEvent(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Equal(t, helpers.ErrCodeForbidden, resp.Error.Code)
	})

	t.Run("maps a missing event to 404", func(t *testing.T) {
		svc := &fakeEventService{detailErr: domain.ErrNotFound}
		ctrl := NewEventController(testLogger, svc)

		req := httptest.NewRequest(http.MethodGet, "/events/"+testEventID, nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.GetEvent(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestEventController_UpdateEvent(t *testing.T) {
	t.Run("forwards optional fields as a partial update", func(t *testing.T) {
		svc := &fakeEventService{updateResult: &domain.Event{ID: testEventID, Title: "Renamed"}}
		ctrl := NewEventController(testLogger, svc)

		req := authedRequest(http.MethodPatch, "/events/"+testEventID, []byte(`{"title":"Renamed","visibility":"PUBLIC"}`))
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.UpdateEvent(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.lastUpdate.Title)
		assert.Equal(t, "Renamed", *svc.lastUpdate.Title)
		require.NotNil(t, svc.lastUpdate.Visibility)
		assert.Equal(t, domain.VisibilityPublic, *svc.lastUpdate.Visibility)
		assert.Nil(t, svc.lastUpdate.StartTime)
	})

	t.Run("rejects an empty title", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})

		req := authedRequest(http.MethodPatch, "/events/"+testEventID, []byte(`{"title":"  "}`))
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.UpdateEvent(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps a non-host actor to 403", func(t *testing.T) {
		svc := &fakeEventService{updateErr: &domain.UnauthorizedError{Message: "Only the host or an admin can update this event"}}
		ctrl := NewEventController(testLogger, svc)

		req := authedRequest(http.MethodPatch, "/events/"+testEventID, []byte(`{"location":"Room 4"}`))
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.UpdateEvent(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestEventController_DeleteAndRestore(t *testing.T) {
	t.Run("soft delete reports status", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})

		req := authedRequest(http.MethodDelete, "/events/"+testEventID, nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.DeleteEvent(w, req)

		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("double delete maps to 400", func(t *testing.T) {
		svc := &fakeEventService{deleteErr: domain.NewValidationError("Event is already deleted")}
		ctrl := NewEventController(testLogger, svc)

		req := authedRequest(http.MethodDelete, "/events/"+testEventID, nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.DeleteEvent(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("restore returns the event", func(t *testing.T) {
		svc := &fakeEventService{restoreResult: &domain.Event{ID: testEventID, Title: "Back again"}}
		ctrl := NewEventController(testLogger, svc)

		req := authedRequest(http.MethodPost, "/events/"+testEventID+"/restore", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.RestoreEvent(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeEnvelope(t, w)
		require.Nil(t, resp.Error)
	})
}

func TestEventController_CheckConflicts(t *testing.T) {
	start := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	query := fmt.Sprintf("/events/conflicts?start=%s&end=%s", start.Format(time.RFC3339), end.Format(time.RFC3339))

	t.Run("returns conflicts with has_conflict true", func(t *testing.T) {
		svc := &fakeEventService{conflictsResult: []domain.ConflictDescriptor{
			{EventID: testEventID, Title: "Standup", Reason: "Time overlap with existing event"},
		}}
		ctrl := NewEventController(testLogger, svc)

		w := httptest.NewRecorder()
		ctrl.CheckConflicts(w, authedRequest(http.MethodGet, query, nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testUserID, svc.lastConflictArg.userID)
		assert.True(t, start.Equal(svc.lastConflictArg.start))

		var payload struct {
			Data CheckConflictsResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		assert.True(t, payload.Data.HasConflict)
		require.Len(t, payload.Data.Conflicts, 1)
	})

	t.Run("clear window reports has_conflict false with empty list", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})

		w := httptest.NewRecorder()
		ctrl.CheckConflicts(w, authedRequest(http.MethodGet, query, nil))

		require.Equal(t, http.StatusOK, w.Code)
		var payload struct {
			Data CheckConflictsResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		assert.False(t, payload.Data.HasConflict)
		assert.NotNil(t, payload.Data.Conflicts)
	})

	t.Run("rejects a malformed window", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})

		w := httptest.NewRecorder()
		ctrl.CheckConflicts(w, authedRequest(http.MethodGet, "/events/conflicts?start=tomorrow&end=later", nil))

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("forwards exclude_event_id", func(t *testing.T) {
		svc := &fakeEventService{}
		ctrl := NewEventController(testLogger, svc)

		w := httptest.NewRecorder()
		ctrl.CheckConflicts(w, authedRequest(http.MethodGet, query+"&exclude_event_id="+testEventID, nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, testEventID, svc.lastConflictArg.exclude)
	})
}

func TestEventController_ListEvents(t *testing.T) {
	events := []*domain.Event{
		{ID: testEventID, Title: "Go meetup"},
	}

	t.Run("returns a paginated page", func(t *testing.T) {
		svc := &fakeEventService{listResult: events, listTotal: 41}
		ctrl := NewEventController(testLogger, svc)

		w := httptest.NewRecorder()
		ctrl.ListEvents(w, httptest.NewRequest(http.MethodGet, "/events?page=2&page_size=10", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var payload struct {
			Data ListEventsResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
		assert.Len(t, payload.Data.Items, 1)
		assert.Equal(t, 2, payload.Data.Pagination.Page)
		assert.Equal(t, 41, payload.Data.Pagination.Total)
		assert.Equal(t, 5, payload.Data.Pagination.TotalPages)
	})

	t.Run("empty result is an empty array, not null", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{})

		w := httptest.NewRecorder()
		ctrl.ListEvents(w, httptest.NewRequest(http.MethodGet, "/events", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"items":[]`)
	})

	t.Run("repository failure maps to 500", func(t *testing.T) {
		svc := &fakeEventService{listErr: errors.New("connection refused")}
		ctrl := NewEventController(testLogger, svc)

		w := httptest.NewRecorder()
		ctrl.ListEvents(w, httptest.NewRequest(http.MethodGet, "/events", nil))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Equal(t, "internal server error", resp.Error.Message)
	})
}

func TestEventController_GetEventStats(t *testing.T) {
	t.Run("returns the stats payload", func(t *testing.T) {
		svc := &fakeEventService{statsResult: &domain.EventStats{
			EventID:        testEventID,
			GoingCount:     12,
			TotalAttendees: 20,
			AttendanceRate: 60,
		}}
		ctrl := NewEventController(testLogger, svc)

		req := authedRequest(http.MethodGet, "/events/"+testEventID+"/stats", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.GetEventStats(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"going_count":12`)
	})

	t.Run("missing event maps to 404", func(t *testing.T) {
		svc := &fakeEventService{statsErr: domain.ErrNotFound}
		ctrl := NewEventController(testLogger, svc)

		req := authedRequest(http.MethodGet, "/events/"+testEventID+"/stats", nil)
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.GetEventStats(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}
