package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventmanage/internal/delivery/http/helpers"
	"eventmanage/internal/delivery/http/middleware"
	"eventmanage/internal/domain"
)

// eventIDFromPath extracts and validates the eventID path parameter.
// Writes a 400 and returns false on a missing or malformed ID.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" || uuid.Validate(eventID) != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "eventID must be a valid UUID")
		return "", false
	}
	return eventID, true
}

type EventController struct {
	Logger *slog.Logger
	Events domain.EventService
}

func NewEventController(logger *slog.Logger, events domain.EventService) *EventController {
	return &EventController{
		Logger: logger,
		Events: events,
	}
}

func (c *EventController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if helpers.WriteDomainError(w, err) == http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
	Visibility  string    `json:"visibility"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.StartTime.IsZero() {
		errs = append(errs, "start_time is required")
	}
	if c.EndTime.IsZero() {
		errs = append(errs, "end_time is required")
	}
	if c.Visibility != "" && !domain.Visibility(c.Visibility).Valid() {
		errs = append(errs, "visibility must be PUBLIC or PRIVATE")
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event hosted by the authenticated user. The event window must be in the future and must not overlap any event the host already hosts or attends. Visibility defaults to PUBLIC.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid dates)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (error.details lists conflicting events)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	now := time.Now()
	event := domain.NewEvent(strings.TrimSpace(req.Title), req.Description, hostID, req.StartTime, req.EndTime, req.Location, domain.Visibility(req.Visibility), now, now)
	created, err := c.Events.CreateEvent(r.Context(), hostID, event)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  *domain.EventDetail `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event annotated with the viewer's RSVP, if any. Public events are visible to anyone; private events only to the host, an admin, or an attendee. Authentication is optional.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event detail"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (private event)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	viewerID, _ := middleware.UserIDFromContext(r.Context())
	detail, err := c.Events.GetEventByID(r.Context(), eventID, viewerID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}.
// All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Location    *string    `json:"location"`
	Visibility  *string    `json:"visibility"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.Visibility != nil && !domain.Visibility(*u.Visibility).Valid() {
		errs = append(errs, "visibility must be PUBLIC or PRIVATE")
	}
	return errs
}

func (u UpdateEventRequest) toDomain() *domain.EventUpdate {
	update := &domain.EventUpdate{
		Title:       u.Title,
		Description: u.Description,
		StartTime:   u.StartTime,
		EndTime:     u.EndTime,
		Location:    u.Location,
	}
	if u.Visibility != nil {
		v := domain.Visibility(*u.Visibility)
		update.Visibility = &v
	}
	return update
}

// UpdateEventSuccessResponse is the success response envelope for PATCH /events/{eventID} (200).
type UpdateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Updates event fields. Only the host or an admin can update. Moving the event window re-checks scheduling conflicts, excluding the event itself.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateEventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host or admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (error.details lists conflicting events)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Events.UpdateEvent(r.Context(), eventID, actorID, req.toDomain())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Soft-delete an event
// @Description Marks the event deleted. Only the host or an admin can delete. Deleted events disappear from listings but remain recoverable via restore.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.StatusSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (already deleted)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host or admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Events.DeleteEvent(r.Context(), eventID, actorID); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// RestoreEvent godoc
// @Summary Restore a soft-deleted event
// @Description Clears the deleted flag. Only the host or an admin can restore.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.UpdateEventSuccessResponse "data contains the restored event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not deleted)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host or admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/restore [post]
func (c *EventController) RestoreEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Events.RestoreEvent(r.Context(), eventID, actorID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CheckConflictsResponse is the data payload for GET /events/conflicts (200).
type CheckConflictsResponse struct {
	Conflicts   []domain.ConflictDescriptor `json:"conflicts"`
	HasConflict bool                        `json:"has_conflict"`
}

// CheckConflictsSuccessResponse is the success response envelope for GET /events/conflicts (200).
type CheckConflictsSuccessResponse struct {
	Data  CheckConflictsResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// CheckConflicts godoc
// @Summary Check a time window for scheduling conflicts
// @Description Returns the authenticated user's hosted or attended events that overlap the given window. Overlap is inclusive on both edges, so back-to-back events conflict. Use exclude_event_id when rescheduling an existing event.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param start query string true "Window start (RFC 3339)"
// @Param end query string true "Window end (RFC 3339)"
// @Param exclude_event_id query string false "Event ID to exclude from the check"
// @Success 200 {object} controllers.CheckConflictsSuccessResponse "data contains conflicts and has_conflict"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (missing or malformed window)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/conflicts [get]
func (c *EventController) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start must be an RFC 3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "end must be an RFC 3339 timestamp")
		return
	}
	exclude := q.Get("exclude_event_id")
	if exclude != "" && uuid.Validate(exclude) != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "exclude_event_id must be a valid UUID")
		return
	}
	conflicts, err := c.Events.CheckEventConflicts(r.Context(), userID, start, end, exclude)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if conflicts == nil {
		conflicts = []domain.ConflictDescriptor{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CheckConflictsResponse{
		Conflicts:   conflicts,
		HasConflict: len(conflicts) > 0,
	})
}

// ListEventsResponse is the data payload for paginated event listings.
type ListEventsResponse struct {
	Items      []*domain.Event        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for paginated event listings (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

func (c *EventController) writeEventPage(w http.ResponseWriter, events []*domain.Event, params domain.PaginationParams, total int) {
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Items:      events,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListEvents godoc
// @Summary List events
// @Description Returns a paginated list of non-deleted events, soonest first. Optional search filters by title, description, or location substring (case-insensitive).
// @Tags events
// @Produce json
// @Param search query string false "Filter by title, description, or location substring"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	var (
		events []*domain.Event
		total  int
		err    error
	)
	if search != "" {
		events, total, err = c.Events.SearchEvents(r.Context(), search, params)
	} else {
		events, total, err = c.Events.ListEvents(r.Context(), params)
	}
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	c.writeEventPage(w, events, params, total)
}

// ListUpcomingEvents godoc
// @Summary List upcoming events
// @Description Returns a paginated list of non-deleted events that have not started yet, soonest first.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/upcoming [get]
func (c *EventController) ListUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Events.ListUpcomingEvents(r.Context(), params)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	c.writeEventPage(w, events, params, total)
}

// ListPublicEvents godoc
// @Summary List public events
// @Description Returns a paginated list of non-deleted PUBLIC events.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/public [get]
func (c *EventController) ListPublicEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Events.ListPublicEvents(r.Context(), params)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	c.writeEventPage(w, events, params, total)
}

// ListMyEvents godoc
// @Summary List events hosted by the current user
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/me [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Events.ListEventsByHost(r.Context(), userID, params)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	c.writeEventPage(w, events, params, total)
}

// ListAttendingEvents godoc
// @Summary List events the current user is attending
// @Description Returns events the authenticated user has an RSVP for, regardless of status.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/attending [get]
func (c *EventController) ListAttendingEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Events.ListEventsByAttendee(r.Context(), userID, params)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	c.writeEventPage(w, events, params, total)
}

// GetEventStatsSuccessResponse is the success response envelope for GET /events/{eventID}/stats (200).
type GetEventStatsSuccessResponse struct {
	Data  *domain.EventStats `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// GetEventStats godoc
// @Summary Get attendance statistics for an event
// @Description Returns RSVP counts and the going-rate for the event.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventStatsSuccessResponse "data contains the stats"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/stats [get]
func (c *EventController) GetEventStats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	stats, err := c.Events.GetEventStats(r.Context(), eventID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}
