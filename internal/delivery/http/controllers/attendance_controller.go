package controllers

import (
	"log/slog"
	"net/http"

	"eventmanage/internal/delivery/http/helpers"
	"eventmanage/internal/delivery/http/middleware"
	"eventmanage/internal/domain"
)

type AttendanceController struct {
	Logger     *slog.Logger
	Attendance domain.AttendanceService
}

func NewAttendanceController(logger *slog.Logger, attendance domain.AttendanceService) *AttendanceController {
	return &AttendanceController{
		Logger:     logger,
		Attendance: attendance,
	}
}

func (c *AttendanceController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if helpers.WriteDomainError(w, err) == http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
}

// AttendanceRequest is the request body for POST and PATCH /events/{eventID}/attendance.
type AttendanceRequest struct {
	Status string `json:"status"`
}

// Validate implements Validator.
func (a AttendanceRequest) Validate() []string {
	if !domain.Status(a.Status).Valid() {
		return []string{"status must be GOING, MAYBE, or DECLINED"}
	}
	return nil
}

// AttendanceSuccessResponse is the success response envelope for attendance writes.
type AttendanceSuccessResponse struct {
	Data  *domain.Attendance `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// CreateAttendance godoc
// @Summary RSVP to an event
// @Description Creates the authenticated user's RSVP for the event. Fails on past or deleted events, on private events the user does not host, and when an RSVP already exists.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body AttendanceRequest true "RSVP status"
// @Success 201 {object} controllers.AttendanceSuccessResponse "data contains the RSVP"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid status, past event, duplicate RSVP)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (private event)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance [post]
func (c *AttendanceController) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req AttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	attendance, err := c.Attendance.CreateAttendance(r.Context(), userID, eventID, domain.Status(req.Status))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, attendance)
}

// UpdateAttendance godoc
// @Summary Change an RSVP status
// @Description Updates the authenticated user's existing RSVP for the event. Fails on past events.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body AttendanceRequest true "New RSVP status"
// @Success 200 {object} controllers.AttendanceSuccessResponse "data contains the updated RSVP"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid status, past event)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no RSVP)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance [patch]
func (c *AttendanceController) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req AttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	attendance, err := c.Attendance.UpdateAttendanceStatus(r.Context(), userID, eventID, domain.Status(req.Status))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendance)
}

// DeleteAttendance godoc
// @Summary Withdraw an RSVP
// @Description Removes the authenticated user's RSVP for the event. Fails on past events.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.StatusSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (past event)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no RSVP)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance [delete]
func (c *AttendanceController) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Attendance.DeleteAttendance(r.Context(), userID, eventID); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "withdrawn"})
}

// GetAttendance godoc
// @Summary Get the current user's RSVP for an event
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.AttendanceSuccessResponse "data contains the RSVP"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no RSVP)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance [get]
func (c *AttendanceController) GetAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	attendance, err := c.Attendance.GetAttendance(r.Context(), userID, eventID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendance)
}

// ListAttendeesResponse is the data payload for GET /events/{eventID}/attendees (200).
type ListAttendeesResponse struct {
	Items      []*domain.Attendance   `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListAttendeesSuccessResponse is the success response envelope for GET /events/{eventID}/attendees (200).
type ListAttendeesSuccessResponse struct {
	Data  ListAttendeesResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ListAttendees godoc
// @Summary List RSVPs for an event
// @Description Returns a paginated list of RSVPs for the event, newest response first.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListAttendeesSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [get]
func (c *AttendanceController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	attendances, total, err := c.Attendance.ListAttendeesByEvent(r.Context(), eventID, params)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if attendances == nil {
		attendances = []*domain.Attendance{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListAttendeesResponse{
		Items:      attendances,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetAttendanceStatsSuccessResponse is the success response envelope for GET /events/{eventID}/attendance/stats (200).
type GetAttendanceStatsSuccessResponse struct {
	Data  *domain.AttendanceStats `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// GetAttendanceStats godoc
// @Summary Get RSVP counts for an event
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetAttendanceStatsSuccessResponse "data contains the counts"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance/stats [get]
func (c *AttendanceController) GetAttendanceStats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	stats, err := c.Attendance.GetAttendanceStats(r.Context(), eventID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// ListMyAttendanceResponse is the data payload for GET /users/me/attendance (200).
type ListMyAttendanceResponse struct {
	Items      []*domain.Attendance   `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListMyAttendanceSuccessResponse is the success response envelope for GET /users/me/attendance (200).
type ListMyAttendanceSuccessResponse struct {
	Data  ListMyAttendanceResponse `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// ListMyAttendance godoc
// @Summary List the current user's RSVPs
// @Description Returns a paginated list of the authenticated user's RSVPs, newest response first.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListMyAttendanceSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/attendance [get]
func (c *AttendanceController) ListMyAttendance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	attendances, total, err := c.Attendance.ListAttendanceByUser(r.Context(), userID, params)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if attendances == nil {
		attendances = []*domain.Attendance{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListMyAttendanceResponse{
		Items:      attendances,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetMySummarySuccessResponse is the success response envelope for GET /users/me/attendance/summary (200).
type GetMySummarySuccessResponse struct {
	Data  *domain.UserAttendanceSummary `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// GetMySummary godoc
// @Summary Get the current user's attendance summary
// @Description Returns aggregate RSVP history: totals by status, upcoming and past counts, first and last event dates, and the going-rate.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.GetMySummarySuccessResponse "data contains the summary"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/attendance/summary [get]
func (c *AttendanceController) GetMySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	summary, err := c.Attendance.GetUserAttendanceSummary(r.Context(), userID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

// ListWithEventsSuccessResponse is the success response envelope for the upcoming and past attendance listings (200).
type ListWithEventsSuccessResponse struct {
	Data  []*domain.AttendanceWithEvent `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// ListMyUpcoming godoc
// @Summary List the current user's upcoming RSVPs
// @Description Returns the authenticated user's RSVPs for events that have not started yet, with the event attached.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListWithEventsSuccessResponse "data is an array of RSVPs with events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/attendance/upcoming [get]
func (c *AttendanceController) ListMyUpcoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	items, err := c.Attendance.ListUpcomingAttendance(r.Context(), userID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []*domain.AttendanceWithEvent{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// ListMyPast godoc
// @Summary List the current user's past RSVPs
// @Description Returns the authenticated user's RSVPs for events that have ended, with the event attached.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListWithEventsSuccessResponse "data is an array of RSVPs with events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/attendance/past [get]
func (c *AttendanceController) ListMyPast(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	items, err := c.Attendance.ListPastAttendance(r.Context(), userID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []*domain.AttendanceWithEvent{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}
