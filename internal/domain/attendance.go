package domain

import (
	"context"
	"time"
)

// Status is a closed set of RSVP statuses.
type Status string

const (
	StatusGoing    Status = "GOING"
	StatusMaybe    Status = "MAYBE"
	StatusDeclined Status = "DECLINED"
)

// Valid reports whether s is one of the known RSVP statuses.
func (s Status) Valid() bool {
	return s == StatusGoing || s == StatusMaybe || s == StatusDeclined
}

// Attendance represents one user's RSVP to one event. At most one record
// exists per (event, user) pair.
// swagger:model Attendance
type Attendance struct {
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	Status      Status    `json:"status"`
	RespondedAt time.Time `json:"responded_at"`
}

// NewAttendance returns a new Attendance with the given status.
func NewAttendance(eventID, userID string, status Status, respondedAt time.Time) *Attendance {
	return &Attendance{
		EventID:     eventID,
		UserID:      userID,
		Status:      status,
		RespondedAt: respondedAt,
	}
}

// AttendanceStats aggregates RSVP counts for one event.
// swagger:model AttendanceStats
type AttendanceStats struct {
	GoingCount    int `json:"going_count"`
	MaybeCount    int `json:"maybe_count"`
	DeclinedCount int `json:"declined_count"`
	TotalCount    int `json:"total_count"`
}

// AttendanceWithEvent bundles an attendance record with its event.
type AttendanceWithEvent struct {
	Attendance *Attendance `json:"attendance"`
	Event      *Event      `json:"event"`
}

// UserAttendanceSummary aggregates a user's RSVP history.
// swagger:model UserAttendanceSummary
type UserAttendanceSummary struct {
	UserID         string     `json:"user_id"`
	TotalEvents    int        `json:"total_events"`
	UpcomingEvents int        `json:"upcoming_events"`
	PastEvents     int        `json:"past_events"`
	GoingCount     int        `json:"going_count"`
	MaybeCount     int        `json:"maybe_count"`
	DeclinedCount  int        `json:"declined_count"`
	AttendanceRate float64    `json:"attendance_rate"`
	FirstEventDate *time.Time `json:"first_event_date,omitempty"`
	LastEventDate  *time.Time `json:"last_event_date,omitempty"`
}

// AttendanceRepository defines the interface for RSVP storage.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *Attendance) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Attendance, error)
	Update(ctx context.Context, attendance *Attendance) error
	Delete(ctx context.Context, eventID, userID string) error
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	ListByEvent(ctx context.Context, eventID string, params PaginationParams) ([]*Attendance, int, error)
	ListByUser(ctx context.Context, userID string, params PaginationParams) ([]*Attendance, int, error)
	CountByEventAndStatus(ctx context.Context, eventID string, status Status) (int, error)
	// ListByUserWithEvents returns all of the user's attendance records joined
	// with their (non-deleted) events, newest event first.
	ListByUserWithEvents(ctx context.Context, userID string) ([]*AttendanceWithEvent, error)
}

// AttendanceService defines the business logic for RSVPs.
type AttendanceService interface {
	CreateAttendance(ctx context.Context, userID, eventID string, status Status) (*Attendance, error)
	UpdateAttendanceStatus(ctx context.Context, userID, eventID string, status Status) (*Attendance, error)
	DeleteAttendance(ctx context.Context, userID, eventID string) error
	GetAttendance(ctx context.Context, userID, eventID string) (*Attendance, error)
	ListAttendeesByEvent(ctx context.Context, eventID string, params PaginationParams) ([]*Attendance, int, error)
	ListAttendanceByUser(ctx context.Context, userID string, params PaginationParams) ([]*Attendance, int, error)
	GetAttendanceStats(ctx context.Context, eventID string) (*AttendanceStats, error)
	GetUserAttendanceSummary(ctx context.Context, userID string) (*UserAttendanceSummary, error)
	ListUpcomingAttendance(ctx context.Context, userID string) ([]*AttendanceWithEvent, error)
	ListPastAttendance(ctx context.Context, userID string) ([]*AttendanceWithEvent, error)
}
