package domain

import (
	"context"
	"time"
)

// Visibility is a closed set of event visibility levels.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Valid reports whether v is one of the known visibility levels.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Event represents a scheduled event owned by a host user.
// The deleted flag is a soft delete; deleted events are recoverable via restore.
// swagger:model Event
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	HostID      string     `json:"host_id"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Location    string     `json:"location"`
	Visibility  Visibility `json:"visibility"`
	Deleted     bool       `json:"deleted"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewEvent returns a new non-deleted Event. ID is set by the repository on create.
func NewEvent(title, description, hostID string, start, end time.Time, location string, visibility Visibility, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		HostID:      hostID,
		StartTime:   start,
		EndTime:     end,
		Location:    location,
		Visibility:  visibility,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// IsUpcoming reports whether the event has not started at the given instant.
func (e *Event) IsUpcoming(now time.Time) bool {
	return now.Before(e.StartTime)
}

// IsOngoing reports whether the event is in progress at the given instant.
func (e *Event) IsOngoing(now time.Time) bool {
	return !now.Before(e.StartTime) && now.Before(e.EndTime)
}

// IsPast reports whether the event has ended at the given instant.
func (e *Event) IsPast(now time.Time) bool {
	return !now.Before(e.EndTime)
}

// IsHostedBy reports whether userID is the event host.
func (e *Event) IsHostedBy(userID string) bool {
	return userID != "" && e.HostID == userID
}

// SoftDelete marks the event deleted.
func (e *Event) SoftDelete() {
	e.Deleted = true
}

// Restore clears the deleted flag.
func (e *Event) Restore() {
	e.Deleted = false
}

// EventStats aggregates attendance counts for one event.
// swagger:model EventStats
type EventStats struct {
	EventID        string    `json:"event_id"`
	Title          string    `json:"title"`
	StartTime      time.Time `json:"start_time"`
	GoingCount     int       `json:"going_count"`
	MaybeCount     int       `json:"maybe_count"`
	DeclinedCount  int       `json:"declined_count"`
	TotalAttendees int       `json:"total_attendees"`
	AttendanceRate float64   `json:"attendance_rate"`
}

// EventRepository defines the interface for event storage.
// All list queries exclude soft-deleted events unless noted otherwise.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	// GetByID returns the event regardless of its deleted flag.
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetActiveByID returns the event only if it is not soft-deleted.
	GetActiveByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	// SetDeleted flips the soft-delete flag.
	SetDeleted(ctx context.Context, id string, deleted bool) error
	// FindOverlapping returns non-deleted events the user hosts or attends whose
	// window satisfies start_time <= end AND end_time >= start.
	FindOverlapping(ctx context.Context, userID string, start, end time.Time) ([]*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListByHost(ctx context.Context, hostID string, params PaginationParams) ([]*Event, int, error)
	ListByAttendee(ctx context.Context, userID string, params PaginationParams) ([]*Event, int, error)
	ListByVisibility(ctx context.Context, visibility Visibility, params PaginationParams) ([]*Event, int, error)
	ListUpcoming(ctx context.Context, after time.Time, params PaginationParams) ([]*Event, int, error)
	Search(ctx context.Context, term string, params PaginationParams) ([]*Event, int, error)
	// FindHappeningBetween returns non-deleted events that start within, or are
	// already ongoing at the beginning of, the given window.
	FindHappeningBetween(ctx context.Context, from, to time.Time) ([]*Event, error)
}

// EventDetail is an Event annotated with the viewer's attendance, if any.
type EventDetail struct {
	Event            *Event  `json:"event"`
	Attending        bool    `json:"attending"`
	AttendanceStatus *Status `json:"attendance_status,omitempty"`
}

// EventService defines the business logic for event management.
type EventService interface {
	CreateEvent(ctx context.Context, hostID string, event *Event) (*Event, error)
	GetEventByID(ctx context.Context, eventID, viewerID string) (*EventDetail, error)
	UpdateEvent(ctx context.Context, eventID, actorID string, update *EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, actorID string) error
	RestoreEvent(ctx context.Context, eventID, actorID string) (*Event, error)
	CheckEventConflicts(ctx context.Context, userID string, start, end time.Time, excludeEventID string) ([]ConflictDescriptor, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListEventsByHost(ctx context.Context, hostID string, params PaginationParams) ([]*Event, int, error)
	ListEventsByAttendee(ctx context.Context, userID string, params PaginationParams) ([]*Event, int, error)
	ListUpcomingEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListPublicEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	SearchEvents(ctx context.Context, term string, params PaginationParams) ([]*Event, int, error)
	EventsHappeningToday(ctx context.Context) ([]*Event, error)
	GetEventStats(ctx context.Context, eventID string) (*EventStats, error)
}

// EventUpdate carries the mutable event fields for an update. Nil fields are unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	Location    *string
	Visibility  *Visibility
}
