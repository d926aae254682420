package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventmanage/internal/cache"
	"eventmanage/internal/domain"
	"eventmanage/internal/rules"
)

const statsCacheTTL = 30 * time.Second

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	attendanceRepo domain.AttendanceRepository
	engine         *rules.Engine
	statsCache     *cache.Cache
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories and rule engine.
// statsCache may be nil to disable stats caching.
func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	attendanceRepo domain.AttendanceRepository,
	engine *rules.Engine,
	statsCache *cache.Cache,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		attendanceRepo: attendanceRepo,
		engine:         engine,
		statsCache:     statsCache,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, hostID string, event *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.engine.ValidateEventDates(event.StartTime, event.EndTime); err != nil {
		return nil, err
	}

	host, err := s.userRepo.GetByID(ctx, hostID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get host: %w", err)
	}
	if !host.Active {
		return nil, domain.NewValidationError("Host account is deactivated")
	}

	if err := s.engine.RequireNoConflicts(ctx, hostID, event.StartTime, event.EndTime, ""); err != nil {
		return nil, err
	}

	event.HostID = hostID
	if event.Visibility == "" {
		event.Visibility = domain.VisibilityPublic
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID, viewerID string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetActiveByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if err := s.engine.CheckViewable(ctx, event, viewerID); err != nil {
		return nil, err
	}

	detail := &domain.EventDetail{Event: event}
	if viewerID != "" {
		att, err := s.attendanceRepo.GetByEventAndUser(ctx, eventID, viewerID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get attendance: %w", err)
		}
		if att != nil {
			detail.Attending = true
			status := att.Status
			detail.AttendanceStatus = &status
		}
	}
	return detail, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, actorID string, update *domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetActiveByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if err := s.engine.CheckTransition(event, rules.ActionUpdate); err != nil {
		return nil, err
	}
	if err := s.engine.CheckMutable(ctx, event, actorID, rules.ActionUpdate); err != nil {
		return nil, err
	}

	newStart := event.StartTime
	if update.StartTime != nil {
		newStart = *update.StartTime
	}
	newEnd := event.EndTime
	if update.EndTime != nil {
		newEnd = *update.EndTime
	}
	if update.StartTime != nil || update.EndTime != nil {
		if err := s.engine.ValidateEventDates(newStart, newEnd); err != nil {
			return nil, err
		}
		// Conflicts are checked against the host's calendar, excluding the
		// event being moved so an unchanged window is not flagged against itself.
		if err := s.engine.RequireNoConflicts(ctx, event.HostID, newStart, newEnd, eventID); err != nil {
			return nil, err
		}
	}

	if update.Title != nil {
		event.Title = *update.Title
	}
	if update.Description != nil {
		event.Description = *update.Description
	}
	if update.Location != nil {
		event.Location = *update.Location
	}
	if update.Visibility != nil {
		if !update.Visibility.Valid() {
			return nil, domain.NewValidationError("Invalid visibility: %s", *update.Visibility)
		}
		event.Visibility = *update.Visibility
	}
	event.StartTime = newStart
	event.EndTime = newEnd
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	if err := s.engine.CheckTransition(event, rules.ActionDelete); err != nil {
		return err
	}
	if err := s.engine.CheckMutable(ctx, event, actorID, rules.ActionDelete); err != nil {
		return err
	}

	if err := s.eventRepo.SetDeleted(ctx, eventID, true); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("soft delete event: %w", err)
	}
	return nil
}

func (s *eventService) RestoreEvent(ctx context.Context, eventID, actorID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if err := s.engine.CheckTransition(event, rules.ActionRestore); err != nil {
		return nil, err
	}
	if err := s.engine.CheckMutable(ctx, event, actorID, rules.ActionRestore); err != nil {
		return nil, err
	}

	if err := s.eventRepo.SetDeleted(ctx, eventID, false); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("restore event: %w", err)
	}
	event.Restore()
	return event, nil
}

func (s *eventService) CheckEventConflicts(ctx context.Context, userID string, start, end time.Time, excludeEventID string) ([]domain.ConflictDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if end.Before(start) {
		return nil, domain.NewValidationError("Event end time must be after start time")
	}
	return s.engine.FindConflicts(ctx, userID, start, end, excludeEventID)
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.List(ctx, params)
}

func (s *eventService) ListEventsByHost(ctx context.Context, hostID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByHost(ctx, hostID, params)
}

func (s *eventService) ListEventsByAttendee(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByAttendee(ctx, userID, params)
}

func (s *eventService) ListUpcomingEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListUpcoming(ctx, time.Now(), params)
}

func (s *eventService) ListPublicEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByVisibility(ctx, domain.VisibilityPublic, params)
}

func (s *eventService) SearchEvents(ctx context.Context, term string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.Search(ctx, term, params)
}

func (s *eventService) EventsHappeningToday(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24*time.Hour - time.Second)
	return s.eventRepo.FindHappeningBetween(ctx, startOfDay, endOfDay)
}

func (s *eventService) GetEventStats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	cacheKey := "event:stats:" + eventID
	stats := &domain.EventStats{}
	if hit, err := s.statsCache.GetJSON(ctx, cacheKey, stats); err == nil && hit {
		return stats, nil
	}

	event, err := s.eventRepo.GetActiveByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	going, err := s.attendanceRepo.CountByEventAndStatus(ctx, eventID, domain.StatusGoing)
	if err != nil {
		return nil, fmt.Errorf("count going: %w", err)
	}
	maybe, err := s.attendanceRepo.CountByEventAndStatus(ctx, eventID, domain.StatusMaybe)
	if err != nil {
		return nil, fmt.Errorf("count maybe: %w", err)
	}
	declined, err := s.attendanceRepo.CountByEventAndStatus(ctx, eventID, domain.StatusDeclined)
	if err != nil {
		return nil, fmt.Errorf("count declined: %w", err)
	}

	total := going + maybe + declined
	rate := 0.0
	if total > 0 {
		rate = float64(going) / float64(total) * 100
	}
	stats = &domain.EventStats{
		EventID:        event.ID,
		Title:          event.Title,
		StartTime:      event.StartTime,
		GoingCount:     going,
		MaybeCount:     maybe,
		DeclinedCount:  declined,
		TotalAttendees: total,
		AttendanceRate: rate,
	}
	_ = s.statsCache.SetJSON(ctx, cacheKey, stats, statsCacheTTL)
	return stats, nil
}
