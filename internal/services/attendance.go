package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventmanage/internal/cache"
	"eventmanage/internal/domain"
	"eventmanage/internal/rules"
)

type attendanceService struct {
	attendanceRepo domain.AttendanceRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	engine         *rules.Engine
	emailService   domain.EmailService
	statsCache     *cache.Cache
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAttendanceService creates an AttendanceService. emailService and
// statsCache may be nil.
func NewAttendanceService(
	attendanceRepo domain.AttendanceRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	engine *rules.Engine,
	emailService domain.EmailService,
	statsCache *cache.Cache,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		engine:         engine,
		emailService:   emailService,
		statsCache:     statsCache,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *attendanceService) CreateAttendance(ctx context.Context, userID, eventID string, status domain.Status) (*domain.Attendance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !status.Valid() {
		return nil, domain.NewValidationError("Invalid attendance status: %s", status)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	event, err := s.eventRepo.GetActiveByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if err := s.engine.CheckTransition(event, rules.ActionJoin); err != nil {
		return nil, err
	}

	// TODO: allow invited users to join private events once invitations exist.
	if event.Visibility == domain.VisibilityPrivate && !event.IsHostedBy(userID) {
		return nil, &domain.UnauthorizedError{Message: "You are not authorized to attend this private event"}
	}

	exists, err := s.attendanceRepo.Exists(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("check attendance: %w", err)
	}
	if exists {
		return nil, domain.NewValidationError("You are already attending this event")
	}

	attendance := domain.NewAttendance(eventID, userID, status, time.Now())
	if err := s.attendanceRepo.Create(ctx, attendance); err != nil {
		return nil, fmt.Errorf("create attendance: %w", err)
	}

	s.invalidateStats(ctx, eventID)

	if s.emailService != nil {
		data := &domain.RSVPConfirmationEmailData{
			Email:      user.Email,
			Name:       user.Name,
			EventTitle: event.Title,
			Status:     status,
			StartTime:  event.StartTime,
			Location:   event.Location,
		}
		if err := s.emailService.SendRSVPConfirmation(ctx, data); err != nil {
			// Best effort: the RSVP stands even when the confirmation mail fails.
			s.logger.Warn("rsvp confirmation email failed", "event_id", eventID, "err", err)
		}
	}
	return attendance, nil
}

func (s *attendanceService) UpdateAttendanceStatus(ctx context.Context, userID, eventID string, status domain.Status) (*domain.Attendance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !status.Valid() {
		return nil, domain.NewValidationError("Invalid attendance status: %s", status)
	}

	attendance, err := s.attendanceRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if err := s.engine.CheckTransition(event, rules.ActionChangeRSVP); err != nil {
		return nil, err
	}

	attendance.Status = status
	attendance.RespondedAt = time.Now()
	if err := s.attendanceRepo.Update(ctx, attendance); err != nil {
		return nil, fmt.Errorf("update attendance: %w", err)
	}

	s.invalidateStats(ctx, eventID)
	return attendance, nil
}

func (s *attendanceService) DeleteAttendance(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.attendanceRepo.GetByEventAndUser(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get attendance: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	if err := s.engine.CheckTransition(event, rules.ActionLeave); err != nil {
		return err
	}

	if err := s.attendanceRepo.Delete(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete attendance: %w", err)
	}

	s.invalidateStats(ctx, eventID)
	return nil
}

func (s *attendanceService) GetAttendance(ctx context.Context, userID, eventID string) (*domain.Attendance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	attendance, err := s.attendanceRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return attendance, nil
}

func (s *attendanceService) ListAttendeesByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Attendance, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetActiveByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	return s.attendanceRepo.ListByEvent(ctx, eventID, params)
}

func (s *attendanceService) ListAttendanceByUser(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Attendance, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, 0, domain.ErrUserNotFound
		}
		return nil, 0, fmt.Errorf("get user: %w", err)
	}
	return s.attendanceRepo.ListByUser(ctx, userID, params)
}

func (s *attendanceService) GetAttendanceStats(ctx context.Context, eventID string) (*domain.AttendanceStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	cacheKey := "attendance:stats:" + eventID
	stats := &domain.AttendanceStats{}
	if hit, err := s.statsCache.GetJSON(ctx, cacheKey, stats); err == nil && hit {
		return stats, nil
	}

	if _, err := s.eventRepo.GetActiveByID(ctx, eventID); err != nil {
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

	stats = &domain.AttendanceStats{
		GoingCount:    going,
		MaybeCount:    maybe,
		DeclinedCount: declined,
		TotalCount:    going + maybe + declined,
	}
	_ = s.statsCache.SetJSON(ctx, cacheKey, stats, statsCacheTTL)
	return stats, nil
}

func (s *attendanceService) GetUserAttendanceSummary(ctx context.Context, userID string) (*domain.UserAttendanceSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	records, err := s.attendanceRepo.ListByUserWithEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attendance with events: %w", err)
	}

	now := time.Now()
	summary := &domain.UserAttendanceSummary{UserID: userID, TotalEvents: len(records)}
	for _, rec := range records {
		switch rec.Attendance.Status {
		case domain.StatusGoing:
			summary.GoingCount++
		case domain.StatusMaybe:
			summary.MaybeCount++
		case domain.StatusDeclined:
			summary.DeclinedCount++
		}
		if rec.Event.IsUpcoming(now) {
			summary.UpcomingEvents++
		}
		if rec.Event.IsPast(now) {
			summary.PastEvents++
		}
		start := rec.Event.StartTime
		if summary.FirstEventDate == nil || start.Before(*summary.FirstEventDate) {
			t := start
			summary.FirstEventDate = &t
		}
		if summary.LastEventDate == nil || start.After(*summary.LastEventDate) {
			t := start
			summary.LastEventDate = &t
		}
	}
	if summary.TotalEvents > 0 {
		summary.AttendanceRate = float64(summary.GoingCount) / float64(summary.TotalEvents) * 100
	}
	return summary, nil
}

func (s *attendanceService) ListUpcomingAttendance(ctx context.Context, userID string) ([]*domain.AttendanceWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	records, err := s.attendanceRepo.ListByUserWithEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attendance with events: %w", err)
	}
	now := time.Now()
	out := make([]*domain.AttendanceWithEvent, 0, len(records))
	for _, rec := range records {
		if rec.Event.IsUpcoming(now) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *attendanceService) ListPastAttendance(ctx context.Context, userID string) ([]*domain.AttendanceWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	records, err := s.attendanceRepo.ListByUserWithEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attendance with events: %w", err)
	}
	now := time.Now()
	out := make([]*domain.AttendanceWithEvent, 0, len(records))
	for _, rec := range records {
		if rec.Event.IsPast(now) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *attendanceService) invalidateStats(ctx context.Context, eventID string) {
	if err := s.statsCache.Delete(ctx, "event:stats:"+eventID, "attendance:stats:"+eventID); err != nil {
		s.logger.Warn("stats cache invalidation failed", "event_id", eventID, "err", err)
	}
}
