package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventmanage/internal/domain"
	"eventmanage/internal/rules"
)

// ruleStore adapts the repositories to the rule engine's read contract.
type ruleStore struct {
	eventRepo      domain.EventRepository
	attendanceRepo domain.AttendanceRepository
	userRepo       domain.UserRepository
}

// NewRuleStore returns a rules.Store backed by the given repositories.
func NewRuleStore(eventRepo domain.EventRepository, attendanceRepo domain.AttendanceRepository, userRepo domain.UserRepository) rules.Store {
	return &ruleStore{
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
	}
}

func (s *ruleStore) FindOverlapping(ctx context.Context, userID string, start, end time.Time) ([]*domain.Event, error) {
	return s.eventRepo.FindOverlapping(ctx, userID, start, end)
}

func (s *ruleStore) AttendanceExists(ctx context.Context, eventID, userID string) (bool, error) {
	return s.attendanceRepo.Exists(ctx, eventID, userID)
}

func (s *ruleStore) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get user: %w", err)
	}
	return user.Active && user.IsAdmin(), nil
}
