// Package reminder runs the scheduled job that emails attendees of events
// happening on the current day.
package reminder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"eventmanage/internal/domain"
)

// EventSource lists the events happening today.
type EventSource interface {
	EventsHappeningToday(ctx context.Context) ([]*domain.Event, error)
}

// Job sends same-day event reminders to attendees marked GOING.
type Job struct {
	events     EventSource
	attendance domain.AttendanceRepository
	users      domain.UserRepository
	emails     domain.EmailService
	logger     *slog.Logger
	cron       *cron.Cron
	schedule   string
}

// NewJob creates a reminder job. schedule is a standard cron expression,
// e.g. "0 8 * * *" for daily at 08:00.
func NewJob(
	events EventSource,
	attendance domain.AttendanceRepository,
	users domain.UserRepository,
	emails domain.EmailService,
	schedule string,
	logger *slog.Logger,
) *Job {
	return &Job{
		events:     events,
		attendance: attendance,
		users:      users,
		emails:     emails,
		logger:     logger,
		schedule:   schedule,
	}
}

// Start schedules the job and begins the cron loop.
func (j *Job) Start() error {
	j.cron = cron.New()
	_, err := j.cron.AddFunc(j.schedule, func() {
		if err := j.Run(context.Background()); err != nil {
			j.logger.Error("reminder sweep failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}
	j.cron.Start()
	j.logger.Info("reminder job scheduled", "cron", j.schedule)
	return nil
}

// Stop halts the cron loop. Safe to call if Start was never called.
func (j *Job) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}

// Run performs one reminder sweep: every GOING attendee of every event
// happening today gets a reminder email. Individual send failures are
// logged and do not stop the sweep.
func (j *Job) Run(ctx context.Context) error {
	events, err := j.events.EventsHappeningToday(ctx)
	if err != nil {
		return fmt.Errorf("list today's events: %w", err)
	}

	sent := 0
	for _, event := range events {
		records, _, err := j.attendance.ListByEvent(ctx, event.ID, domain.PaginationParams{Page: 1, PageSize: 1000})
		if err != nil {
			j.logger.Error("list attendees failed", "event_id", event.ID, "err", err)
			continue
		}
		for _, att := range records {
			if att.Status != domain.StatusGoing {
				continue
			}
			user, err := j.users.GetByID(ctx, att.UserID)
			if err != nil {
				j.logger.Error("load attendee failed", "user_id", att.UserID, "err", err)
				continue
			}
			data := &domain.EventReminderEmailData{
				Email:      user.Email,
				Name:       user.Name,
				EventTitle: event.Title,
				StartTime:  event.StartTime,
				Location:   event.Location,
			}
			if err := j.emails.SendEventReminder(ctx, data); err != nil {
				j.logger.Error("send reminder failed", "user_id", att.UserID, "event_id", event.ID, "err", err)
				continue
			}
			sent++
		}
	}
	j.logger.Info("reminder sweep complete", "events", len(events), "sent", sent)
	return nil
}
