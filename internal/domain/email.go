package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RSVPConfirmationEmailData holds data for the RSVP confirmation email.
type RSVPConfirmationEmailData struct {
	Email      string
	Name       string
	EventTitle string
	Status     Status
	StartTime  time.Time
	Location   string
}

// EventReminderEmailData holds data for the same-day event reminder email.
type EventReminderEmailData struct {
	Email      string
	Name       string
	EventTitle string
	StartTime  time.Time
	Location   string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRSVPConfirmation(ctx context.Context, data *RSVPConfirmationEmailData) error
	SendEventReminder(ctx context.Context, data *EventReminderEmailData) error
}
