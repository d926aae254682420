package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventmanage/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that renders embedded templates and
// sends them through the given Mailer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

func (s *emailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPConfirmationEmailData) error {
	if data == nil {
		return fmt.Errorf("rsvp confirmation data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("rsvp_confirmation", data)
	if err != nil {
		return fmt.Errorf("render rsvp_confirmation template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send rsvp confirmation email: %w", err)
	}
	s.logger.Info("rsvp confirmation sent", "to", data.Email, "event", data.EventTitle)
	return nil
}

func (s *emailService) SendEventReminder(ctx context.Context, data *domain.EventReminderEmailData) error {
	if data == nil {
		return fmt.Errorf("event reminder data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("event_reminder", data)
	if err != nil {
		return fmt.Errorf("render event_reminder template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send event reminder email: %w", err)
	}
	s.logger.Info("event reminder sent", "to", data.Email, "event", data.EventTitle)
	return nil
}
