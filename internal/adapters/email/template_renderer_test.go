package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmanage/internal/domain"
)

func TestTemplateRenderer_RSVPConfirmation(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.RSVPConfirmationEmailData{
		Name:       "Ana",
		EventTitle: "Go Meetup",
		Status:     domain.StatusGoing,
		StartTime:  time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC),
		Location:   "Main Hall",
	}

	subject, htmlBody, textBody, err := r.Render("rsvp_confirmation", data)
	require.NoError(t, err)
	assert.Equal(t, "Your RSVP for Go Meetup", subject)
	assert.Contains(t, htmlBody, "Go Meetup")
	assert.Contains(t, htmlBody, "GOING")
	assert.Contains(t, textBody, "Main Hall")
	assert.Contains(t, textBody, "Ana")
}

func TestTemplateRenderer_EventReminder(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.EventReminderEmailData{
		Name:       "Ana",
		EventTitle: "Go Meetup",
		StartTime:  time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC),
	}

	subject, htmlBody, textBody, err := r.Render("event_reminder", data)
	require.NoError(t, err)
	assert.Equal(t, "Reminder: Go Meetup is today", subject)
	assert.Contains(t, htmlBody, "18:30")
	assert.Contains(t, textBody, "18:30")
	assert.NotContains(t, textBody, "Where:")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r := NewTemplateRenderer()
	_, _, _, err := r.Render("no_such_template", nil)
	require.Error(t, err)
}
