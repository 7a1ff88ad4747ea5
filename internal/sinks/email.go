package sinks

import (
	"context"

	"github.com/pulsefeed/backend/pkg/mail"
)

// EmailSink delivers notifications over the configured mailer. Recipients
// without an email address are skipped silently.
type EmailSink struct {
	mailer mail.Mailer
}

// NewEmailSink wraps a mailer as a notification sink.
func NewEmailSink(mailer mail.Mailer) *EmailSink {
	return &EmailSink{mailer: mailer}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, d Delivery) error {
	if d.RecipientEmail == "" {
		return nil
	}
	return s.mailer.Send(ctx, mail.Message{
		To:      []string{d.RecipientEmail},
		Subject: d.Title,
		Body:    d.Body,
	})
}
