package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends transactional email.
type Mailer interface {
	SendVerificationLink(ctx context.Context, toEmail, link string) error
}

type sendGridMailer struct {
	client *sendgrid.Client
	from   string
	logger zerolog.Logger
}

// NewSendGridMailer creates a Mailer backed by SendGrid.
func NewSendGridMailer(apiKey, fromEmail string, logger zerolog.Logger) Mailer {
	return &sendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   fromEmail,
		logger: logger.With().Str("service", "SendGridMailer").Logger(),
	}
}

func (m *sendGridMailer) SendVerificationLink(ctx context.Context, toEmail, link string) error {
	from := sgmail.NewEmail("EveryCourse", m.from)
	to := sgmail.NewEmail("", toEmail)
	subject := "Verify your university email"
	plain := fmt.Sprintf("Open the link below to complete student verification.\n\n%s\n\nThe link expires in 24 hours.", link)
	html := fmt.Sprintf(`<p>Open the link below to complete student verification.</p><p><a href="%s">Verify my email</a></p><p>The link expires in 24 hours.</p>`, link)
	message := sgmail.NewSingleEmail(from, subject, to, plain, html)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending verification email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sending verification email: sendgrid returned status %d", resp.StatusCode)
	}
	m.logger.Debug().Str("to", toEmail).Msg("Verification email sent")
	return nil
}

type logMailer struct {
	logger zerolog.Logger
}

// NewLogMailer creates a Mailer that only logs the link. Used in local
// development when no SendGrid key is configured.
func NewLogMailer(logger zerolog.Logger) Mailer {
	return &logMailer{logger: logger.With().Str("service", "LogMailer").Logger()}
}

func (m *logMailer) SendVerificationLink(_ context.Context, toEmail, link string) error {
	m.logger.Info().Str("to", toEmail).Str("link", link).Msg("Verification email (not sent, no mail provider configured)")
	return nil
}
