package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/sevenbarberclub/booking/pkg/logging"
)

// EmailSender defines the interface for sending emails.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// BaseURL overrides the API host; tests point it at httptest.
	BaseURL string
}

// SendGridSender sends emails via SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Seven Barber Club"
	}
	var client *sendgrid.Client
	if cfg.BaseURL != "" {
		req := sendgrid.GetRequest(cfg.APIKey, "/v3/mail/send", cfg.BaseURL)
		req.Method = "POST"
		client = &sendgrid.Client{Request: req}
	} else {
		client = sendgrid.NewSendClient(cfg.APIKey)
	}
	return &SendGridSender{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Send sends a plain-text email via SendGrid.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, "")

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid returned error status", "status", response.StatusCode, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("email sent via sendgrid", "to", msg.To, "status", response.StatusCode)
	return nil
}

// StubEmailSender logs instead of sending. Used when email is disabled.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Debug("stub email sender: would send email", "to", msg.To, "subject", msg.Subject)
	return nil
}

// ConfirmationMailer emails the client a booking confirmation when they left
// an address on the form.
type ConfirmationMailer struct {
	sender   EmailSender
	renderer *Renderer
}

func NewConfirmationMailer(sender EmailSender, renderer *Renderer) *ConfirmationMailer {
	if renderer == nil {
		renderer = DefaultRenderer()
	}
	return &ConfirmationMailer{sender: sender, renderer: renderer}
}

// SendConfirmation is a no-op when the client gave no email.
func (m *ConfirmationMailer) SendConfirmation(ctx context.Context, d BookingDetails) error {
	if d.Email == "" || m.sender == nil {
		return nil
	}
	subject, err := m.renderer.Render(TemplateEmailSubject, d)
	if err != nil {
		return err
	}
	body, err := m.renderer.Render(TemplateEmailBody, d)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, EmailMessage{
		To:      d.Email,
		ToName:  d.ClientName,
		Subject: subject,
		Body:    body,
	})
}
