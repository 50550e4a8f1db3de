package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

const (
	DefaultFromEmail = "noreply@cuddlesandcut.com"
	DefaultFromName  = "Cuddles & Cuts"
	DefaultRecipient = "contact@cuddlesandcut.com"
)

// EmailSender delivers one message to one inbox.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a notification email. ReplyTo is the customer's address
// so the groomer can answer straight from the inbox.
type EmailMessage struct {
	To       string
	Subject  string
	Body     string
	HTML     string
	ReplyTo  string
	Category string
}

// SendGridConfig holds the SendGrid credentials and sender identity.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// Host overrides https://api.sendgrid.com.
	Host string
}

// SendGridSender sends through the SendGrid v3 mail API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *logging.Logger
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = DefaultFromEmail
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}

	client := sendgrid.NewSendClient(cfg.APIKey)
	if cfg.Host != "" {
		req := sendgrid.GetRequest(cfg.APIKey, "/v3/mail/send", cfg.Host)
		req.Method = "POST"
		client = &sendgrid.Client{Request: req}
	}
	return &SendGridSender{
		client: client,
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		logger: logger,
	}
}

// buildMail assembles the v3 request. The plain part must precede the HTML part.
func (s *SendGridSender) buildMail(msg EmailMessage) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(s.from)
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", msg.To))
	m.AddPersonalizations(p)

	if msg.Body != "" {
		m.AddContent(mail.NewContent("text/plain", msg.Body))
	}
	html := msg.HTML
	if html == "" {
		html = msg.Body
	}
	m.AddContent(mail.NewContent("text/html", html))

	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	if msg.Category != "" {
		m.AddCategories(msg.Category)
	}
	return m
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.client == nil {
		return fmt.Errorf("notify: sendgrid client not configured")
	}

	resp, err := s.client.SendWithContext(ctx, s.buildMail(msg))
	if err != nil {
		return fmt.Errorf("notify: sendgrid send to %s: %w", msg.To, err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Warn("sendgrid rejected message", "status", resp.StatusCode, "body", resp.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", resp.StatusCode)
	}

	s.logger.Debug("sendgrid accepted message", "to", msg.To, "category", msg.Category, "status", resp.StatusCode)
	return nil
}

// StubEmailSender only logs. It stands in when no provider is configured.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.Info("stub email sender: would send email",
		"to", msg.To,
		"subject", msg.Subject,
		"reply_to", msg.ReplyTo,
		"category", msg.Category,
	)
	return nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*StubEmailSender)(nil)
)
