package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/cuddles-booking/internal/booking"
	"github.com/wolfman30/cuddles-booking/internal/leads"
	"github.com/wolfman30/cuddles-booking/internal/observability/metrics"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// ErrNoSender is returned when no email sender is configured.
var ErrNoSender = errors.New("notify: email sender not configured")

// Service emails booking and contact requests to the business inbox.
type Service struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
	metrics    *metrics.EstimateMetrics
	tracer     trace.Tracer
}

var (
	_ booking.Notifier = (*Service)(nil)
	_ leads.Notifier   = (*Service)(nil)
)

// NewService creates a notification service. Recipients default to the
// business contact inbox.
func NewService(email EmailSender, recipients []string, logger *logging.Logger, m *metrics.EstimateMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	var cleaned []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{DefaultRecipient}
	}
	return &Service{
		email:      email,
		recipients: cleaned,
		logger:     logger,
		metrics:    m,
		tracer:     otel.Tracer("cuddles.internal.notify"),
	}
}

// NotifyBookingRequest emails a completed booking request.
func (s *Service) NotifyBookingRequest(ctx context.Context, p booking.Payload) error {
	ctx, span := s.tracer.Start(ctx, "notify.booking_request")
	defer span.End()

	err := s.sendAll(ctx, "booking", EmailMessage{
		Subject: booking.Subject(p),
		Body:    booking.FormatSummary(p),
		HTML:    booking.FormatSummaryHTML(p),
		ReplyTo: p.Email,
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// NotifyContactRequest emails a contact form submission.
func (s *Service) NotifyContactRequest(ctx context.Context, inq leads.Inquiry) error {
	ctx, span := s.tracer.Start(ctx, "notify.contact_request")
	defer span.End()

	err := s.sendAll(ctx, "contact", EmailMessage{
		Subject: ContactSubject(inq),
		Body:    FormatContact(inq),
		HTML:    FormatContactHTML(inq),
		ReplyTo: inq.Email,
	})
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (s *Service) sendAll(ctx context.Context, kind string, msg EmailMessage) error {
	if s.email == nil {
		s.metrics.ObserveNotification(kind, "skipped")
		return ErrNoSender
	}

	msg.Category = kind
	var errs []error
	for _, recipient := range s.recipients {
		msg.To = recipient
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: failed to send email", "error", err, "to", recipient, "kind", kind)
			s.metrics.ObserveNotification(kind, "failed")
			errs = append(errs, err)
			continue
		}
		s.logger.Info("notify: email sent", "to", recipient, "kind", kind)
		s.metrics.ObserveNotification(kind, "sent")
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d notification(s) failed: %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// ContactSubject is the subject line for a contact inquiry.
func ContactSubject(inq leads.Inquiry) string {
	return fmt.Sprintf("New Contact Form Submission from %s", inq.Name)
}

// FormatContact renders a contact inquiry as plain text.
func FormatContact(inq leads.Inquiry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Name: %s\n", inq.Name))
	b.WriteString(fmt.Sprintf("Phone: %s\n", inq.Phone))
	b.WriteString(fmt.Sprintf("Email: %s\n", inq.Email))
	b.WriteString(fmt.Sprintf("City: %s\n", inq.City))
	b.WriteString(fmt.Sprintf("ZIP: %s\n", inq.Zip))
	b.WriteString(fmt.Sprintf("Service: %s\n", inq.Service))
	b.WriteString(fmt.Sprintf("Message: %s\n", messageOrDefault(inq.Message)))
	return b.String()
}

// FormatContactHTML renders a contact inquiry for email.
func FormatContactHTML(inq leads.Inquiry) string {
	e := html.EscapeString
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:600px;">
<h2 style="color:#333;">New Contact Form Submission</h2>
<p><b>Name:</b> %s</p>
<p><b>Phone:</b> %s</p>
<p><b>Email:</b> %s</p>
<p><b>City:</b> %s</p>
<p><b>ZIP:</b> %s</p>
<p><b>Service:</b> %s</p>
<p><b>Message:</b><br>%s</p>
<hr>
<p style="color:#666;font-size:12px;">Sent from cuddlesandcut.com</p>
</div>`,
		e(inq.Name), e(inq.Phone), e(inq.Email), e(inq.City), e(inq.Zip), e(inq.Service),
		e(messageOrDefault(inq.Message)))
}

func messageOrDefault(m string) string {
	if strings.TrimSpace(m) == "" {
		return "(no message provided)"
	}
	return m
}
