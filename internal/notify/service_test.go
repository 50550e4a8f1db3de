package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/cuddles-booking/internal/booking"
	"github.com/wolfman30/cuddles-booking/internal/leads"
	"github.com/wolfman30/cuddles-booking/internal/observability/metrics"
	"github.com/wolfman30/cuddles-booking/internal/pricing"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

type mockEmailSender struct {
	sent   []EmailMessage
	failOn string // fail if To matches this
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if m.failOn != "" && msg.To == m.failOn {
		return errors.New("mock email error")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func samplePayload() booking.Payload {
	price, fee, total := 130.0, 20.0, 150.0
	return booking.Payload{
		PetName:       "Biscuit",
		Sex:           "male",
		ParentName:    "Dana Reyes",
		Phone:         "512-555-0142",
		Service:       pricing.ServiceHaircut,
		Breed:         "Poodle",
		WeightLbs:     12,
		ServicePrice:  &price,
		TravelFee:     &fee,
		TravelFeeNum:  &fee,
		TotalEstimate: &total,
		Timestamp:     "2026-03-14T09:00:00Z",
		Source:        booking.DefaultSource,
	}
}

func TestService_NotifyBookingRequest(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, nil, logging.Discard(), metrics.NewEstimateMetrics(prometheus.NewRegistry()))

	require.NoError(t, svc.NotifyBookingRequest(context.Background(), samplePayload()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, DefaultRecipient, msg.To)
	assert.Equal(t, "New Booking Request — Biscuit (Dana Reyes)", msg.Subject)
	assert.Contains(t, msg.HTML, "$150.00 (before tax)")
	assert.Contains(t, msg.Body, "Travel Fee: $20.00")
	assert.Equal(t, "booking", msg.Category)
	assert.Empty(t, msg.ReplyTo)
}

func TestService_ReplyToCustomer(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, nil, logging.Discard(), nil)

	p := samplePayload()
	p.Email = "dana@example.com"
	require.NoError(t, svc.NotifyBookingRequest(context.Background(), p))
	require.NoError(t, svc.NotifyContactRequest(context.Background(), leads.Inquiry{Name: "Jamie", Email: "jamie@example.com"}))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "dana@example.com", sender.sent[0].ReplyTo)
	assert.Equal(t, "jamie@example.com", sender.sent[1].ReplyTo)
	assert.Equal(t, "contact", sender.sent[1].Category)
}

func TestService_MultipleRecipientsPartialFailure(t *testing.T) {
	sender := &mockEmailSender{failOn: "bad@example.com"}
	svc := NewService(sender, []string{"owner@example.com", " bad@example.com ", ""}, logging.Discard(), nil)

	err := svc.NotifyBookingRequest(context.Background(), samplePayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 notification(s) failed")
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, "owner@example.com", sender.sent[0].To)
}

func TestService_NoSender(t *testing.T) {
	svc := NewService(nil, nil, logging.Discard(), nil)
	assert.ErrorIs(t, svc.NotifyContactRequest(context.Background(), leads.Inquiry{Name: "Jamie"}), ErrNoSender)
}

func TestService_NotifyContactRequest(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, nil, logging.Discard(), nil)

	inq := leads.Inquiry{
		Name:  "Jamie <script>",
		Phone: "512-555-0100",
		City:  "Round Rock",
		Zip:   "78665",
	}
	require.NoError(t, svc.NotifyContactRequest(context.Background(), inq))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "New Contact Form Submission from Jamie <script>", msg.Subject)
	assert.Contains(t, msg.HTML, "Jamie &lt;script&gt;")
	assert.Contains(t, msg.HTML, "(no message provided)")
	if strings.Contains(msg.HTML, "<script>") {
		t.Error("expected html to be escaped")
	}
}

func TestFormatContact(t *testing.T) {
	body := FormatContact(leads.Inquiry{Name: "Jamie", Zip: "78665", Message: "Hi"})
	assert.Contains(t, body, "ZIP: 78665")
	assert.Contains(t, body, "Message: Hi")
}
