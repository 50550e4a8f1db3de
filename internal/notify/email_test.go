package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_Defaults(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key"}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.from.Name != DefaultFromName {
		t.Errorf("expected default from name %q, got %q", DefaultFromName, sender.from.Name)
	}
	if sender.from.Address != DefaultFromEmail {
		t.Errorf("expected default from email %q, got %q", DefaultFromEmail, sender.from.Address)
	}
}

func TestSendGridSender_Send(t *testing.T) {
	var gotAuth, gotPath string
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.test", Host: srv.URL}, logging.Discard())
	err := sender.Send(context.Background(), EmailMessage{
		To:      "contact@cuddlesandcut.com",
		Subject:  "New Booking Request",
		Body:     "plain",
		HTML:     "<p>html</p>",
		ReplyTo:  "dana@example.com",
		Category: "booking",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v3/mail/send" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer SG.test" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if payload["subject"] != "New Booking Request" {
		t.Errorf("unexpected subject %v", payload["subject"])
	}
	replyTo, _ := payload["reply_to"].(map[string]any)
	if replyTo["email"] != "dana@example.com" {
		t.Errorf("unexpected reply_to %v", payload["reply_to"])
	}
	if cats, _ := payload["categories"].([]any); len(cats) != 1 || cats[0] != "booking" {
		t.Errorf("unexpected categories %v", payload["categories"])
	}
	content, _ := payload["content"].([]any)
	if len(content) != 2 || content[0].(map[string]any)["type"] != "text/plain" {
		t.Errorf("expected plain then html content, got %v", payload["content"])
	}
}

func TestSendGridSender_BuildMailHTMLFallback(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.test"}, logging.Discard())
	m := sender.buildMail(EmailMessage{To: "a@example.com", Subject: "x", Body: "only text"})

	if len(m.Content) != 2 || m.Content[1].Value != "only text" {
		t.Fatalf("expected html part to fall back to body, got %+v", m.Content)
	}
	if m.ReplyTo != nil {
		t.Error("expected no reply-to")
	}
	if len(m.Categories) != 0 {
		t.Error("expected no categories")
	}
}

func TestSendGridSender_SendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	sender := NewSendGridSender(SendGridConfig{APIKey: "SG.bad", Host: srv.URL}, logging.Discard())
	err := sender.Send(context.Background(), EmailMessage{To: "a@example.com", Subject: "x", Body: "y"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{client: nil}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test",
		Body:    "Test body",
	})
	if err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(logging.Discard())

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test Subject",
		Body:    "Test body",
	})
	if err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSESSender_Send(t *testing.T) {
	api := &fakeSES{}
	sender := NewSESSender(api, SESConfig{ConfigurationSet: "bookings"}, logging.Discard())

	err := sender.Send(context.Background(), EmailMessage{
		To:      "contact@cuddlesandcut.com",
		Subject:  "Hello",
		Body:     "text",
		HTML:     "<b>html</b>",
		ReplyTo:  "dana@example.com",
		Category: "booking",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := api.input
	if got := aws.ToString(in.FromEmailAddress); got != "Cuddles & Cuts <noreply@cuddlesandcut.com>" {
		t.Errorf("unexpected from %q", got)
	}
	if in.Destination.ToAddresses[0] != "contact@cuddlesandcut.com" {
		t.Errorf("unexpected to %v", in.Destination.ToAddresses)
	}
	if aws.ToString(in.Content.Simple.Body.Html.Data) != "<b>html</b>" {
		t.Error("expected html body")
	}
	if aws.ToString(in.ConfigurationSetName) != "bookings" {
		t.Error("expected configuration set")
	}
	if len(in.ReplyToAddresses) != 1 || in.ReplyToAddresses[0] != "dana@example.com" {
		t.Errorf("unexpected reply-to %v", in.ReplyToAddresses)
	}
	if len(in.EmailTags) != 1 || aws.ToString(in.EmailTags[0].Value) != "booking" {
		t.Errorf("unexpected tags %v", in.EmailTags)
	}
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{}, logging.Discard())
	if err := sender.Send(context.Background(), EmailMessage{To: "a@example.com", Subject: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewSESSender_NilClient(t *testing.T) {
	if NewSESSender(nil, SESConfig{}, nil) != nil {
		t.Error("expected nil sender without client")
	}
}
