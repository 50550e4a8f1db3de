package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

type recordingNotifier struct {
	inquiries []Inquiry
	err       error
}

func (n *recordingNotifier) NotifyContactRequest(_ context.Context, inq Inquiry) error {
	n.inquiries = append(n.inquiries, inq)
	return n.err
}

func postContact(t *testing.T, h *Handler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.SubmitContact(w, req)
	return w
}

func TestSubmitContact_Success(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewHandler(notifier, logging.Discard())

	body, _ := json.Marshal(Inquiry{
		Name:    " Jamie Fox ",
		Phone:   "512-555-0100",
		Email:   "jamie@example.com",
		City:    "Round Rock",
		Zip:     "78665",
		Service: "Full-Service Bath",
		Message: "Do you groom cats?",
	})
	w := postContact(t, handler, body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"ok":true}` {
		t.Errorf("unexpected body %s", w.Body.String())
	}
	if len(notifier.inquiries) != 1 {
		t.Fatalf("expected 1 inquiry, got %d", len(notifier.inquiries))
	}
	got := notifier.inquiries[0]
	if got.Name != "Jamie Fox" {
		t.Errorf("expected trimmed name, got %q", got.Name)
	}
	if got.Source != DefaultSource {
		t.Errorf("expected default source, got %q", got.Source)
	}
	if got.ReceivedAt.IsZero() {
		t.Error("expected ReceivedAt to be set")
	}
}

func TestSubmitContact_InvalidRequest(t *testing.T) {
	handler := NewHandler(&recordingNotifier{}, logging.Discard())

	for name, inq := range map[string]Inquiry{
		"missing name":    {Email: "a@example.com"},
		"missing contact": {Name: "Jamie"},
		"bad zip":         {Name: "Jamie", Phone: "5125550100", Zip: "7866"},
	} {
		body, _ := json.Marshal(inq)
		w := postContact(t, handler, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", name, http.StatusBadRequest, w.Code)
		}
	}
}

func TestSubmitContact_InvalidJSON(t *testing.T) {
	handler := NewHandler(&recordingNotifier{}, logging.Discard())

	w := postContact(t, handler, []byte("{"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestSubmitContact_NotifierError(t *testing.T) {
	handler := NewHandler(&recordingNotifier{err: errors.New("boom")}, logging.Discard())

	body, _ := json.Marshal(Inquiry{Name: "Jamie", Email: "jamie@example.com"})
	w := postContact(t, handler, body)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to send email") {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestSubmitContact_NoNotifier(t *testing.T) {
	handler := NewHandler(nil, logging.Discard())

	body, _ := json.Marshal(Inquiry{Name: "Jamie", Email: "jamie@example.com"})
	w := postContact(t, handler, body)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected %d, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestInquiryValidate(t *testing.T) {
	tests := []struct {
		name string
		inq  Inquiry
		want error
	}{
		{"valid phone only", Inquiry{Name: "Jamie", Phone: "5125550100"}, nil},
		{"valid zip+4", Inquiry{Name: "Jamie", Email: "j@example.com", Zip: "78665-1234"}, nil},
		{"blank name", Inquiry{Name: "  ", Phone: "5125550100"}, ErrInvalidName},
		{"no contact", Inquiry{Name: "Jamie"}, ErrMissingContact},
		{"bad zip", Inquiry{Name: "Jamie", Phone: "5125550100", Zip: "abcde"}, ErrInvalidZip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.inq.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
