package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wolfman30/cuddles-booking/internal/booking"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// WebhookNotifier posts booking payloads as JSON to an endpoint that
// acknowledges with {"ok":true}.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *logging.Logger
}

var _ booking.Notifier = (*WebhookNotifier)(nil)

func NewWebhookNotifier(url string, client *http.Client, logger *logging.Logger) *WebhookNotifier {
	if url == "" {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookNotifier{url: url, client: client, logger: logger}
}

type webhookAck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (n *WebhookNotifier) NotifyBookingRequest(ctx context.Context, p booking.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("notify: marshal booking payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	var ack webhookAck
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&ack); err != nil && resp.StatusCode < 300 {
		return fmt.Errorf("notify: decode webhook ack: %w", err)
	}
	if resp.StatusCode >= 300 || !ack.OK {
		msg := ack.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("notify: webhook returned status %d: %s", resp.StatusCode, msg)
	}
	n.logger.Info("booking webhook delivered", "url", n.url, "pet", p.PetName)
	return nil
}

// Fanout delivers a booking to several notifiers. Every notifier is tried;
// failures are joined.
type Fanout []booking.Notifier

func (f Fanout) NotifyBookingRequest(ctx context.Context, p booking.Payload) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.NotifyBookingRequest(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
