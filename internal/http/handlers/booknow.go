package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/cuddles-booking/internal/booking"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// BookNowHandler accepts a completed booking payload from the site's
// client-side form and forwards it to the notifier.
type BookNowHandler struct {
	notifier booking.Notifier
	timeout  time.Duration
	logger   *logging.Logger
	now      func() time.Time
}

func NewBookNowHandler(notifier booking.Notifier, timeout time.Duration, logger *logging.Logger) *BookNowHandler {
	if timeout <= 0 {
		timeout = booking.DefaultNotifyTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookNowHandler{notifier: notifier, timeout: timeout, logger: logger, now: time.Now}
}

// Submit handles POST /api/booknow.
func (h *BookNowHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var p booking.Payload
	if err := decodeJSON(w, r, &p); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := p.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(p.Source) == "" {
		p.Source = booking.DefaultSource
	}
	if strings.TrimSpace(p.Timestamp) == "" {
		p.Timestamp = h.now().UTC().Format(time.RFC3339Nano)
	}
	if h.notifier == nil {
		h.logger.Error("booknow notifier not configured")
		jsonError(w, "Failed to send email", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := h.notifier.NotifyBookingRequest(ctx, p); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		h.logger.Error("failed to send booknow notification", "error", err, "pet", p.PetName)
		jsonError(w, "Failed to send email", status)
		return
	}
	h.logger.Info("booknow request sent", "pet", p.PetName, "parent", p.ParentName)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
