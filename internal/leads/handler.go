package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// Notifier delivers a contact inquiry to the business.
type Notifier interface {
	NotifyContactRequest(ctx context.Context, inq Inquiry) error
}

// Handler handles contact form submissions
type Handler struct {
	notifier Notifier
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates a new contact form handler
func NewHandler(notifier Notifier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// SubmitContact handles POST /api/contact requests
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var inq Inquiry
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&inq); err != nil {
		h.logger.Error("failed to decode contact request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	inq.Normalize()
	if err := inq.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	inq.ReceivedAt = h.now().UTC()

	if h.notifier == nil {
		h.logger.Error("contact notifier not configured")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to send email"})
		return
	}
	if err := h.notifier.NotifyContactRequest(r.Context(), inq); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		h.logger.Error("failed to send contact notification", "error", err, "name", inq.Name)
		writeJSON(w, status, map[string]string{"error": "Failed to send email"})
		return
	}

	h.logger.Info("contact inquiry sent", "name", inq.Name, "service", inq.Service)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
