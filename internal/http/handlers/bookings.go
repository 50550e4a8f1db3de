package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/cuddles-booking/internal/booking"
	"github.com/wolfman30/cuddles-booking/internal/lookup"
	"github.com/wolfman30/cuddles-booking/internal/pricing"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// BookingsHandler exposes wizard sessions over HTTP.
type BookingsHandler struct {
	sessions       *booking.Sessions
	logger         *logging.Logger
	allowedOrigins []string
}

func NewBookingsHandler(sessions *booking.Sessions, logger *logging.Logger) *BookingsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingsHandler{sessions: sessions, logger: logger}
}

// WithAllowedOrigins restricts which browser origins may open the events stream.
func (h *BookingsHandler) WithAllowedOrigins(origins []string) *BookingsHandler {
	h.allowedOrigins = origins
	return h
}

type sessionResponse struct {
	ID string `json:"id"`
	booking.View
}

type addressRequest struct {
	Address string `json:"address"`
	Event   string `json:"event"`
}

type guardErrorResponse struct {
	Error  string       `json:"error"`
	Step   booking.Step `json:"step"`
	Failed []string     `json:"failed"`
}

// Create handles POST /api/v1/bookings.
func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, wiz := h.sessions.Create()
	h.logger.Info("booking session opened", "session_id", id)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, View: wiz.Snapshot()})
}

// Get handles GET /api/v1/bookings/{id}.
func (h *BookingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, View: wiz.Snapshot()})
}

// Delete handles DELETE /api/v1/bookings/{id}.
func (h *BookingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.sessions.Delete(id) {
		jsonError(w, "booking session not found", http.StatusNotFound)
		return
	}
	h.logger.Info("booking session cancelled", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// SetPet handles PUT /api/v1/bookings/{id}/pet.
func (h *BookingsHandler) SetPet(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	var pet booking.PetInfo
	if err := decodeJSON(w, r, &pet); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := wiz.SetPetInfo(pet); err != nil {
		h.writeWizardError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, View: wiz.Snapshot()})
}

// SetParent handles PUT /api/v1/bookings/{id}/parent.
func (h *BookingsHandler) SetParent(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	var parent booking.ParentInfo
	if err := decodeJSON(w, r, &parent); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := wiz.SetParentInfo(parent); err != nil {
		h.writeWizardError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, View: wiz.Snapshot()})
}

// SetService handles PUT /api/v1/bookings/{id}/service.
func (h *BookingsHandler) SetService(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	var details booking.ServiceDetails
	if err := decodeJSON(w, r, &details); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if details.Kind != "" {
		kind, err := pricing.ParseServiceKind(string(details.Kind))
		if err != nil {
			jsonError(w, "unknown service", http.StatusBadRequest)
			return
		}
		details.Kind = kind
	}
	if err := wiz.SetServiceDetails(details); err != nil {
		h.writeWizardError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, View: wiz.Snapshot()})
}

// SetAddress handles POST /api/v1/bookings/{id}/address. Edits are debounced,
// so the response usually carries the pre-lookup state; follow the events
// stream or poll for the result.
func (h *BookingsHandler) SetAddress(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	var req addressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	ev := lookup.EventEdit
	if req.Event != "" {
		parsed, ok := lookup.ParseEvent(req.Event)
		if !ok {
			jsonError(w, "event must be edit, select or submit", http.StatusBadRequest)
			return
		}
		ev = parsed
	}
	issued, err := wiz.SetAddress(ev, req.Address)
	if err != nil {
		h.writeWizardError(w, id, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"id":     id,
		"issued": issued,
		"travel": wiz.Snapshot().Travel,
	})
}

// Next handles POST /api/v1/bookings/{id}/next.
func (h *BookingsHandler) Next(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	if _, err := wiz.Next(); err != nil {
		h.writeWizardError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, View: wiz.Snapshot()})
}

// Back handles POST /api/v1/bookings/{id}/back.
func (h *BookingsHandler) Back(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	if _, err := wiz.Back(); err != nil {
		h.writeWizardError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, View: wiz.Snapshot()})
}

// Schedule handles POST /api/v1/bookings/{id}/schedule.
func (h *BookingsHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	url, err := wiz.Schedule(r.Context())
	if err != nil {
		h.writeWizardError(w, id, err)
		return
	}
	h.logger.Info("booking handed off to scheduler", "session_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"redirect_url": url})
}

func (h *BookingsHandler) wizard(w http.ResponseWriter, r *http.Request) (string, *booking.Wizard, bool) {
	id := chi.URLParam(r, "id")
	wiz, ok := h.sessions.Get(id)
	if !ok {
		jsonError(w, "booking session not found", http.StatusNotFound)
		return id, nil, false
	}
	return id, wiz, true
}

func (h *BookingsHandler) writeWizardError(w http.ResponseWriter, id string, err error) {
	var guardErr *booking.GuardError
	switch {
	case errors.As(err, &guardErr):
		writeJSON(w, http.StatusConflict, guardErrorResponse{
			Error:  "step incomplete",
			Step:   guardErr.From,
			Failed: guardErr.Failed,
		})
	case errors.Is(err, booking.ErrWrongStep),
		errors.Is(err, booking.ErrNoNextStep),
		errors.Is(err, booking.ErrNoPreviousStep):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, pricing.ErrUnknownService):
		jsonError(w, "unknown service", http.StatusBadRequest)
	default:
		h.logger.Error("booking request failed", "error", err, "session_id", id)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}
