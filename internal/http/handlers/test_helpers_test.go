package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/cuddles-booking/internal/booking"
	"github.com/wolfman30/cuddles-booking/internal/lookup"
	"github.com/wolfman30/cuddles-booking/internal/travel"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

type recordingNotifier struct {
	mu       sync.Mutex
	payloads []booking.Payload
	err      error
}

func (n *recordingNotifier) NotifyBookingRequest(ctx context.Context, p booking.Payload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, p)
	return n.err
}

func (n *recordingNotifier) sent() []booking.Payload {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]booking.Payload(nil), n.payloads...)
}

type bookingsFixture struct {
	router   chi.Router
	provider *travel.StaticProvider
	notifier *recordingNotifier
	sessions *booking.Sessions
}

func newBookingsFixture(t *testing.T) *bookingsFixture {
	t.Helper()
	provider := travel.NewStaticProvider()
	resolver := travel.NewResolver(provider, travel.DefaultOrigin, travel.WithLogger(logging.Discard()))
	notifier := &recordingNotifier{}
	sessions := booking.NewSessions(func() *booking.Wizard {
		coord := lookup.New(resolver, travel.ModeInHome, lookup.Options{
			Interval: 10 * time.Millisecond,
			Logger:   logging.Discard(),
		})
		return booking.NewWizard(coord, booking.Options{Notifier: notifier, Logger: logging.Discard()})
	}, time.Minute, logging.Discard())
	t.Cleanup(sessions.Close)

	h := NewBookingsHandler(sessions, logging.Discard())
	r := chi.NewRouter()
	r.Route("/api/v1/bookings", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Put("/pet", h.SetPet)
			r.Put("/parent", h.SetParent)
			r.Put("/service", h.SetService)
			r.Post("/address", h.SetAddress)
			r.Post("/next", h.Next)
			r.Post("/back", h.Back)
			r.Post("/schedule", h.Schedule)
			r.Get("/events", h.Events)
		})
	})
	return &bookingsFixture{router: r, provider: provider, notifier: notifier, sessions: sessions}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
