package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	httpmiddleware "github.com/wolfman30/cuddles-booking/internal/http/middleware"
	"github.com/wolfman30/cuddles-booking/internal/lookup"
)

const (
	eventsWriteWait  = 10 * time.Second
	eventsPongWait   = 60 * time.Second
	eventsPingPeriod = (eventsPongWait * 9) / 10
)

type travelEvent struct {
	Type   string       `json:"type"`
	Travel lookup.State `json:"travel"`
}

// Events handles GET /api/v1/bookings/{id}/events. It upgrades to a
// WebSocket and pushes the travel state on connect and after every change.
func (h *BookingsHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, wiz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("events upgrade failed", "error", err, "session_id", id)
		return
	}
	defer conn.Close()

	states, unsubscribe := wiz.Subscribe()
	defer unsubscribe()

	// The client sends nothing meaningful; reading keeps pongs flowing and
	// notices when the peer goes away.
	gone := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(kind string, st lookup.State) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
		return conn.WriteJSON(travelEvent{Type: kind, Travel: st}) == nil
	}
	if !send("snapshot", wiz.Snapshot().Travel) {
		return
	}

	ticker := time.NewTicker(eventsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case st, open := <-states:
			if !open {
				_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if !send("travel", st) {
				return
			}
			h.sessions.Touch(id)
		case <-ticker.C:
			h.sessions.Touch(id)
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *BookingsHandler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
}

func (h *BookingsHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.allowedOrigins) == 0 {
		return true
	}
	return httpmiddleware.AllowsOrigin(h.allowedOrigins, origin)
}
