package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// DefaultSessionTTL is how long an idle session survives.
const DefaultSessionTTL = 30 * time.Minute

// Sessions holds the live wizards keyed by session ID. Nothing is
// persisted: a session is gone once it expires or is deleted.
type Sessions struct {
	factory func() *Wizard
	ttl     time.Duration
	logger  *logging.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	wizard   *Wizard
	lastSeen time.Time
}

func NewSessions(factory func() *Wizard, ttl time.Duration, logger *logging.Logger) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Sessions{
		factory:  factory,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Create opens a new wizard session.
func (s *Sessions) Create() (string, *Wizard) {
	w := s.factory()
	w.Open()
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{wizard: w, lastSeen: s.now()}
	s.mu.Unlock()
	return id, w
}

// Get returns the session's wizard and refreshes its idle timer.
func (s *Sessions) Get(id string) (*Wizard, bool) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.ttl {
		delete(s.sessions, id)
		s.mu.Unlock()
		e.wizard.Close()
		return nil, false
	}
	e.lastSeen = now
	s.mu.Unlock()
	return e.wizard, true
}

// Touch refreshes a live session's idle timer without handing out the
// wizard. Long-lived readers such as the events stream call it so a
// listening client is not swept.
func (s *Sessions) Touch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return false
	}
	e.lastSeen = s.now()
	return true
}

// Delete closes and forgets a session.
func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		e.wizard.Close()
	}
	return ok
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes sessions idle longer than the TTL and returns how many.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	var expired []*Wizard
	now := s.now()
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			expired = append(expired, e.wizard)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, w := range expired {
		w.Close()
	}
	if len(expired) > 0 {
		s.logger.Info("booking: expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps on interval until ctx is done, then closes every session.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close closes every session.
func (s *Sessions) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*sessionEntry)
	s.mu.Unlock()
	for _, e := range all {
		e.wizard.Close()
	}
}
