package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/weeklyplan/internal/planapi"
	"github.com/google/uuid"
)

// Store holds sessions in memory with idle expiry.
type Store struct {
	backend planapi.Backend
	ttl     time.Duration
	log     *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates a Store. Sessions idle longer than ttl are dropped by Sweep.
func NewStore(backend planapi.Backend, ttl time.Duration, log *slog.Logger) *Store {
	return &Store{
		backend:  backend,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session with the given id and marks it as seen.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return nil, false
	}
	now := st.now()
	if st.ttl > 0 && s.idleSince(now) > st.ttl {
		st.Delete(id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Create starts a new session with a random id.
func (st *Store) Create() *Session {
	s := newSession(uuid.NewString(), st.backend, st.log, st.now())
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Delete drops a session, closing any open chat.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.CloseChat()
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	now := st.now()
	var expired []string
	st.mu.Lock()
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			expired = append(expired, id)
		}
	}
	st.mu.Unlock()
	for _, id := range expired {
		st.Delete(id)
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				st.log.Info("expired sessions", "count", n, "remaining", st.Len())
			}
		}
	}
}
