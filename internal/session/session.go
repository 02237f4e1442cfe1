// Package session keeps per-browser UI state server-side: the cached
// program, the pending delete confirmation, and the open adaptation chat.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/weeklyplan/internal/models"
	"github.com/claude/weeklyplan/internal/plan"
	"github.com/claude/weeklyplan/internal/planapi"
)

// Session is the UI state of one browser.
type Session struct {
	ID      string
	Fetcher *plan.Fetcher
	Delete  *plan.DeleteFlow

	backend planapi.Backend
	log     *slog.Logger

	mu       sync.Mutex
	chat     *plan.Chat
	flash    string
	adopted  bool
	lastSeen time.Time
}

func newSession(id string, backend planapi.Backend, log *slog.Logger, now time.Time) *Session {
	s := &Session{
		ID:       id,
		backend:  backend,
		log:      log.With("session", id[:8]),
		lastSeen: now,
	}
	s.Fetcher = plan.NewFetcher(backend, s.log)
	s.Delete = plan.NewDeleteFlow(backend, func(ctx context.Context) {
		s.Fetcher.Reload(ctx)
	})
	return s
}

// OpenChat returns the open chat, creating a new greeting-seeded one if the
// modal is closed. An adopted plan replaces the cached program, closes the
// chat and marks the session as just adopted.
func (s *Session) OpenChat() *plan.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chat != nil && !s.chat.Closed() {
		return s.chat
	}
	var c *plan.Chat
	c = plan.NewChat(s.backend, func(p *models.Program) {
		s.Fetcher.Replace(p)
		s.mu.Lock()
		s.adopted = true
		s.mu.Unlock()
		s.closeChat(c)
	})
	s.chat = c
	return c
}

// Chat returns the open chat, or nil when the modal is closed.
func (s *Session) Chat() *plan.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat
}

// CloseChat closes the modal. An in-flight request's result is ignored.
func (s *Session) CloseChat() {
	s.mu.Lock()
	c := s.chat
	s.mu.Unlock()
	if c != nil {
		s.closeChat(c)
	}
}

func (s *Session) closeChat(c *plan.Chat) {
	c.Close()
	s.mu.Lock()
	if s.chat == c {
		s.chat = nil
	}
	s.mu.Unlock()
}

// SetFlash stores a one-shot alert for the next page view.
func (s *Session) SetFlash(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = msg
}

// TakeFlash returns and clears the pending alert.
func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}

// JustAdopted reports whether an adapted plan is waiting to be shown.
func (s *Session) JustAdopted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adopted
}

// TakeAdopted clears and returns the just-adopted mark. The weekly plan view
// shows the adopted copy once instead of re-reading the service.
func (s *Session) TakeAdopted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	adopted := s.adopted
	s.adopted = false
	return adopted
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
