package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/weeklyplan/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProgramJSON(w http.ResponseWriter, r *http.Request) {
	p := currentProgram(r, sessionFrom(r))
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active program"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleActivityJSON(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		writeJSON(w, http.StatusOK, []storage.Activity{})
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	entries, err := s.activity.RecentActivity(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []storage.Activity{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// logActivity records a mutation's result. Failures are logged and never
// reach the user.
func (s *Server) logActivity(sessionID string, a storage.Activity, actionErr error, start time.Time) {
	if s.activity == nil {
		return
	}
	a.SessionID = sessionID
	a.Status = storage.StatusSuccess
	if actionErr != nil {
		a.Status = storage.StatusError
	}
	durationMs := int(time.Since(start).Milliseconds())
	a.DurationMs = &durationMs

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.activity.InsertActivity(ctx, a); err != nil {
		s.log.Error("failed to log activity", "action", a.Action, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for activity logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
