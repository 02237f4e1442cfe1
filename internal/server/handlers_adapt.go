package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/claude/weeklyplan/internal/plan"
	"github.com/claude/weeklyplan/internal/storage"
	"github.com/claude/weeklyplan/internal/view"
)

const adaptPath = "/adapt"

func (s *Server) handleAdapt(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	// The exchange that adopted a plan closed the modal.
	if sess.JustAdopted() {
		http.Redirect(w, r, weeklyPlanPath, http.StatusSeeOther)
		return
	}
	p := currentProgram(r, sess)
	if p == nil {
		http.Redirect(w, r, weeklyPlanPath, http.StatusSeeOther)
		return
	}
	chat := sess.OpenChat()
	s.render(w, "adapt.html", view.AdaptPage{
		Base:        s.base(r, "Adapt Plan"),
		ProgramName: p.Name,
		Messages:    chat.Messages(),
		Busy:        chat.Busy(),
	})
}

// handleAdaptMessage starts an exchange and returns at once. The modal polls
// while the chat is busy and leaves for the weekly plan once a plan is adopted.
func (s *Server) handleAdaptMessage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	chat := sess.Chat()
	if chat == nil {
		http.Redirect(w, r, adaptPath, http.StatusSeeOther)
		return
	}
	current := sess.Fetcher.Program()
	if current == nil {
		http.Redirect(w, r, weeklyPlanPath, http.StatusSeeOther)
		return
	}

	input := r.FormValue("message")
	start := time.Now()
	s.pending.Add(1)
	err := chat.Submit(detach(r), current, input, func(outcome plan.Outcome, err error) {
		defer s.pending.Done()
		s.recordExchange(sess.ID, input, outcome, err, start)
	})
	if err != nil {
		s.pending.Done()
		if errors.Is(err, plan.ErrChatClosed) {
			http.Redirect(w, r, weeklyPlanPath, http.StatusSeeOther)
			return
		}
	}
	http.Redirect(w, r, adaptPath+"#latest", http.StatusSeeOther)
}

func (s *Server) recordExchange(sessionID, input string, outcome plan.Outcome, err error, start time.Time) {
	s.metrics.CounterChatOutcomes.WithLabelValues(outcome.String()).Inc()
	if outcome == plan.OutcomeIgnored {
		return
	}
	a := storage.Activity{
		Action:  storage.ActionAdaptPlan,
		Outcome: outcome.String(),
		Request: &input,
	}
	if err != nil {
		s.log.Error("adapt exchange failed", "error", err)
		msg := err.Error()
		a.ErrorMessage = &msg
	}
	s.logActivity(sessionID, a, err, start)
}

func (s *Server) handleAdaptClose(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).CloseChat()
	http.Redirect(w, r, weeklyPlanPath, http.StatusSeeOther)
}
