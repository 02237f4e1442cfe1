package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/weeklyplan/internal/models"
	"github.com/claude/weeklyplan/internal/plan"
	"github.com/claude/weeklyplan/internal/session"
	"github.com/claude/weeklyplan/internal/storage"
	"github.com/claude/weeklyplan/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
)

const weeklyPlanPath = "/weekly-plan"

// detach returns a context that outlives the browser request. Calls to the
// plan service run to completion even if the user navigates away; the
// client's configured timeout still bounds them.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// currentProgram returns the session's cached program, fetching it when
// nothing is cached.
func currentProgram(r *http.Request, sess *session.Session) *models.Program {
	if p := sess.Fetcher.Program(); p != nil && sess.Fetcher.Loaded() {
		return p
	}
	return sess.Fetcher.Fetch(detach(r))
}

func (s *Server) handleWeeklyPlan(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	// Every view re-reads the service, except the one right after an
	// adapted plan was adopted.
	var p *models.Program
	if sess.TakeAdopted() && sess.Fetcher.Program() != nil {
		p = sess.Fetcher.Program()
	} else {
		p = sess.Fetcher.Fetch(detach(r))
	}

	armedID, hasArmed := sess.Delete.Armed()
	s.render(w, "weekly_plan.html", view.WeeklyPage{
		Base:     s.base(r, "Weekly Plan"),
		Plan:     view.NewPlanView(p, view.Summary),
		Loading:  sess.Fetcher.Loading(),
		ArmedID:  armedID,
		HasArmed: hasArmed,
		Alert:    sess.TakeFlash(),
	})
}

func (s *Server) handleFullPlan(w http.ResponseWriter, r *http.Request) {
	p := currentProgram(r, sessionFrom(r))
	if p == nil {
		http.Redirect(w, r, weeklyPlanPath, http.StatusSeeOther)
		return
	}
	s.render(w, "plan_full.html", view.FullPlanPage{
		Base: s.base(r, p.Name),
		Plan: view.NewPlanView(p, view.Detail),
	})
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	id, ok := dayID(w, r)
	if !ok {
		return
	}
	p := currentProgram(r, sessionFrom(r))
	if p == nil {
		http.Redirect(w, r, weeklyPlanPath, http.StatusSeeOther)
		return
	}
	day, found := p.Day(id)
	if !found {
		http.Redirect(w, r, weeklyPlanPath, http.StatusSeeOther)
		return
	}
	dv := view.NewDayView(day, view.Detail)
	s.render(w, "day.html", view.DayPage{
		Base:        s.base(r, dv.Label),
		ProgramName: p.Name,
		Day:         dv,
	})
}

func (s *Server) handleArmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := dayID(w, r)
	if !ok {
		return
	}
	sessionFrom(r).Delete.Arm(id)
	http.Redirect(w, r, fmt.Sprintf("%s#day-%d", weeklyPlanPath, id), http.StatusSeeOther)
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := dayID(w, r)
	if !ok {
		return
	}
	sessionFrom(r).Delete.Cancel()
	http.Redirect(w, r, fmt.Sprintf("%s#day-%d", weeklyPlanPath, id), http.StatusSeeOther)
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := dayID(w, r)
	if !ok {
		return
	}
	sess := sessionFrom(r)

	start := time.Now()
	err := sess.Delete.Confirm(detach(r), id)
	switch {
	case errors.Is(err, plan.ErrNotArmed), errors.Is(err, plan.ErrBusy):
		// Stale form or double submit.
	case err != nil:
		var alert *plan.AlertError
		msg := plan.AlertDeleteError
		if errors.As(err, &alert) {
			msg = alert.Message
		}
		s.log.Error("failed to delete workout", "workout_id", id, "error", err)
		sess.SetFlash(msg)
		s.logActivity(sess.ID, storage.Activity{
			Action:       storage.ActionDeleteWorkout,
			WorkoutID:    &id,
			ErrorMessage: &msg,
		}, err, start)
	default:
		s.logActivity(sess.ID, storage.Activity{
			Action:    storage.ActionDeleteWorkout,
			WorkoutID: &id,
		}, nil, start)
	}
	http.Redirect(w, r, weeklyPlanPath, http.StatusSeeOther)
}

func (s *Server) handleCSRFFailure(w http.ResponseWriter, r *http.Request) {
	s.log.Warn("csrf check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	http.Error(w, "Forbidden - invalid or missing form token. Reload the page and try again.", http.StatusForbidden)
}

func (s *Server) base(r *http.Request, title string) view.Base {
	return view.Base{Title: title, CSRFField: csrf.TemplateField(r)}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.tmpl.Render(w, name, data); err != nil {
		s.log.Error("render failed", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// dayID parses the {id} URL parameter, writing 400 when it is invalid.
func dayID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid workout id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
