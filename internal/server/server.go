package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/claude/weeklyplan/internal/metrics"
	"github.com/claude/weeklyplan/internal/session"
	"github.com/claude/weeklyplan/internal/storage"
	"github.com/claude/weeklyplan/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures a Server.
type Options struct {
	Sessions *session.Store
	// Activity may be nil, in which case mutations are not recorded.
	Activity storage.ActivityLog
	// Metrics is required.
	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer

	// CSRFKey enables CSRF protection on form posts when non-empty.
	CSRFKey      []byte
	SecureCookie bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	sessions *session.Store
	activity storage.ActivityLog
	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
	tmpl     *view.Templates
	log      *slog.Logger
	opts     Options
	router   chi.Router

	// pending tracks adapt exchanges still running after their request.
	pending sync.WaitGroup
}

// New creates a new Server with all routes configured.
func New(opts Options, log *slog.Logger) (*Server, error) {
	if opts.Metrics == nil {
		return nil, errors.New("server: metrics manager is required")
	}
	tmpl, err := view.Load()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.NewRegistry()
	}
	s := &Server{
		sessions: opts.Sessions,
		activity: opts.Activity,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		tmpl:     tmpl,
		log:      log,
		opts:     opts,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Wait blocks until background adapt exchanges have finished.
func (s *Server) Wait() {
	s.pending.Wait()
}

func (s *Server) routes() {
	s.router.Use(Recoverer(s.log, s.metrics))
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.router.Group(func(r chi.Router) {
		r.Use(Sessions(s.sessions, s.opts.SecureCookie, s.metrics))

		r.Get("/api/v1/program", s.handleProgramJSON)
		r.Get("/api/v1/activity", s.handleActivityJSON)

		r.Group(func(r chi.Router) {
			if len(s.opts.CSRFKey) > 0 {
				r.Use(PlaintextUnlessTLS)
				r.Use(csrf.Protect(s.opts.CSRFKey,
					csrf.Secure(s.opts.SecureCookie),
					csrf.Path("/"),
					csrf.SameSite(csrf.SameSiteLaxMode),
					csrf.FieldName("csrf_token"),
					csrf.ErrorHandler(http.HandlerFunc(s.handleCSRFFailure)),
				))
			}

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/weekly-plan", http.StatusSeeOther)
			})

			r.Route("/weekly-plan", func(r chi.Router) {
				r.Get("/", s.handleWeeklyPlan)
				r.Get("/full", s.handleFullPlan)
				r.Get("/days/{id}", s.handleDay)
				r.Post("/days/{id}/arm", s.handleArmDelete)
				r.Post("/days/{id}/cancel", s.handleCancelDelete)
				r.Post("/days/{id}/delete", s.handleConfirmDelete)
			})

			r.Route("/adapt", func(r chi.Router) {
				r.Get("/", s.handleAdapt)
				r.Post("/messages", s.handleAdaptMessage)
				r.Post("/close", s.handleAdaptClose)
			})
		})
	})
}
