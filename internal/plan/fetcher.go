// Package plan holds the per-user state machines of the weekly plan UI:
// loading the active program, the two-step delete confirmation, and the
// adaptation chat. None of them mutate plan data locally; every change goes
// through the plan service and is observed by re-reading.
package plan

import (
	"context"
	"log/slog"
	"sync"

	"github.com/claude/weeklyplan/internal/models"
)

// ProgramSource loads the active program.
type ProgramSource interface {
	ActiveProgram(ctx context.Context) (*models.Program, error)
}

// Fetcher caches the active program for one user.
type Fetcher struct {
	src ProgramSource
	log *slog.Logger

	mu       sync.Mutex
	program  *models.Program
	inflight int
	loaded   bool
	seq      uint64
}

// NewFetcher creates a Fetcher in the loading-pending state.
func NewFetcher(src ProgramSource, log *slog.Logger) *Fetcher {
	return &Fetcher{src: src, log: log}
}

// Fetch requests the active program and stores it. Any failure stores nil,
// which the UI shows as "no active program"; the error is only logged.
func (f *Fetcher) Fetch(ctx context.Context) *models.Program {
	f.mu.Lock()
	f.inflight++
	f.seq++
	seq := f.seq
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	p, err := f.src.ActiveProgram(ctx)
	if err != nil {
		f.log.Error("failed to fetch active program", "error", err)
		p = nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	// A newer fetch or replacement finished first.
	if seq != f.seq {
		return f.program
	}
	f.program = p
	f.loaded = true
	return p
}

// Reload is the invalidate-and-reload contract used after mutations.
func (f *Fetcher) Reload(ctx context.Context) *models.Program {
	f.Invalidate()
	return f.Fetch(ctx)
}

// Replace adopts a full replacement plan, e.g. one returned by adaptation.
func (f *Fetcher) Replace(p *models.Program) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.program = p
	f.loaded = true
}

// Invalidate marks the cached copy stale so the next view re-reads it.
func (f *Fetcher) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = false
}

// Program returns the cached program, nil when there is none.
func (f *Fetcher) Program() *models.Program {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.program
}

// Loading reports whether a fetch is in flight.
func (f *Fetcher) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inflight > 0
}

// Loaded reports whether the cache holds a current result (possibly nil).
func (f *Fetcher) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}
