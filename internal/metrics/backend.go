package metrics

import (
	"context"
	"time"

	"github.com/claude/weeklyplan/internal/models"
	"github.com/claude/weeklyplan/internal/planapi"
)

// Plan service operation labels.
const (
	OpActiveProgram = "active_program"
	OpDeleteWorkout = "delete_workout"
	OpAdaptPlan     = "adapt_plan"
)

// Backend wraps a planapi.Backend and records call counts and latency.
type Backend struct {
	next planapi.Backend
	m    *Manager
}

var _ planapi.Backend = (*Backend)(nil)

// InstrumentBackend returns next wrapped with metrics.
func InstrumentBackend(next planapi.Backend, m *Manager) *Backend {
	return &Backend{next: next, m: m}
}

func (b *Backend) ActiveProgram(ctx context.Context) (*models.Program, error) {
	defer b.observe(OpActiveProgram, time.Now())
	p, err := b.next.ActiveProgram(ctx)
	b.count(OpActiveProgram, err)
	return p, err
}

func (b *Backend) DeleteWorkout(ctx context.Context, workoutID int64) error {
	defer b.observe(OpDeleteWorkout, time.Now())
	err := b.next.DeleteWorkout(ctx, workoutID)
	b.count(OpDeleteWorkout, err)
	return err
}

func (b *Backend) AdaptPlan(ctx context.Context, plan *models.Program, request string) (*models.AdaptResponse, error) {
	defer b.observe(OpAdaptPlan, time.Now())
	resp, err := b.next.AdaptPlan(ctx, plan, request)
	b.count(OpAdaptPlan, err)
	return resp, err
}

func (b *Backend) observe(op string, begin time.Time) {
	b.m.HistPlanCallSeconds.WithLabelValues(op).Observe(time.Since(begin).Seconds())
}

func (b *Backend) count(op string, err error) {
	b.m.CounterPlanCalls.WithLabelValues(op, Result(err)).Inc()
}

// Result classifies a plan service error for labelling.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case planapi.IsStatus(err):
		return "status_error"
	default:
		return "transport_error"
	}
}
