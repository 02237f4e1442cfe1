// Package view turns a Program into render-ready view models and renders
// them with html/template.
package view

import (
	"fmt"
	"strings"

	"github.com/claude/weeklyplan/internal/models"
)

// Context selects how a plan is presented.
type Context int

const (
	// Summary is the weekly list. Long warmups/cooldowns get an expandable
	// "show more" toggle.
	Summary Context = iota
	// Detail is the full-detail view. Long warmups/cooldowns show a static
	// "...and N more" hint with no toggle.
	Detail
)

// previewLimit is how many warmup/cooldown entries show before truncation.
const previewLimit = 3

// PlanView is a Program ready for rendering.
type PlanView struct {
	ID          int64
	Name        string
	Description string
	Days        []DayView
}

// DayView is one workout day.
type DayView struct {
	ID        int64
	DayNumber int
	Label     string
	Blocks    []Block
}

// Block is one rendered component. Exactly one of Section, Circuit or Cardio is set.
type Block struct {
	Kind    models.ComponentType
	Section *Section
	Circuit *CircuitView
	Cardio  *CardioView
}

// CircuitView is a rendered circuit.
type CircuitView struct {
	Label       string
	RoundsLabel string
	Exercises   []ExerciseView
}

// ExerciseView is one circuit line.
type ExerciseView struct {
	Name      string
	RepsLabel string
}

// CardioView is a rendered cardio block.
type CardioView struct {
	Type          string
	DurationLabel string
	Notes         string
}

// NewPlanView builds the view of p. Days and components keep their order;
// components with an unknown tag or no content are skipped.
func NewPlanView(p *models.Program, ctx Context) *PlanView {
	if p == nil {
		return nil
	}
	v := &PlanView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Days:        make([]DayView, 0, len(p.Workouts)),
	}
	for _, d := range p.Workouts {
		v.Days = append(v.Days, NewDayView(d, ctx))
	}
	return v
}

// NewDayView builds the view of a single day.
func NewDayView(d models.WorkoutDay, ctx Context) DayView {
	dv := DayView{
		ID:        d.ID,
		DayNumber: d.DayNumber,
		Label:     fmt.Sprintf("Day %d", d.DayNumber),
	}
	for i, c := range d.Components {
		if b, ok := newBlock(d.ID, i, c, ctx); ok {
			dv.Blocks = append(dv.Blocks, b)
		}
	}
	return dv
}

func newBlock(dayID int64, idx int, c models.Component, ctx Context) (Block, bool) {
	switch data := c.Data.(type) {
	case models.Steps:
		if c.Type != models.ComponentWarmup && c.Type != models.ComponentCooldown {
			return Block{}, false
		}
		s := newSection(fmt.Sprintf("d%d-c%d", dayID, idx), c.Type, data, ctx)
		if len(s.Items) == 0 {
			return Block{}, false
		}
		return Block{Kind: c.Type, Section: &s}, true
	case models.Circuit:
		return Block{Kind: c.Type, Circuit: newCircuit(c.OrderIndex, data, ctx)}, true
	case models.Cardio:
		return Block{Kind: c.Type, Cardio: &CardioView{
			Type:          data.Type,
			DurationLabel: data.Duration.String() + " mins",
			Notes:         data.Notes,
		}}, true
	default:
		return Block{}, false
	}
}

func newCircuit(orderIndex int, c models.Circuit, ctx Context) *CircuitView {
	cv := &CircuitView{
		Label:       fmt.Sprintf("Circuit %d", orderIndex),
		RoundsLabel: fmt.Sprintf("%d %s", c.Rounds, plural(ctx == Detail && c.Rounds == 1, "Round", "Rounds")),
	}
	for _, ex := range c.Exercises {
		cv.Exercises = append(cv.Exercises, ExerciseView{
			Name:      ex.Name,
			RepsLabel: ex.Reps.String() + " " + plural(ctx == Detail && ex.Reps.IsOne(), "rep", "reps"),
		})
	}
	return cv
}

func plural(one bool, singular, many string) string {
	if one {
		return singular
	}
	return many
}

// Section is a warmup or cooldown instruction list.
type Section struct {
	Key     string
	Title   string
	Items   []string
	Context Context
}

func newSection(key string, t models.ComponentType, steps models.Steps, ctx Context) Section {
	title := "Warmup"
	if t == models.ComponentCooldown {
		title = "Cooldown"
	}
	items := make([]string, 0, len(steps))
	for _, s := range steps {
		if strings.TrimSpace(s) != "" {
			items = append(items, s)
		}
	}
	return Section{Key: key, Title: title, Items: items, Context: ctx}
}

// HasMore reports whether the list is longer than the preview.
func (s Section) HasMore() bool {
	return len(s.Items) > previewLimit
}

// HiddenCount is how many entries the preview leaves out.
func (s Section) HiddenCount() int {
	if !s.HasMore() {
		return 0
	}
	return len(s.Items) - previewLimit
}

// Expandable reports whether a show-more toggle is offered. Only the summary
// context has one.
func (s Section) Expandable() bool {
	return s.Context == Summary && s.HasMore()
}

// Visible returns the entries to show. expanded only has an effect when the
// section is Expandable.
func (s Section) Visible(expanded bool) []string {
	if !s.HasMore() || (expanded && s.Expandable()) {
		return s.Items
	}
	return s.Items[:previewLimit]
}

// Rest returns the entries the preview leaves out.
func (s Section) Rest() []string {
	if !s.HasMore() {
		return nil
	}
	return s.Items[previewLimit:]
}

// MoreLabel is the toggle or hint text.
func (s Section) MoreLabel(expanded bool) string {
	if !s.HasMore() {
		return ""
	}
	if expanded && s.Expandable() {
		return "Show less"
	}
	return fmt.Sprintf("...and %d more", s.HiddenCount())
}
