package view

import (
	"html/template"

	"github.com/claude/weeklyplan/internal/models"
)

// Base is shared by every page.
type Base struct {
	Title     string
	CSRFField template.HTML
}

// WeeklyPage is the weekly plan list.
type WeeklyPage struct {
	Base
	Plan     *PlanView
	Loading  bool
	ArmedID  int64
	HasArmed bool
	// Alert is a blocking message from a failed action.
	Alert string
}

// IsArmed reports whether the day is awaiting delete confirmation.
func (p WeeklyPage) IsArmed(dayID int64) bool {
	return p.HasArmed && p.ArmedID == dayID
}

// Subtitle is the header line under "Weekly Plan".
func (p WeeklyPage) Subtitle() string {
	if p.Plan == nil {
		return "No Active Mission"
	}
	return p.Plan.Name
}

// FullPlanPage is the full-detail view of the whole program.
type FullPlanPage struct {
	Base
	Plan *PlanView
}

// DayPage is the detail view of one workout day.
type DayPage struct {
	Base
	ProgramName string
	Day         DayView
}

// AdaptPage is the adaptation chat modal.
type AdaptPage struct {
	Base
	ProgramName string
	Messages    []models.Message
	Busy        bool
}
