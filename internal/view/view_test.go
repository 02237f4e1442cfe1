package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/claude/weeklyplan/internal/models"
)

func warmup(items ...string) models.Component {
	return models.Component{Type: models.ComponentWarmup, OrderIndex: 0, Data: models.Steps(items)}
}

func scenarioProgram() *models.Program {
	return &models.Program{ID: 7, Name: "PT Block 1", Description: "Four weeks", Workouts: []models.WorkoutDay{
		{ID: 1, DayNumber: 1, Components: []models.Component{
			{Type: models.ComponentCardio, OrderIndex: 1, Data: models.Cardio{Type: "Run", Duration: "20"}},
		}},
	}}
}

func TestPlanViewScenario(t *testing.T) {
	v := NewPlanView(scenarioProgram(), Summary)
	if v == nil || v.Name != "PT Block 1" {
		t.Fatalf("plan view = %+v", v)
	}
	if len(v.Days) != 1 {
		t.Fatalf("days = %d, want 1", len(v.Days))
	}
	d := v.Days[0]
	if d.Label != "Day 1" {
		t.Errorf("label = %q, want %q", d.Label, "Day 1")
	}
	if len(d.Blocks) != 1 || d.Blocks[0].Cardio == nil {
		t.Fatalf("blocks = %+v", d.Blocks)
	}
	c := d.Blocks[0].Cardio
	if c.Type != "Run" || c.DurationLabel != "20 mins" {
		t.Errorf("cardio = %+v", c)
	}
}

func TestNilProgram(t *testing.T) {
	if v := NewPlanView(nil, Summary); v != nil {
		t.Errorf("NewPlanView(nil) = %+v, want nil", v)
	}
}

func TestSectionTruncation(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	sum := newSection("k", models.ComponentWarmup, items, Summary)
	if !sum.Expandable() {
		t.Error("summary section with 5 items should be expandable")
	}
	if got := sum.Visible(false); len(got) != 3 {
		t.Errorf("collapsed visible = %v", got)
	}
	if got := sum.Visible(true); len(got) != 5 {
		t.Errorf("expanded visible = %v", got)
	}
	if got := sum.MoreLabel(false); got != "...and 2 more" {
		t.Errorf("collapsed label = %q", got)
	}
	if got := sum.MoreLabel(true); got != "Show less" {
		t.Errorf("expanded label = %q", got)
	}

	det := newSection("k", models.ComponentCooldown, items, Detail)
	if det.Title != "Cooldown" {
		t.Errorf("title = %q", det.Title)
	}
	if det.Expandable() {
		t.Error("detail section should not be expandable")
	}
	if got := det.Visible(true); len(got) != 3 {
		t.Errorf("detail visible = %v, want 3 entries", got)
	}
	if got := det.MoreLabel(true); got != "...and 2 more" {
		t.Errorf("detail label = %q", got)
	}
}

func TestSectionShortList(t *testing.T) {
	s := newSection("k", models.ComponentWarmup, []string{"a", "", "  ", "b", "c"}, Summary)
	if len(s.Items) != 3 {
		t.Fatalf("items = %v, want blanks dropped", s.Items)
	}
	if s.HasMore() || s.Expandable() || s.MoreLabel(false) != "" || s.Rest() != nil {
		t.Errorf("three-item section should not truncate: %+v", s)
	}
}

func TestEmptyAndUnknownComponentsSkipped(t *testing.T) {
	d := models.WorkoutDay{ID: 3, DayNumber: 2, Components: []models.Component{
		warmup(),
		warmup("", " "),
		{Type: "mobility", Data: models.Unknown{}},
		{Type: models.ComponentCircuit, Data: models.Unknown{}},
		{Type: models.ComponentCircuit, OrderIndex: 2, Data: models.Circuit{Rounds: 3, Exercises: []models.Exercise{{Name: "Push-ups", Reps: "10"}}}},
	}}
	dv := NewDayView(d, Summary)
	if len(dv.Blocks) != 1 || dv.Blocks[0].Circuit == nil {
		t.Fatalf("blocks = %+v, want only the circuit", dv.Blocks)
	}
	c := dv.Blocks[0].Circuit
	if c.Label != "Circuit 2" || c.RoundsLabel != "3 Rounds" {
		t.Errorf("circuit = %+v", c)
	}
	if c.Exercises[0].RepsLabel != "10 reps" {
		t.Errorf("reps = %q", c.Exercises[0].RepsLabel)
	}
}

func TestSingularLabelsInDetail(t *testing.T) {
	c := models.Circuit{Rounds: 1, Exercises: []models.Exercise{{Name: "Pull-up", Reps: "1"}, {Name: "Burpee", Reps: "AMRAP"}}}

	tests := []struct {
		ctx        Context
		rounds     string
		firstReps  string
		secondReps string
	}{
		{Summary, "1 Rounds", "1 reps", "AMRAP reps"},
		{Detail, "1 Round", "1 rep", "AMRAP reps"},
	}
	for _, tt := range tests {
		cv := newCircuit(1, c, tt.ctx)
		if cv.RoundsLabel != tt.rounds {
			t.Errorf("ctx %d rounds = %q, want %q", tt.ctx, cv.RoundsLabel, tt.rounds)
		}
		if cv.Exercises[0].RepsLabel != tt.firstReps || cv.Exercises[1].RepsLabel != tt.secondReps {
			t.Errorf("ctx %d reps = %+v", tt.ctx, cv.Exercises)
		}
	}
}

func TestWeeklyPageSubtitle(t *testing.T) {
	if got := (WeeklyPage{}).Subtitle(); got != "No Active Mission" {
		t.Errorf("empty subtitle = %q", got)
	}
	p := WeeklyPage{Plan: NewPlanView(scenarioProgram(), Summary), ArmedID: 1, HasArmed: true}
	if got := p.Subtitle(); got != "PT Block 1" {
		t.Errorf("subtitle = %q", got)
	}
	if !p.IsArmed(1) || p.IsArmed(2) {
		t.Error("IsArmed mismatch")
	}
}

func render(t *testing.T, name string, data any) string {
	t.Helper()
	tmpl, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Render(&buf, name, data); err != nil {
		t.Fatalf("Render(%s): %v", name, err)
	}
	return buf.String()
}

func TestRenderWeeklyPage(t *testing.T) {
	p := scenarioProgram()
	p.Workouts[0].Components = append(p.Workouts[0].Components, warmup("one", "two", "three", "four", "five"))
	out := render(t, "weekly_plan.html", WeeklyPage{
		Base: Base{Title: "Weekly Plan"},
		Plan: NewPlanView(p, Summary),
	})
	for _, want := range []string{"Day 1", "Run", "20 mins", "...and 2 more", "Show less", "<details"} {
		if !strings.Contains(out, want) {
			t.Errorf("weekly page missing %q", want)
		}
	}
	if strings.Contains(out, "No Active Plan") {
		t.Error("empty state rendered alongside a plan")
	}
}

func TestRenderWeeklyPageArmed(t *testing.T) {
	out := render(t, "weekly_plan.html", WeeklyPage{
		Plan:     NewPlanView(scenarioProgram(), Summary),
		ArmedID:  1,
		HasArmed: true,
		Alert:    "Failed to delete workout",
	})
	for _, want := range []string{"Sure?", "/weekly-plan/days/1/delete", "/weekly-plan/days/1/cancel", "Failed to delete workout"} {
		if !strings.Contains(out, want) {
			t.Errorf("armed page missing %q", want)
		}
	}
}

func TestRenderEmptyState(t *testing.T) {
	out := render(t, "weekly_plan.html", WeeklyPage{})
	if !strings.Contains(out, "No Active Plan") || !strings.Contains(out, "No Active Mission") {
		t.Errorf("empty state missing:\n%s", out)
	}
}

func TestRenderFullPlanHasNoToggle(t *testing.T) {
	p := scenarioProgram()
	p.Workouts[0].Components = append(p.Workouts[0].Components, warmup("one", "two", "three", "four"))
	out := render(t, "plan_full.html", FullPlanPage{Plan: NewPlanView(p, Detail)})
	if !strings.Contains(out, "...and 1 more") {
		t.Error("detail hint missing")
	}
	if strings.Contains(out, "<details") || strings.Contains(out, "Show less") {
		t.Error("detail view should not offer a toggle")
	}
}

func TestRenderDayPage(t *testing.T) {
	p := scenarioProgram()
	out := render(t, "day.html", DayPage{ProgramName: p.Name, Day: NewDayView(p.Workouts[0], Detail)})
	if !strings.Contains(out, "Day 1") || !strings.Contains(out, "20 mins") {
		t.Errorf("day page:\n%s", out)
	}
}

func TestRenderAdaptPage(t *testing.T) {
	out := render(t, "adapt.html", AdaptPage{
		ProgramName: "PT Block 1",
		Messages: []models.Message{
			{Role: models.RoleAssistant, Text: "Use **dumbbells**"},
			{Role: models.RoleUser, Text: "<b>no barbell</b>"},
		},
		Busy: true,
	})
	if !strings.Contains(out, "<strong>dumbbells</strong>") {
		t.Error("assistant markdown not rendered")
	}
	if strings.Contains(out, "<b>no barbell</b>") {
		t.Error("user text not escaped")
	}
	if !strings.Contains(out, "Adapting plan...") || !strings.Contains(out, "disabled") {
		t.Error("busy state not shown")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	tmpl, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := tmpl.Render(&bytes.Buffer{}, "nope.html", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}
