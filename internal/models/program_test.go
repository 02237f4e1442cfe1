package models

import (
	"encoding/json"
	"testing"
)

const ptBlock = `{
  "id": 7,
  "name": "PT Block 1",
  "description": "Four week base",
  "created_at": "2026-01-05T00:00:00Z",
  "workouts": [
    {
      "id": 11,
      "day_number": 1,
      "components": [
        {"component_type": "warmup", "order_index": 0, "data": ["Jumping jacks", "Arm circles", "", "Leg swings", "High knees"]},
        {"component_type": "circuit", "order_index": 1, "data": {"rounds": 3, "exercises": [{"name": "Push-ups", "reps": 15}, {"name": "Plank", "reps": "30s"}]}},
        {"component_type": "cardio", "order_index": 2, "data": {"type": "Run", "duration_minutes": 20, "notes": "easy pace"}},
        {"component_type": "mobility", "order_index": 3, "data": {"foo": "bar"}},
        {"component_type": "cooldown", "order_index": 4, "data": ["Stretch"]}
      ]
    },
    {"id": 12, "day_number": 2, "components": []}
  ]
}`

// TestParseProgram verifies the tagged-union decoding of every component type.
func TestParseProgram(t *testing.T) {
	p, err := ParseProgram([]byte(ptBlock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "PT Block 1" {
		t.Errorf("name = %q, want %q", p.Name, "PT Block 1")
	}
	if len(p.Workouts) != 2 {
		t.Fatalf("got %d workouts, want 2", len(p.Workouts))
	}

	comps := p.Workouts[0].Components
	if len(comps) != 5 {
		t.Fatalf("got %d components, want 5", len(comps))
	}

	steps, ok := comps[0].Data.(Steps)
	if !ok {
		t.Fatalf("warmup data = %T, want Steps", comps[0].Data)
	}
	if len(steps) != 5 {
		t.Errorf("warmup steps = %d, want 5", len(steps))
	}

	circuit, ok := comps[1].Data.(Circuit)
	if !ok {
		t.Fatalf("circuit data = %T, want Circuit", comps[1].Data)
	}
	if circuit.Rounds != 3 {
		t.Errorf("rounds = %d, want 3", circuit.Rounds)
	}
	if circuit.Exercises[0].Reps != "15" {
		t.Errorf("numeric reps = %q, want %q", circuit.Exercises[0].Reps, "15")
	}
	if circuit.Exercises[1].Reps != "30s" {
		t.Errorf("string reps = %q, want %q", circuit.Exercises[1].Reps, "30s")
	}
	if comps[1].OrderIndex != 1 {
		t.Errorf("order_index = %d, want 1", comps[1].OrderIndex)
	}

	cardio, ok := comps[2].Data.(Cardio)
	if !ok {
		t.Fatalf("cardio data = %T, want Cardio", comps[2].Data)
	}
	if cardio.Type != "Run" || cardio.Duration != "20" || cardio.Notes != "easy pace" {
		t.Errorf("cardio = %+v", cardio)
	}

	if _, ok := comps[3].Data.(Unknown); !ok {
		t.Errorf("unknown type data = %T, want Unknown", comps[3].Data)
	}
	if _, ok := comps[4].Data.(Steps); !ok {
		t.Errorf("cooldown data = %T, want Steps", comps[4].Data)
	}
}

// TestCardioDurationFirstPresentWins verifies the duration_minutes/duration reconciliation.
func TestCardioDurationFirstPresentWins(t *testing.T) {
	tests := []struct {
		name string
		data string
		want NumberText
	}{
		{"minutes only", `{"type":"Row","duration_minutes":15}`, "15"},
		{"duration only", `{"type":"Row","duration":"25"}`, "25"},
		{"both set", `{"type":"Row","duration_minutes":10,"duration":30}`, "10"},
		{"minutes zero falls through", `{"type":"Row","duration_minutes":0,"duration":30}`, "30"},
		{"minutes null", `{"type":"Row","duration_minutes":null,"duration":12}`, "12"},
		{"neither", `{"type":"Row"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Component
			raw := `{"component_type":"cardio","data":` + tt.data + `}`
			if err := json.Unmarshal([]byte(raw), &c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			cardio, ok := c.Data.(Cardio)
			if !ok {
				t.Fatalf("data = %T, want Cardio", c.Data)
			}
			if cardio.Duration != tt.want {
				t.Errorf("duration = %q, want %q", cardio.Duration, tt.want)
			}
		})
	}
}

// TestMalformedComponentDegrades verifies that bad data for a known tag does
// not fail the whole program.
func TestMalformedComponentDegrades(t *testing.T) {
	var c Component
	if err := json.Unmarshal([]byte(`{"component_type":"circuit","data":"oops"}`), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Data.(Unknown); !ok {
		t.Errorf("data = %T, want Unknown", c.Data)
	}

	if err := json.Unmarshal([]byte(`{"component_type":"warmup","data":null}`), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if steps, ok := c.Data.(Steps); !ok || len(steps) != 0 {
		t.Errorf("null warmup = %#v, want empty Steps", c.Data)
	}
}

// TestCircuitRoundsClamped verifies that a missing or zero round count reads as one.
func TestCircuitRoundsClamped(t *testing.T) {
	var c Component
	if err := json.Unmarshal([]byte(`{"component_type":"circuit","data":{"rounds":0,"exercises":[]}}`), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Data.(Circuit).Rounds; got != 1 {
		t.Errorf("rounds = %d, want 1", got)
	}
}

// TestProgramRoundTrip verifies that a decoded program is sent back byte for
// byte, including fields the client doesn't model.
func TestProgramRoundTrip(t *testing.T) {
	p, err := ParseProgram([]byte(ptBlock))
	if err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(AdaptRequest{CurrentPlan: p, UserRequest: "remove barbell exercises"})
	if err != nil {
		t.Fatal(err)
	}

	var back struct {
		CurrentPlan map[string]any `json:"current_plan"`
		UserRequest string         `json:"user_request"`
	}
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back.CurrentPlan["created_at"] != "2026-01-05T00:00:00Z" {
		t.Errorf("created_at dropped: %v", back.CurrentPlan["created_at"])
	}
	if back.UserRequest != "remove barbell exercises" {
		t.Errorf("user_request = %q", back.UserRequest)
	}
}

// TestParseProgramRejectsNonObject verifies that null or array bodies are not
// treated as a program.
func TestParseProgramRejectsNonObject(t *testing.T) {
	for _, body := range []string{`null`, `[]`, `"x"`, `{`} {
		if _, err := ParseProgram([]byte(body)); err == nil {
			t.Errorf("ParseProgram(%s) = nil error, want error", body)
		}
	}
}

// TestBuiltComponentMarshal verifies components built in code marshal to the wire shape.
func TestBuiltComponentMarshal(t *testing.T) {
	c := Component{Type: ComponentCardio, OrderIndex: 2, Data: Cardio{Type: "Bike", Duration: "45"}}
	out, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}

	var back Component
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	cardio := back.Data.(Cardio)
	if cardio.Type != "Bike" || cardio.Duration != "45" {
		t.Errorf("cardio = %+v", cardio)
	}
}

func TestNumberText(t *testing.T) {
	var n NumberText
	if err := json.Unmarshal([]byte(`1`), &n); err != nil || !n.IsOne() {
		t.Errorf("1 -> %q, IsOne=%v, err=%v", n, n.IsOne(), err)
	}
	if err := json.Unmarshal([]byte(`"1"`), &n); err != nil || !n.IsOne() {
		t.Errorf(`"1" -> %q, IsOne=%v, err=%v`, n, n.IsOne(), err)
	}
	if err := json.Unmarshal([]byte(`true`), &n); err == nil {
		t.Error("expected error for boolean")
	}
	out, _ := json.Marshal(NumberText("12"))
	if string(out) != "12" {
		t.Errorf("marshal 12 = %s", out)
	}
	out, _ = json.Marshal(NumberText("AMRAP"))
	if string(out) != `"AMRAP"` {
		t.Errorf("marshal AMRAP = %s", out)
	}
}
