package models

import (
	"encoding/json"
	"fmt"
)

// Program is a user's full multi-day workout plan as returned by the plan service.
// It is read-only on the client: a cached copy is replaced wholesale on every
// fetch or successful adaptation.
type Program struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Workouts    []WorkoutDay `json:"workouts"`

	// raw keeps the body exactly as received so the plan can be sent back to
	// the adaptation endpoint without dropping fields we don't model.
	raw json.RawMessage
}

// WorkoutDay is one scheduled day within a Program.
type WorkoutDay struct {
	ID         int64       `json:"id"`
	DayNumber  int         `json:"day_number"`
	Components []Component `json:"components"`
}

// programWire avoids recursing into Program.UnmarshalJSON.
type programWire struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Workouts    []WorkoutDay `json:"workouts"`
}

// UnmarshalJSON decodes a Program and remembers the original bytes.
func (p *Program) UnmarshalJSON(data []byte) error {
	var w programWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decoding program: %w", err)
	}
	*p = Program{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Workouts:    w.Workouts,
		raw:         append(json.RawMessage(nil), data...),
	}
	if p.Workouts == nil {
		p.Workouts = []WorkoutDay{}
	}
	return nil
}

// MarshalJSON returns the original body when the Program came off the wire.
func (p Program) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	workouts := p.Workouts
	if workouts == nil {
		workouts = []WorkoutDay{}
	}
	return json.Marshal(programWire{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Workouts:    workouts,
	})
}

// Day returns the workout day with the given ID.
func (p *Program) Day(id int64) (WorkoutDay, bool) {
	if p == nil {
		return WorkoutDay{}, false
	}
	for _, d := range p.Workouts {
		if d.ID == id {
			return d, true
		}
	}
	return WorkoutDay{}, false
}

// ParseProgram decodes a plan service response body.
// A body that is valid JSON but not an object (e.g. null) is rejected.
func ParseProgram(body []byte) (*Program, error) {
	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, fmt.Errorf("decoding program: expected object, got %T", probe)
	}
	var p Program
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
