package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ComponentType is the type tag of a workout day component.
type ComponentType string

const (
	ComponentWarmup   ComponentType = "warmup"
	ComponentCooldown ComponentType = "cooldown"
	ComponentCircuit  ComponentType = "circuit"
	ComponentCardio   ComponentType = "cardio"
)

// Component is one structured block within a day. Data holds exactly one of
// Steps, Circuit, Cardio or Unknown depending on the type tag.
type Component struct {
	Type       ComponentType
	OrderIndex int
	Data       ComponentData

	raw json.RawMessage
}

// ComponentData is implemented by every component payload.
type ComponentData interface {
	componentData()
}

// Steps is the free-text instruction list of a warmup or cooldown.
type Steps []string

// Circuit is a set of exercises repeated for a number of rounds.
type Circuit struct {
	Rounds    int        `json:"rounds"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise is a single circuit entry.
type Exercise struct {
	Name string     `json:"name"`
	Reps NumberText `json:"reps"`
}

// Cardio is a steady-state activity block.
type Cardio struct {
	Type     string     `json:"type"`
	Duration NumberText `json:"duration_minutes"`
	Notes    string     `json:"notes,omitempty"`
}

// Unknown carries the payload of a component whose tag we don't render, or
// whose data did not match its tag.
type Unknown struct {
	Data json.RawMessage
}

func (Steps) componentData()   {}
func (Circuit) componentData() {}
func (Cardio) componentData()  {}
func (Unknown) componentData() {}

type componentWire struct {
	ComponentType ComponentType   `json:"component_type"`
	OrderIndex    json.RawMessage `json:"order_index,omitempty"`
	Data          json.RawMessage `json:"data"`
}

type circuitWire struct {
	Rounds    NumberText `json:"rounds"`
	Exercises []Exercise `json:"exercises"`
}

type cardioWire struct {
	Type            string     `json:"type"`
	DurationMinutes NumberText `json:"duration_minutes"`
	Duration        NumberText `json:"duration"`
	Notes           string     `json:"notes"`
}

// UnmarshalJSON dispatches on component_type. Malformed data for a known tag
// degrades to Unknown instead of failing the whole program.
func (c *Component) UnmarshalJSON(data []byte) error {
	var w componentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decoding component: %w", err)
	}

	*c = Component{
		Type:       w.ComponentType,
		OrderIndex: parseOrderIndex(w.OrderIndex),
		raw:        append(json.RawMessage(nil), data...),
	}

	switch w.ComponentType {
	case ComponentWarmup, ComponentCooldown:
		c.Data = decodeSteps(w.Data)
	case ComponentCircuit:
		var cw circuitWire
		if err := json.Unmarshal(w.Data, &cw); err != nil || isNull(w.Data) {
			c.Data = Unknown{Data: w.Data}
			return nil
		}
		rounds, err := strconv.Atoi(cw.Rounds.String())
		if err != nil || rounds < 1 {
			rounds = 1
		}
		c.Data = Circuit{Rounds: rounds, Exercises: cw.Exercises}
	case ComponentCardio:
		var cw cardioWire
		if err := json.Unmarshal(w.Data, &cw); err != nil || isNull(w.Data) {
			c.Data = Unknown{Data: w.Data}
			return nil
		}
		c.Data = Cardio{
			Type:     cw.Type,
			Duration: firstPresent(cw.DurationMinutes, cw.Duration),
			Notes:    cw.Notes,
		}
	default:
		c.Data = Unknown{Data: w.Data}
	}
	return nil
}

// MarshalJSON returns the original bytes for decoded components so the plan
// round-trips to the plan service unchanged.
func (c Component) MarshalJSON() ([]byte, error) {
	if len(c.raw) > 0 {
		return c.raw, nil
	}
	var data any
	switch d := c.Data.(type) {
	case Steps:
		data = []string(d)
	case Circuit, Cardio:
		data = d
	case Unknown:
		data = d.Data
	}
	return json.Marshal(struct {
		ComponentType ComponentType `json:"component_type"`
		OrderIndex    int           `json:"order_index"`
		Data          any           `json:"data"`
	}{c.Type, c.OrderIndex, data})
}

// decodeSteps keeps only the string entries of an array payload.
func decodeSteps(data json.RawMessage) Steps {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return Steps{}
	}
	steps := make(Steps, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			steps = append(steps, s)
		}
	}
	return steps
}

// firstPresent reconciles the two duration field names: the first one that
// is set wins.
func firstPresent(values ...NumberText) NumberText {
	for _, v := range values {
		if v.Present() {
			return v
		}
	}
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseOrderIndex(raw json.RawMessage) int {
	var n NumberText
	if err := json.Unmarshal(raw, &n); err != nil || len(raw) == 0 {
		return 0
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		return 0
	}
	return i
}

func isNull(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}
