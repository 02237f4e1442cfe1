package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NumberText is a number-like value the plan service sends either as a JSON
// string ("12", "30s") or as a JSON number (12). It is only ever displayed.
type NumberText string

// UnmarshalJSON accepts a string, a number, or null.
func (n *NumberText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberText(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("number-like value: %s", data)
	}
	*n = NumberText(num.String())
	return nil
}

// MarshalJSON writes numeric text as a JSON number and anything else as a string.
func (n NumberText) MarshalJSON() ([]byte, error) {
	if n.isNumeric() {
		return []byte(n), nil
	}
	return json.Marshal(string(n))
}

func (n NumberText) String() string { return string(n) }

// Present reports whether the value is set and not zero, mirroring a
// truthiness check on the raw field.
func (n NumberText) Present() bool {
	if n == "" {
		return false
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil && f == 0 {
		return false
	}
	return true
}

// IsOne reports whether the value reads as exactly one.
func (n NumberText) IsOne() bool {
	f, err := strconv.ParseFloat(string(n), 64)
	return err == nil && f == 1
}

func (n NumberText) isNumeric() bool {
	if n == "" {
		return false
	}
	_, err := strconv.ParseFloat(string(n), 64)
	return err == nil && json.Valid([]byte(n))
}
