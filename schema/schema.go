package schema

import "encoding/json"

// Schema is the finalized description of an API: its functions and the
// input and output typespaces they reference. The two typespaces may hold
// different definitions under the same name, because a concept often needs
// different fields or optionality depending on direction.
//
// A Schema produced by the builder is never mutated afterwards;
// generators only read it.
type Schema struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Functions   []Function `json:"functions"`
	InputTypes  *Typespace `json:"input_types"`
	OutputTypes *Typespace `json:"output_types"`
}

// Side selects one of the two typespaces.
type Side int

const (
	Input Side = iota
	Output
)

// String returns "input" or "output".
func (s Side) String() string {
	if s == Input {
		return "input"
	}
	return "output"
}

// Typespace returns the typespace for side.
func (s *Schema) Typespace(side Side) *Typespace {
	if side == Input {
		return s.InputTypes
	}
	return s.OutputTypes
}

// Function looks up a function by name. Returns nil if not found.
func (s *Schema) Function(name string) *Function {
	for i := range s.Functions {
		if s.Functions[i].Name == name {
			return &s.Functions[i]
		}
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler, seeding missing typespaces.
func (s *Schema) UnmarshalJSON(data []byte) error {
	type alias Schema
	aux := (*alias)(s)
	aux.InputTypes = NewTypespace()
	aux.OutputTypes = NewTypespace()
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if aux.Functions == nil {
		aux.Functions = []Function{}
	}
	return nil
}
