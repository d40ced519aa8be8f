package codegen

import (
	"strings"

	"github.com/broady/shapegen/schema"
)

// CommentLines renders documentation as comment lines without comment
// markers. Targets with a native deprecation annotation pass native=true
// and render the note themselves; otherwise it is kept as a trailing
// "Deprecated:" paragraph so it is never lost.
func (p *Plan) CommentLines(d schema.Documentation, native bool) []string {
	var lines []string
	if p.Comments() && d.Description != "" {
		for _, l := range strings.Split(strings.TrimSpace(d.Description), "\n") {
			lines = append(lines, strings.TrimRight(l, " \t\r"))
		}
	}
	if d.Deprecated() && !native {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "Deprecated: "+d.Deprecation)
	}
	return lines
}

// Presence describes how a field appears on the wire.
type Presence struct {
	// Optional means the key may be absent.
	Optional bool

	// Nullable means the key may hold null.
	Nullable bool

	// TriState means absent, null and a value are three distinct states:
	// the field is typed std::Undefinable<T>.
	TriState bool

	// Value is the field type with one Option or Undefinable layer removed.
	Value schema.TypeReference
}

// FieldPresence applies the optionality rules: Required=false lets the key
// be absent, std::Option adds null, and std::Undefinable is tri-state
// whatever Required says. The same rules hold for fields of enum variants
// under every representation, untagged included.
func FieldPresence(f schema.Field) Presence {
	switch {
	case schema.IsUndefinable(f.Type):
		return Presence{Optional: true, Nullable: true, TriState: true, Value: f.Type.Arguments[0]}
	case schema.IsOption(f.Type):
		return Presence{Optional: !f.Required, Nullable: true, Value: f.Type.Arguments[0]}
	}
	return Presence{Optional: !f.Required, Value: f.Type}
}
