// Package schema defines the language-neutral model of an API: named type
// descriptors, the typespaces that hold them, the functions (routes) that
// reference them, and the JSON interchange format used to persist a schema
// between the front end that extracts it and the generators that consume it.
package schema

import "strings"

// NameSeparator separates the segments of a fully qualified TypeName.
const NameSeparator = "::"

// TypeName is a fully qualified identifier such as "myapi::model::Pet".
// It is the join key between function signatures and type definitions.
type TypeName string

// Segments splits the name on NameSeparator.
func (n TypeName) Segments() []string {
	return strings.Split(string(n), NameSeparator)
}

// ShortName returns the last segment of the name.
func (n TypeName) ShortName() string {
	s := string(n)
	if i := strings.LastIndex(s, NameSeparator); i >= 0 {
		return s[i+len(NameSeparator):]
	}
	return s
}

// Namespace returns every segment except the last.
func (n TypeName) Namespace() []string {
	segs := n.Segments()
	return segs[:len(segs)-1]
}

func (n TypeName) String() string { return string(n) }

// TypeReference is a usage of a named type with its generic arguments,
// e.g. std::Option<myapi::Pet>.
type TypeReference struct {
	Name      TypeName        `json:"name"`
	Arguments []TypeReference `json:"arguments,omitempty"`
}

// Ref returns a TypeReference to name with the given arguments.
func Ref(name TypeName, args ...TypeReference) TypeReference {
	return TypeReference{Name: name, Arguments: args}
}

// RefPtr is Ref returning a pointer, convenient for the optional
// references of a Function.
func RefPtr(name TypeName, args ...TypeReference) *TypeReference {
	r := Ref(name, args...)
	return &r
}

// Key returns the canonical instantiation key: the name followed by the
// argument keys in angle brackets. Two references with equal keys denote the
// same concrete type.
func (r TypeReference) Key() string {
	if len(r.Arguments) == 0 {
		return string(r.Name)
	}
	var b strings.Builder
	r.writeKey(&b)
	return b.String()
}

func (r TypeReference) writeKey(b *strings.Builder) {
	b.WriteString(string(r.Name))
	if len(r.Arguments) == 0 {
		return
	}
	b.WriteByte('<')
	for i, a := range r.Arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		a.writeKey(b)
	}
	b.WriteByte('>')
}

func (r TypeReference) String() string { return r.Key() }

// Equal reports whether r and o denote the same instantiation.
func (r TypeReference) Equal(o TypeReference) bool {
	if r.Name != o.Name || len(r.Arguments) != len(o.Arguments) {
		return false
	}
	for i := range r.Arguments {
		if !r.Arguments[i].Equal(o.Arguments[i]) {
			return false
		}
	}
	return true
}

// TypeParameter declares a generic parameter on a struct, enum or primitive.
type TypeParameter struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Params is a convenience constructor for undocumented parameters.
func Params(names ...string) []TypeParameter {
	out := make([]TypeParameter, len(names))
	for i, n := range names {
		out[i] = TypeParameter{Name: n}
	}
	return out
}

// Documentation is the description and deprecation note attached to a
// type, field, variant or function.
type Documentation struct {
	Description string
	// Deprecation is non-empty when the item is deprecated.
	Deprecation string
}

// IsZero reports whether there is nothing to render.
func (d Documentation) IsZero() bool {
	return d.Description == "" && d.Deprecation == ""
}

// Deprecated reports whether a deprecation note is present.
func (d Documentation) Deprecated() bool { return d.Deprecation != "" }
