package codegen

import (
	"fmt"
	"strings"

	"github.com/broady/shapegen/schema"
)

// ErrorKind classifies generation failures.
type ErrorKind string

const (
	// UnsupportedConstruct means the target cannot express a schema construct.
	UnsupportedConstruct ErrorKind = "unsupported_construct"

	// IdentifierCollision means two distinct schema identifiers map to the
	// same generated identifier in one scope.
	IdentifierCollision ErrorKind = "identifier_collision"

	// UnreachableInstantiationBug means a backend asked for a declaration
	// the reachability pass did not produce. It indicates a bug in the
	// engine or the backend, never in the schema.
	UnreachableInstantiationBug ErrorKind = "unreachable_instantiation_bug"
)

// GenerationError is fatal for one target only.
type GenerationError struct {
	Kind     ErrorKind
	Target   string
	TypeName schema.TypeName
	Function string
	Message  string
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	if e.Target != "" {
		b.WriteString(e.Target)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Function != "" {
		b.WriteString(": function ")
		b.WriteString(e.Function)
	}
	if e.TypeName != "" {
		b.WriteString(": type ")
		b.WriteString(string(e.TypeName))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is matches by Kind, so errors.Is(err, &GenerationError{Kind: k}) works.
func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	return ok && t.Kind == e.Kind
}

// Unsupported returns an UnsupportedConstruct error for the named type.
func Unsupported(target string, name schema.TypeName, format string, args ...any) *GenerationError {
	return &GenerationError{
		Kind:     UnsupportedConstruct,
		Target:   target,
		TypeName: name,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Warning is a non-fatal issue encountered during generation.
type Warning struct {
	Code     string
	TypeName schema.TypeName
	Message  string
}
