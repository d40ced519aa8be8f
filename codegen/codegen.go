// Package codegen is the target-independent part of client generation.
//
// A Plan is computed once per (schema, target): the namespace tree of
// functions, the reachable declarations of each side, their generated
// names, and whether each is shared between sides. Backends walk the plan
// and render source text; they never decide reachability or naming on
// their own, which keeps the output of every target consistent.
package codegen

import (
	"context"

	"github.com/broady/shapegen/schema"
)

// Target renders a Plan into files.
type Target interface {
	// Name returns the target's identifier (e.g., "typescript", "openapi").
	Name() string

	// Capabilities describes what the engine must do for this target.
	Capabilities() Capabilities

	// Emit renders the plan.
	Emit(ctx context.Context, p *Plan) (*Output, error)
}

// Capabilities describes a target to the engine.
type Capabilities struct {
	// Generics targets get one parameterized declaration per reachable
	// generic type; others get one declaration per concrete instantiation.
	Generics bool

	// RequiresJSON rejects functions that do not accept JSON.
	RequiresJSON bool

	// Reserved identifiers are escaped with Escape before use.
	Reserved map[string]bool
	Escape   func(string) string

	// RuntimeNames are top-level identifiers the generated runtime uses.
	// A schema type mapping onto one of them is a collision.
	RuntimeNames []string
}

// Output contains generation output.
type Output struct {
	// Files lists the generated files, in a deterministic order.
	Files []File

	// TypesGenerated is the count of type declarations emitted.
	TypesGenerated int

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning
}

// File is one generated file.
type File struct {
	// Path is relative and slash-separated.
	Path    string
	Content []byte
}

// Generate plans s for t and emits it.
func Generate(ctx context.Context, s *schema.Schema, t Target, opts Options) (*Output, error) {
	p, err := NewPlan(s, t.Name(), t.Capabilities(), opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := t.Emit(ctx, p)
	if err != nil {
		return nil, err
	}
	out.Warnings = append(p.Warnings(), out.Warnings...)
	return out, nil
}
