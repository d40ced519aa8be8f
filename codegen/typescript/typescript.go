// Package typescript renders a schema as a TypeScript client with native
// generics: interfaces and tagged unions for the types, and a namespaced
// client object over a pluggable transport.
package typescript

import (
	"bytes"
	"context"
	_ "embed"

	"github.com/broady/shapegen/codegen"
)

//go:embed runtime.ts
var runtimeSource string

// runtimeNames are declared by runtime.ts and the client section.
var runtimeNames = []string{
	"Undefinable", "Metadata", "TransportResponse", "Transport", "FetchTransport",
	"Err", "Result", "Client", "client", "__request", "encodeHeaders",
}

// Options configures the TypeScript target.
type Options struct {
	// FileName is the generated module. Default: "generated.ts".
	FileName string `schema:"file_name" validate:"omitempty,endswith=.ts"`

	// RuntimeFile writes the runtime to runtime.ts and imports it,
	// instead of inlining it into the generated module.
	RuntimeFile bool `schema:"runtime_file"`

	// UseInterface prefers 'interface' over 'type' where possible.
	UseInterface bool `schema:"use_interface"`

	// UseReadonlyArrays uses 'readonly T[]' instead of 'T[]'.
	UseReadonlyArrays bool `schema:"readonly_arrays"`

	// UnknownType renders std::Json and primitives without a fallback.
	// One of "unknown" (default) or "any".
	UnknownType string `schema:"unknown_type" validate:"omitempty,oneof=unknown any"`

	// IndentSize is the number of spaces per indent level. Default: 2.
	IndentSize int `schema:"indent_size" validate:"gte=0,lte=8"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		FileName:     "generated.ts",
		UseInterface: true,
		UnknownType:  "unknown",
		IndentSize:   2,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FileName == "" {
		o.FileName = d.FileName
	}
	if o.UnknownType == "" {
		o.UnknownType = d.UnknownType
	}
	if o.IndentSize == 0 {
		o.IndentSize = d.IndentSize
	}
	return o
}

// Target is the TypeScript code generator.
type Target struct {
	opts Options
}

// New returns a TypeScript target.
func New(opts Options) *Target {
	return &Target{opts: opts.withDefaults()}
}

// Name implements codegen.Target.
func (*Target) Name() string { return "typescript" }

// Capabilities implements codegen.Target.
func (*Target) Capabilities() codegen.Capabilities {
	return codegen.Capabilities{
		Generics:     true,
		RequiresJSON: true,
		Reserved:     reserved(),
		Escape:       func(s string) string { return s + "_" },
		RuntimeNames: runtimeNames,
	}
}

// Emit implements codegen.Target.
func (t *Target) Emit(ctx context.Context, p *codegen.Plan) (*codegen.Output, error) {
	e := newEmitter(p, t.opts)

	var buf bytes.Buffer
	if err := e.emitModule(ctx, &buf); err != nil {
		return nil, err
	}

	out := &codegen.Output{TypesGenerated: len(p.Decls)}
	out.Files = append(out.Files, codegen.File{Path: t.opts.FileName, Content: buf.Bytes()})
	if t.opts.RuntimeFile {
		out.Files = append(out.Files, codegen.File{Path: e.runtimePath(), Content: []byte(header + "\n" + runtimeSource)})
	}
	return out, nil
}
