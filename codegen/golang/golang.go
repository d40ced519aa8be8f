// Package golang renders a schema as a Go client package built on the
// shapegen client runtime. Go generics are not used for schema types:
// every instantiation becomes its own named type.
package golang

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/broady/shapegen/codegen"
)

const clientPath = "github.com/broady/shapegen/client"

// Options configures the Go target.
type Options struct {
	// Package is the package clause of the generated file. Default: "api".
	Package string `schema:"package" validate:"omitempty,alphanum"`

	// FileName is the generated file. Default: "client.go".
	FileName string `schema:"file_name" validate:"omitempty,endswith=.go"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Package: "api", FileName: "client.go"}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Package == "" {
		o.Package = d.Package
	}
	if o.FileName == "" {
		o.FileName = d.FileName
	}
	return o
}

// Target is the Go code generator.
type Target struct {
	opts Options
}

// New returns a Go target.
func New(opts Options) *Target {
	return &Target{opts: opts.withDefaults()}
}

// Name implements codegen.Target.
func (*Target) Name() string { return "go" }

// Capabilities implements codegen.Target.
func (*Target) Capabilities() codegen.Capabilities {
	return codegen.Capabilities{
		RequiresJSON: true,
		Reserved:     keywords,
		RuntimeNames: []string{"Client", "NewClient"},
	}
}

// Emit implements codegen.Target.
func (t *Target) Emit(ctx context.Context, p *codegen.Plan) (*codegen.Output, error) {
	g := &generator{plan: p, file: jen.NewFile(t.opts.Package)}
	g.file.HeaderComment("Code generated by shapegen. DO NOT EDIT.")
	g.file.ImportName(clientPath, "client")
	g.file.PackageComment(fmt.Sprintf("Package %s is a client for the %s API.", t.opts.Package, p.Schema.Name))

	for _, d := range p.Decls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := g.decl(d); err != nil {
			return nil, err
		}
	}
	if err := g.client(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := g.file.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", t.opts.FileName, err)
	}
	return &codegen.Output{
		Files:          []codegen.File{{Path: t.opts.FileName, Content: buf.Bytes()}},
		TypesGenerated: len(p.Decls),
	}, nil
}

// keywords cannot be used as identifiers.
var keywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}
