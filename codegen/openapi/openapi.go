// Package openapi renders a schema as an OpenAPI 3 document. Every
// function becomes one POST operation and every reachable instantiation a
// component schema.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/schema"
)

// Version is the OpenAPI version the documents declare.
const Version = "3.0.3"

// Options configures the OpenAPI target.
type Options struct {
	// Format is "json" or "yaml". Default: "json".
	Format string `schema:"format" validate:"omitempty,oneof=json yaml"`

	// FileName is the generated file. Default: "openapi.json" or
	// "openapi.yaml" depending on Format.
	FileName string `schema:"file_name"`

	// Title defaults to the schema name. Version defaults to "0.0.0".
	Title   string `schema:"title"`
	Version string `schema:"version"`
}

// DefaultOptions returns the options used when none are given. FileName
// is left empty so that it follows Format.
func DefaultOptions() Options {
	return Options{Format: "json", Version: "0.0.0"}
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = "json"
	}
	if o.FileName == "" {
		o.FileName = "openapi." + o.Format
	}
	if o.Version == "" {
		o.Version = "0.0.0"
	}
	return o
}

// Target is the OpenAPI generator.
type Target struct {
	opts Options
}

// New returns an OpenAPI target.
func New(opts Options) *Target {
	return &Target{opts: opts.withDefaults()}
}

// Name implements codegen.Target.
func (*Target) Name() string { return "openapi" }

// Capabilities implements codegen.Target. Component schemas cannot be
// parameterized, so every instantiation is declared.
func (*Target) Capabilities() codegen.Capabilities {
	return codegen.Capabilities{}
}

// Emit implements codegen.Target.
func (t *Target) Emit(ctx context.Context, p *codegen.Plan) (*codegen.Output, error) {
	doc, err := t.Document(ctx, p)
	if err != nil {
		return nil, err
	}
	data, err := Marshal(doc, t.opts.Format)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", t.opts.FileName, err)
	}
	return &codegen.Output{
		Files:          []codegen.File{{Path: t.opts.FileName, Content: data}},
		TypesGenerated: len(p.Decls),
	}, nil
}

// Document builds the OpenAPI document for p.
func (t *Target) Document(ctx context.Context, p *codegen.Plan) (*openapi3.T, error) {
	title := t.opts.Title
	if title == "" {
		title = p.Schema.Name
	}
	b := &builder{plan: p}
	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:       title,
			Version:     t.opts.Version,
			Description: b.description(schema.Documentation{Description: p.Schema.Description}),
		},
		Components: &openapi3.Components{Schemas: openapi3.Schemas{}},
		Paths:      openapi3.NewPaths(),
	}

	for _, d := range p.Decls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := b.decl(d)
		if err != nil {
			if ge, ok := err.(*codegen.GenerationError); ok && ge.TypeName == "" {
				ge.TypeName = d.Type.TypeName()
			}
			return nil, err
		}
		doc.Components.Schemas[d.Name] = s
	}

	tags := make(map[string]bool)
	for _, fn := range p.Schema.Functions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		op, err := b.operation(fn)
		if err != nil {
			if ge, ok := err.(*codegen.GenerationError); ok && ge.Function == "" {
				ge.Function = fn.Name
			}
			return nil, err
		}
		doc.Paths.Set(fn.RoutePath(), &openapi3.PathItem{Post: op})
		for _, tag := range fn.Tags {
			tags[tag] = true
		}
	}
	names := make([]string, 0, len(tags))
	for tag := range tags {
		names = append(names, tag)
	}
	sort.Strings(names)
	for _, name := range names {
		doc.Tags = append(doc.Tags, &openapi3.Tag{Name: name})
	}
	return doc, nil
}

// Marshal encodes doc as indented JSON or as block-style YAML.
func Marshal(doc *openapi3.T, format string) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	if format != "yaml" {
		return append(data, '\n'), nil
	}
	// JSON is YAML. Resetting the styles re-encodes it in block style;
	// strings that would resolve to another type stay quoted.
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	return yaml.Marshal(&node)
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
