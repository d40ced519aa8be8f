package codegen

import (
	"strings"

	"github.com/broady/shapegen/schema"
)

// NameStyle selects how type names become identifiers.
type NameStyle string

const (
	// NameShort uses the last segment of the type name.
	NameShort NameStyle = "short"

	// NameQualified joins every segment after Options.StripPrefix.
	NameQualified NameStyle = "qualified"
)

// DefaultMaxInstances bounds monomorphization.
const DefaultMaxInstances = 4096

// Options are the target-independent generation settings.
type Options struct {
	NameStyle   NameStyle `json:"name_style" validate:"omitempty,oneof=short qualified"`
	StripPrefix string    `json:"strip_prefix"`

	// NoComments drops descriptions. Deprecation notes are always kept.
	NoComments bool `json:"no_comments"`

	// MaxInstances caps the number of concrete instantiations a
	// monomorphizing target may produce. Zero means DefaultMaxInstances.
	MaxInstances int `json:"max_instances" validate:"gte=0"`
}

func (o Options) withDefaults() Options {
	if o.NameStyle == "" {
		o.NameStyle = NameShort
	}
	if o.MaxInstances == 0 {
		o.MaxInstances = DefaultMaxInstances
	}
	return o
}

// Decl is one type declaration a target emits.
type Decl struct {
	// Name is the generated identifier.
	Name string

	// Key identifies the declaration: the instantiation key for
	// monomorphizing targets, the type name for generic ones.
	Key string

	// Ref is the reference the declaration was reached through. For
	// generic targets its arguments are empty.
	Ref schema.TypeReference

	// Type is the descriptor to render. For monomorphizing targets its
	// parameters are already substituted.
	Type schema.Type

	// Shared declarations serve both sides. Otherwise Side says which.
	Shared bool
	Side   schema.Side
}

// Serves reports whether d is used on side.
func (d *Decl) Serves(side schema.Side) bool {
	return d.Shared || d.Side == side
}

// Plan is everything a backend needs to render one schema.
type Plan struct {
	Schema   *schema.Schema
	Target   string
	Options  Options
	Generics bool

	// Root is the namespace tree of the schema's functions.
	Root *Namespace

	// Decls lists every declaration to emit: input side reach order, then
	// output-only declarations in output reach order.
	Decls []*Decl

	// Namer and Types are the target's naming rules and the scope of
	// top-level type identifiers.
	Namer *Namer
	Types *Scope

	bySide   map[schema.Side]map[string]*Decl
	warnings []Warning
}

// NewPlan computes the plan for s on a target with caps.
func NewPlan(s *schema.Schema, target string, caps Capabilities, opts Options) (*Plan, error) {
	p := &Plan{
		Schema:   s,
		Target:   target,
		Options:  opts.withDefaults(),
		Generics: caps.Generics,
		Namer:    &Namer{Target: target, Reserved: caps.Reserved, Escape: caps.Escape},
		bySide: map[schema.Side]map[string]*Decl{
			schema.Input:  {},
			schema.Output: {},
		},
	}
	p.Types = p.Namer.Scope("top-level declarations")
	p.Types.Reserve(caps.RuntimeNames...)

	if caps.RequiresJSON {
		for _, fn := range s.Functions {
			if !fn.Accepts(schema.FormatJSON) {
				return nil, &GenerationError{
					Kind:     UnsupportedConstruct,
					Target:   target,
					Function: fn.Name,
					Message:  "target requires JSON serialization",
				}
			}
		}
	}

	root, err := BuildNamespaces(s.Functions)
	if err != nil {
		return nil, p.tag(err)
	}
	p.Root = root

	in, err := p.reach(schema.Input)
	if err != nil {
		return nil, p.tag(err)
	}
	out, err := p.reach(schema.Output)
	if err != nil {
		return nil, p.tag(err)
	}
	if err := p.assemble(in, out); err != nil {
		return nil, p.tag(err)
	}
	return p, nil
}

func (p *Plan) tag(err error) error {
	if ge, ok := err.(*GenerationError); ok && ge.Target == "" {
		ge.Target = p.Target
	}
	return err
}

// Resolve returns the descriptor named name on side, or nil.
func (p *Plan) Resolve(side schema.Side, name schema.TypeName) schema.Type {
	return p.Schema.Typespace(side).Get(name)
}

// Declared reports whether t gets its own declaration. Primitives and
// well-known types are rendered inline by every target.
func Declared(t schema.Type) bool {
	return t.Kind() != schema.KindPrimitive && !schema.IsWellKnown(t.TypeName())
}

// Decl returns the declaration ref resolves to on side, or nil when the
// referenced type is rendered inline.
func (p *Plan) Decl(side schema.Side, ref schema.TypeReference) (*Decl, error) {
	t := p.Resolve(side, ref.Name)
	if t == nil {
		return nil, &GenerationError{
			Kind:     UnreachableInstantiationBug,
			Target:   p.Target,
			TypeName: ref.Name,
			Message:  "reference to a type missing from the " + side.String() + " typespace",
		}
	}
	if !Declared(t) {
		return nil, nil
	}
	d := p.bySide[side][p.key(ref)]
	if d == nil {
		return nil, &GenerationError{
			Kind:     UnreachableInstantiationBug,
			Target:   p.Target,
			TypeName: ref.Name,
			Message:  "no " + side.String() + " declaration for " + ref.Key(),
		}
	}
	return d, nil
}

func (p *Plan) key(ref schema.TypeReference) string {
	if p.Generics {
		return string(ref.Name)
	}
	return ref.Key()
}

// Comments reports whether descriptions should be rendered.
func (p *Plan) Comments() bool { return !p.Options.NoComments }

// Warn records a non-fatal issue.
func (p *Plan) Warn(code string, name schema.TypeName, msg string) {
	p.warnings = append(p.warnings, Warning{Code: code, TypeName: name, Message: msg})
}

// Warnings returns the issues recorded so far.
func (p *Plan) Warnings() []Warning {
	return append([]Warning(nil), p.warnings...)
}

// TypeIdent returns the Pascal-cased identifier for a type. Monomorphizing
// targets append the identifiers of the arguments: Paginated<Pet> becomes
// PaginatedPet.
func (p *Plan) TypeIdent(ref schema.TypeReference) string {
	var b strings.Builder
	b.WriteString(p.baseIdent(ref.Name))
	if !p.Generics {
		for _, a := range ref.Arguments {
			b.WriteString(p.argIdent(a))
		}
	}
	return b.String()
}

func (p *Plan) argIdent(ref schema.TypeReference) string {
	var b strings.Builder
	b.WriteString(p.baseIdent(ref.Name))
	for _, a := range ref.Arguments {
		b.WriteString(p.argIdent(a))
	}
	return b.String()
}

func (p *Plan) baseIdent(name schema.TypeName) string {
	if p.Options.NameStyle != NameQualified || schema.IsWellKnown(name) {
		return PascalCase(name.ShortName())
	}
	rest := strings.TrimPrefix(string(name), p.Options.StripPrefix)
	rest = strings.TrimPrefix(rest, schema.NameSeparator)
	return PascalCase(strings.ReplaceAll(rest, schema.NameSeparator, "_"))
}
