// Package builder accumulates functions and their type descriptors and
// produces a validated, immutable schema.Schema.
package builder

import (
	"log/slog"

	"github.com/broady/shapegen/schema"
)

// Types carries the descriptors a front end extracted for one function.
// Input holds the descriptors reachable from the input body and headers;
// Output those reachable from the output and error bodies.
type Types struct {
	Input  []schema.Type
	Output []schema.Type
}

// Builder collects functions and types. It is not safe for concurrent use;
// build separate schemas in separate builders.
type Builder struct {
	name        string
	description string
	logger      *slog.Logger
	prune       bool

	functions []schema.Function
	input     *schema.Typespace
	output    *schema.Typespace
	errs      BuildErrors
}

// Option configures a Builder.
type Option func(*Builder)

// WithDescription sets the schema description.
func WithDescription(d string) Option {
	return func(b *Builder) { b.description = d }
}

// WithLogger sets the logger used for debug output.
// If not set, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithPruneUnused drops descriptors that no function reaches.
func WithPruneUnused() Option {
	return func(b *Builder) { b.prune = true }
}

// New returns an empty Builder for a schema called name.
func New(name string, opts ...Option) *Builder {
	b := &Builder{
		name:   name,
		input:  schema.NewTypespace(),
		output: schema.NewTypespace(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Register adds fn and inserts its descriptors into the input and output
// typespaces. Conflicts are recorded and reported by Build.
func (b *Builder) Register(fn schema.Function, types Types) *Builder {
	b.functions = append(b.functions, fn)
	for _, t := range types.Input {
		b.insert(schema.Input, fn.Name, t)
	}
	for _, t := range types.Output {
		b.insert(schema.Output, fn.Name, t)
	}
	b.logger.Debug("registered function",
		slog.String("function", fn.Name),
		slog.Int("input_types", len(types.Input)),
		slog.Int("output_types", len(types.Output)),
	)
	return b
}

// InputType inserts a descriptor into the input typespace without a
// function, for types shared by several registrations.
func (b *Builder) InputType(t schema.Type) *Builder {
	b.insert(schema.Input, "", t)
	return b
}

// OutputType inserts a descriptor into the output typespace.
func (b *Builder) OutputType(t schema.Type) *Builder {
	b.insert(schema.Output, "", t)
	return b
}

func (b *Builder) insert(side schema.Side, fn string, t schema.Type) {
	ts := b.input
	if side == schema.Output {
		ts = b.output
	}
	if err := ts.Insert(t); err != nil {
		se, ok := err.(*schema.Error)
		if !ok {
			se = &schema.Error{Code: schema.CodeDuplicateType, TypeName: t.TypeName(), Message: err.Error()}
		}
		se.Function = fn
		se.Message = side.String() + " typespace: " + se.Message
		b.errs = append(b.errs, se)
	}
}

// Build validates everything registered and returns the finalized schema,
// or a BuildErrors holding every independent problem found.
func (b *Builder) Build() (*schema.Schema, error) {
	errs := append(BuildErrors(nil), b.errs...)

	for _, side := range []schema.Side{schema.Input, schema.Output} {
		for _, e := range b.typespace(side).Validate() {
			e.Message = side.String() + " typespace: " + e.Message
			errs = append(errs, e)
		}
	}
	errs = append(errs, b.checkFunctions()...)

	if len(errs) > 0 {
		b.logger.Debug("schema build failed", slog.String("schema", b.name), slog.Int("errors", len(errs)))
		return nil, errs
	}

	s := &schema.Schema{
		Name:        b.name,
		Description: b.description,
		Functions:   append([]schema.Function{}, b.functions...),
		InputTypes:  b.input.Clone(),
		OutputTypes: b.output.Clone(),
	}
	if b.prune {
		Prune(s)
	}
	b.logger.Debug("schema built",
		slog.String("schema", b.name),
		slog.Int("functions", len(s.Functions)),
		slog.Int("input_types", s.InputTypes.Defined()),
		slog.Int("output_types", s.OutputTypes.Defined()),
	)
	return s, nil
}

// Check validates a schema that did not come out of a Builder, such as one
// read from the interchange format. It reports the same BuildErrors as Build.
func Check(s *schema.Schema, opts ...Option) error {
	b := New(s.Name, opts...)
	b.functions = s.Functions
	if s.InputTypes != nil {
		b.input = s.InputTypes
	}
	if s.OutputTypes != nil {
		b.output = s.OutputTypes
	}
	_, err := b.Build()
	return err
}

func (b *Builder) typespace(side schema.Side) *schema.Typespace {
	if side == schema.Input {
		return b.input
	}
	return b.output
}

// checkFunctions verifies name uniqueness and that every signature
// reference resolves on the proper side with the right arity.
func (b *Builder) checkFunctions() BuildErrors {
	var errs BuildErrors
	seen := make(map[string]bool, len(b.functions))
	for _, fn := range b.functions {
		if seen[fn.Name] {
			errs = append(errs, &schema.Error{
				Code:     schema.CodeDuplicateFunctionName,
				Function: fn.Name,
				Message:  "function registered more than once",
			})
		}
		seen[fn.Name] = true

		refs := []struct {
			what string
			side schema.Side
			ref  *schema.TypeReference
		}{
			{"input", schema.Input, fn.InputType},
			{"headers", schema.Input, fn.InputHeaders},
			{"output", schema.Output, fn.OutputType},
			{"error", schema.Output, fn.ErrorType},
		}
		for _, r := range refs {
			if r.ref == nil {
				continue
			}
			for _, e := range b.typespace(r.side).CheckReference(*r.ref) {
				e.Function = fn.Name
				e.Message = r.what + " type: " + e.Message
				errs = append(errs, e)
			}
		}
	}
	return errs
}
