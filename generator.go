package shapegen

import (
	"context"
	"errors"
	"log/slog"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/schema"
	"github.com/broady/shapegen/sink"
)

// Generator provides a fluent API for code generation.
// Create with FromSchema and configure with method chaining.
//
// Example:
//
//	shapegen.FromSchema(s).
//	    Target("typescript").Option("use_interface=false").
//	    Target("go").Option("package=petstore").Dir("go").
//	    ToDir("./client")
type Generator struct {
	schema *schema.Schema
	cfg    Config
	err    error
}

// FromSchema creates a new Generator for s.
// This is the entry point for the fluent API.
func FromSchema(s *schema.Schema) *Generator {
	return &Generator{schema: s}
}

// Target adds a target. Option and Dir apply to the most recently added
// target.
func (g *Generator) Target(name string) *Generator {
	g.cfg.Targets = append(g.cfg.Targets, TargetConfig{Name: name})
	return g
}

// Option adds "key=value" options to the current target.
func (g *Generator) Option(opts ...string) *Generator {
	if t := g.current("Option"); t != nil {
		t.Options = append(t.Options, opts...)
	}
	return g
}

// Dir places the current target's files in a subdirectory.
func (g *Generator) Dir(dir string) *Generator {
	if t := g.current("Dir"); t != nil {
		t.Dir = dir
	}
	return g
}

// Codegen sets the options shared by all targets.
func (g *Generator) Codegen(opts codegen.Options) *Generator {
	g.cfg.Codegen = opts
	return g
}

// Logger sets the logger.
func (g *Generator) Logger(l *slog.Logger) *Generator {
	g.cfg.Logger = l
	return g
}

// Parallelism bounds how many targets run at once.
func (g *Generator) Parallelism(n int) *Generator {
	g.cfg.Parallelism = n
	return g
}

func (g *Generator) current(method string) *TargetConfig {
	if len(g.cfg.Targets) == 0 {
		g.err = errors.Join(g.err, &ConfigError{Message: method + " called before Target"})
		return nil
	}
	return &g.cfg.Targets[len(g.cfg.Targets)-1]
}

// Config returns the configuration built so far, without a sink.
func (g *Generator) Config() Config {
	return g.cfg
}

// ToDir generates files to the specified directory.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(dir string) (*Result, error) {
	return g.ToSink(context.Background(), sink.NewFilesystemSink(dir))
}

// ToSink generates files into out.
func (g *Generator) ToSink(ctx context.Context, out sink.OutputSink) (*Result, error) {
	if g.err != nil {
		return nil, g.err
	}
	cfg := g.cfg
	cfg.Sink = out
	return Generate(ctx, g.schema, cfg)
}

// Generate returns generated files in memory without writing to disk.
// Use ToDir() to write files to disk instead.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	return g.ToSink(ctx, sink.NewMemorySink())
}
