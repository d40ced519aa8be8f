package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/broady/shapegen"
	"github.com/broady/shapegen/builder"
	"github.com/broady/shapegen/schema"
	"github.com/broady/shapegen/sink"
)

// TargetFlags are shared by generate and check.
type TargetFlags struct {
	Schema string   `help:"Schema file in the interchange format." short:"s" type:"path"`
	Out    string   `help:"Output directory." type:"path"`
	Target []string `help:"Target to generate: typescript, go or openapi. Repeatable; replaces the configured targets." short:"t"`
	Option []string `help:"Target option as key=value, or target:key=value to apply it to one target. Repeatable." short:"o" sep:"none"`
}

type GenerateCmd struct {
	TargetFlags `embed:""`
}

func (c *GenerateCmd) Run(ctx context.Context, e *env) error {
	s, err := c.readSchema(e)
	if err != nil {
		return err
	}
	cfg, err := e.config.generateConfig(c.Target, c.Option)
	if err != nil {
		return err
	}
	out := c.out(e)
	if out == "" {
		return errors.New("no output directory: pass --out or set out in the config file")
	}
	cfg.Sink = sink.NewFilesystemSink(out)
	cfg.Logger = e.logger

	res, err := shapegen.Generate(ctx, s, cfg)
	if res != nil {
		for _, p := range res.Paths() {
			fmt.Fprintln(e.stdout, filepath.Join(out, filepath.FromSlash(p)))
		}
	}
	return err
}

func (f *TargetFlags) out(e *env) string {
	if f.Out != "" {
		return f.Out
	}
	return e.config.Out
}

// readSchema loads and validates the schema named by --schema or the config
// file.
func (f *TargetFlags) readSchema(e *env) (*schema.Schema, error) {
	p := f.Schema
	if p == "" {
		p = e.config.Schema
	}
	if p == "" {
		return nil, errors.New("no schema: pass --schema or set schema in the config file")
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	s, err := schema.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if err := builder.Check(s, builder.WithLogger(e.logger)); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return s, nil
}
