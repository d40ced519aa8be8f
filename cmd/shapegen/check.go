package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/broady/shapegen"
	"github.com/broady/shapegen/sink"
)

type CheckCmd struct {
	TargetFlags `embed:""`
}

// Run validates the schema. When targets are configured it also runs them
// in memory, and when an output directory is known it fails if any
// generated file there is missing or out of date.
func (c *CheckCmd) Run(ctx context.Context, e *env) error {
	s, err := c.readSchema(e)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "✓ %d functions, %d input types, %d output types\n",
		len(s.Functions), s.InputTypes.Defined(), s.OutputTypes.Defined())

	if len(c.Target) == 0 && len(e.config.Targets) == 0 {
		return nil
	}
	cfg, err := e.config.generateConfig(c.Target, c.Option)
	if err != nil {
		return err
	}
	cfg.Logger = e.logger

	out := c.out(e)
	var compare *sink.CompareSink
	if out != "" {
		compare = sink.NewCompareSink(out)
		cfg.Sink = compare
	} else {
		cfg.Sink = sink.NewMemorySink()
	}

	res, err := shapegen.Generate(ctx, s, cfg)
	if res != nil {
		for _, tr := range res.Targets {
			if tr.Err == nil {
				fmt.Fprintf(e.stdout, "✓ %s: %d files, %d types\n", tr.Name, len(tr.Files), tr.TypesGenerated)
			}
		}
	}
	if err != nil {
		return err
	}

	if compare == nil {
		return nil
	}
	stale := compare.Stale()
	for _, p := range stale {
		fmt.Fprintf(e.stdout, "✗ %s is out of date\n", filepath.Join(out, filepath.FromSlash(p)))
	}
	if len(stale) > 0 {
		return fmt.Errorf("%d generated files are out of date; run shapegen generate", len(stale))
	}
	fmt.Fprintln(e.stdout, "✓ generated files are up to date")
	return nil
}
