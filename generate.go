package shapegen

import (
	"context"
	"errors"
	"log/slog"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/schema"
)

// Result reports what each target produced, in configuration order.
type Result struct {
	Targets []TargetResult
}

// TargetResult is the outcome of one target.
type TargetResult struct {
	Name string
	Dir  string

	// Files holds the generated files. Paths are relative to the sink root,
	// so they include Dir.
	Files []codegen.File

	TypesGenerated int
	Warnings       []codegen.Warning

	// Err is set when the target failed. A target that fails to emit
	// writes nothing.
	Err error
}

// Paths returns the sink-relative paths written by every successful target.
func (r *Result) Paths() []string {
	var out []string
	for _, t := range r.Targets {
		if t.Err != nil {
			continue
		}
		for _, f := range t.Files {
			out = append(out, f.Path)
		}
	}
	return out
}

// Err joins the errors of all failed targets, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, t := range r.Targets {
		if t.Err != nil {
			errs = append(errs, &TargetError{Target: t.Name, Dir: t.Dir, Err: t.Err})
		}
	}
	return errors.Join(errs...)
}

// Generate runs every configured target against s and writes their files to
// cfg.Sink.
//
// Configuration problems are returned as a *ConfigError before any target
// runs. Otherwise the returned Result always describes every target, and the
// error is Result.Err(): a failing target does not stop the others.
func Generate(ctx context.Context, s *schema.Schema, cfg Config) (*Result, error) {
	if s == nil {
		return nil, &ConfigError{Message: "schema is nil"}
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	cfg = applyConfigDefaults(cfg)
	logger := cfg.Logger

	// Options are decoded up front so that a typo fails the whole run.
	gens := make([]codegen.Target, len(cfg.Targets))
	for i, tc := range cfg.Targets {
		t, err := NewTarget(tc.Name, tc.Options...)
		if err != nil {
			return nil, err
		}
		gens[i] = t
	}

	res := &Result{Targets: make([]TargetResult, len(cfg.Targets))}
	for i, tc := range cfg.Targets {
		res.Targets[i] = TargetResult{Name: tc.Name, Dir: tc.Dir}
	}

	g := new(errgroup.Group)
	g.SetLimit(cfg.Parallelism)
	for i := range gens {
		g.Go(func() error {
			tr := &res.Targets[i]
			out, err := codegen.Generate(ctx, s, gens[i], cfg.Codegen)
			if err != nil {
				tr.Err = err
				return nil
			}
			tr.TypesGenerated = out.TypesGenerated
			tr.Warnings = out.Warnings
			tr.Files = make([]codegen.File, len(out.Files))
			for j, f := range out.Files {
				tr.Files[j] = codegen.File{Path: join(tr.Dir, f.Path), Content: f.Content}
			}
			return nil
		})
	}
	_ = g.Wait()

	claimPaths(res)

	g = new(errgroup.Group)
	g.SetLimit(cfg.Parallelism)
	for i := range res.Targets {
		tr := &res.Targets[i]
		if tr.Err != nil {
			continue
		}
		g.Go(func() error {
			for _, f := range tr.Files {
				if err := cfg.Sink.WriteFile(ctx, f.Path, f.Content); err != nil {
					tr.Err = err
					return nil
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, tr := range res.Targets {
		logTarget(logger, tr)
	}
	return res, res.Err()
}

// claimPaths fails any target that would overwrite a file an earlier target
// produces.
func claimPaths(res *Result) {
	owner := make(map[string]string)
	for i := range res.Targets {
		tr := &res.Targets[i]
		if tr.Err != nil {
			continue
		}
		for _, f := range tr.Files {
			if prev, ok := owner[f.Path]; ok {
				tr.Err = &codegen.GenerationError{
					Kind:    codegen.IdentifierCollision,
					Target:  tr.Name,
					Message: "file " + f.Path + " is also generated by target " + prev,
				}
				break
			}
		}
		if tr.Err != nil {
			continue
		}
		for _, f := range tr.Files {
			owner[f.Path] = tr.Name
		}
	}
}

func join(dir, p string) string {
	if dir == "" || dir == "." {
		return p
	}
	return path.Join(dir, p)
}

func logTarget(logger *slog.Logger, tr TargetResult) {
	for _, w := range tr.Warnings {
		logger.Warn("generation warning",
			slog.String("target", tr.Name),
			slog.String("code", w.Code),
			slog.String("type", string(w.TypeName)),
			slog.String("message", w.Message),
		)
	}
	if tr.Err != nil {
		logger.Error("target failed",
			slog.String("target", tr.Name),
			slog.Any("error", tr.Err),
		)
		return
	}
	logger.Info("target generated",
		slog.String("target", tr.Name),
		slog.String("dir", tr.Dir),
		slog.Int("files", len(tr.Files)),
		slog.Int("types", tr.TypesGenerated),
	)
}
