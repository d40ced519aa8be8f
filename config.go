package shapegen

import (
	"log/slog"
	"runtime"
	"slices"

	"github.com/broady/shapegen/codegen"
	"github.com/broady/shapegen/sink"
)

// Config holds the configuration for a Generate call.
type Config struct {
	// Targets lists the generators to run. Each target runs independently:
	// one failing target does not prevent the others from writing output.
	Targets []TargetConfig `validate:"required,min=1,dive"`

	// Codegen configures naming, comments and instantiation limits. It is
	// shared by every target.
	Codegen codegen.Options

	// Sink receives the generated files.
	Sink sink.OutputSink `validate:"required"`

	// Parallelism bounds how many targets are emitted at once.
	// Default: runtime.GOMAXPROCS(0).
	Parallelism int `validate:"gte=0"`

	// Logger receives progress and warnings.
	// If not set, slog.Default() is used.
	Logger *slog.Logger `validate:"-"`
}

// TargetConfig selects one target.
type TargetConfig struct {
	// Name is "typescript", "go" or "openapi".
	Name string `validate:"required,oneof=typescript go openapi"`

	// Dir is a slash-separated directory, relative to the sink root, that
	// the target's files are written under. Empty means the sink root.
	Dir string

	// Options are "key=value" pairs decoded into the target's options
	// struct. A bare "key" means "key=true".
	// e.g. []string{"file_name=api.ts", "runtime_file"}
	Options []string
}

func applyConfigDefaults(cfg Config) Config {
	if cfg.Parallelism == 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// validateConfig checks the configuration before anything is planned.
func validateConfig(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return configError("", err)
	}
	seen := make(map[string]int, len(cfg.Targets))
	for i, t := range cfg.Targets {
		if t.Dir != "" && t.Dir != "." {
			if err := sink.ValidatePath(t.Dir); err != nil {
				return &ConfigError{Target: t.Name, Message: "dir: " + err.Error()}
			}
		}
		key := t.Name + "\x00" + t.Dir
		if j, ok := seen[key]; ok && slices.Equal(cfg.Targets[j].Options, t.Options) {
			return &ConfigError{Target: t.Name, Message: "configured twice for the same directory"}
		}
		seen[key] = i
	}
	return nil
}
