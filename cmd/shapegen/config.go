package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/broady/shapegen"
	"github.com/broady/shapegen/codegen"
)

// defaultConfigName is looked up in the working directory when --config is
// not given. A missing default file is not an error.
const defaultConfigName = "shapegen"

// fileConfig is the shape of shapegen.yaml.
//
//	schema: api/schema.json
//	out: client
//	log_level: info
//	codegen:
//	  name_style: short
//	targets:
//	  - name: typescript
//	    options:
//	      runtime_file: true
//	  - name: openapi
//	    dir: docs
//	    options:
//	      format: yaml
type fileConfig struct {
	Schema      string         `mapstructure:"schema"`
	Out         string         `mapstructure:"out"`
	LogLevel    string         `mapstructure:"log_level"`
	Parallelism int            `mapstructure:"parallelism"`
	Codegen     codegenConfig  `mapstructure:"codegen"`
	Targets     []targetConfig `mapstructure:"targets"`
}

type codegenConfig struct {
	NameStyle    string `mapstructure:"name_style"`
	StripPrefix  string `mapstructure:"strip_prefix"`
	NoComments   bool   `mapstructure:"no_comments"`
	MaxInstances int    `mapstructure:"max_instances"`
}

type targetConfig struct {
	Name    string            `mapstructure:"name"`
	Dir     string            `mapstructure:"dir"`
	Options map[string]string `mapstructure:"options"`
}

// loadConfig reads the config file at path, or shapegen.yaml in the working
// directory when path is empty. SHAPEGEN_SCHEMA, SHAPEGEN_OUT,
// SHAPEGEN_LOG_LEVEL and SHAPEGEN_PARALLELISM override the file.
func loadConfig(path string) (fileConfig, string, error) {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetEnvPrefix("SHAPEGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"schema", "out", "log_level", "parallelism"} {
		if err := v.BindEnv(key); err != nil {
			return fileConfig{}, "", err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	var fc fileConfig
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return fc, "", fmt.Errorf("read config: %w", err)
		}
	}
	if err := v.Unmarshal(&fc); err != nil {
		return fc, "", fmt.Errorf("decode config %s: %w", v.ConfigFileUsed(), err)
	}
	return fc, v.ConfigFileUsed(), nil
}

// newLogger returns a text logger at the named level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// generateConfig merges the config file with command line flags. Targets
// named on the command line replace the configured ones. Options are
// "key=value" for every target or "target:key=value" for one.
func (fc fileConfig) generateConfig(targets, options []string) (shapegen.Config, error) {
	cfg := shapegen.Config{
		Codegen: codegen.Options{
			NameStyle:    codegen.NameStyle(fc.Codegen.NameStyle),
			StripPrefix:  fc.Codegen.StripPrefix,
			NoComments:   fc.Codegen.NoComments,
			MaxInstances: fc.Codegen.MaxInstances,
		},
		Parallelism: fc.Parallelism,
	}

	if len(targets) > 0 {
		for _, name := range targets {
			cfg.Targets = append(cfg.Targets, shapegen.TargetConfig{Name: name})
		}
	} else {
		for _, t := range fc.Targets {
			tc := shapegen.TargetConfig{Name: t.Name, Dir: t.Dir}
			for _, k := range slices.Sorted(maps.Keys(t.Options)) {
				tc.Options = append(tc.Options, k+"="+t.Options[k])
			}
			cfg.Targets = append(cfg.Targets, tc)
		}
	}
	if len(cfg.Targets) == 0 {
		return cfg, errors.New("no targets: pass --target or list targets in the config file")
	}

	for _, opt := range options {
		scope, kv := "", opt
		if name, rest, ok := strings.Cut(opt, ":"); ok && !strings.Contains(name, "=") {
			scope, kv = name, rest
		}
		matched := false
		for i := range cfg.Targets {
			if scope == "" || cfg.Targets[i].Name == scope {
				cfg.Targets[i].Options = append(cfg.Targets[i].Options, kv)
				matched = true
			}
		}
		if !matched {
			return cfg, fmt.Errorf("option %q: no target named %s", opt, scope)
		}
	}
	return cfg, nil
}
