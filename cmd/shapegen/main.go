package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Config   string `help:"Config file (default: shapegen.yaml in the working directory, if present)." short:"c" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error). Overrides the config file." name:"log-level"`

	Version  VersionCmd  `cmd:"" help:"Print version information."`
	Generate GenerateCmd `cmd:"" help:"Generate clients from a schema."`
	Check    CheckCmd    `cmd:"" help:"Validate a schema and report stale generated files."`
}

// env is what every command runs with.
type env struct {
	config fileConfig
	logger *slog.Logger
	stdout io.Writer
}

type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	fmt.Fprintln(e.stdout, Version())
	return nil
}

func newEnv(cli *CLI, stdout, stderr io.Writer) (*env, error) {
	fc, used, err := loadConfig(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		fc.LogLevel = cli.LogLevel
	}
	logger, err := newLogger(stderr, fc.LogLevel)
	if err != nil {
		return nil, err
	}
	if used != "" {
		logger.Debug("using config file", slog.String("config", used))
	}
	return &env{config: fc, logger: logger, stdout: stdout}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("shapegen"),
		kong.Description("Generate typed API clients from a shapegen schema."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	e, err := newEnv(cli, os.Stdout, os.Stderr)
	kctx.FatalIfErrorf(err)
	slog.SetDefault(e.logger)

	err = kctx.Run(e)
	kctx.FatalIfErrorf(err)
}
