package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/reflectsonar/reflectsonar/pkg/cli"
	"github.com/reflectsonar/reflectsonar/pkg/config"
	"github.com/reflectsonar/reflectsonar/pkg/defaults"
	"github.com/reflectsonar/reflectsonar/pkg/ui"
)

// run dispatches args to a command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	cmd, rest, ok := cli.Parse(args)
	if !ok {
		ui.PrintError(stderr, fmt.Sprintf("unknown command %q", args[0]))
		fmt.Fprintln(stderr)
		printUsage(stderr)
		return defaults.ExitUserError
	}

	switch cmd {
	case cli.CommandVersion:
		fmt.Fprintf(stdout, "%s %s\n", defaults.ToolName, defaults.Version)
		return defaults.ExitSuccess
	case cli.CommandHelp:
		printUsage(stdout)
		return defaults.ExitSuccess
	}

	cfg, err := config.Parse(string(cmd), rest, stderr, getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return defaults.ExitSuccess
		}
		return usageError(stderr, err)
	}
	if err := cfg.Validate(); err != nil {
		return usageError(stderr, err)
	}
	ui.SetSilent(cfg.Silent)
	ui.SetNoColor(cfg.NoColor)
	log := newLogger(stderr, cfg)

	switch cmd {
	case cli.CommandDetect:
		err = runDetect(ctx, cfg, stdout, stderr, log)
	default:
		err = runReport(ctx, cfg, stdout, stderr, log)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.PrintError(stderr, "cancelled")
		} else {
			ui.PrintError(stderr, err.Error())
		}
		return defaults.ExitFailure
	}
	return defaults.ExitSuccess
}

// usageError reports a flag or configuration problem. Joined validation
// errors are listed one per line.
func usageError(stderr io.Writer, err error) int {
	for _, line := range strings.Split(err.Error(), "\n") {
		ui.PrintError(stderr, line)
	}
	fmt.Fprintf(stderr, "\nRun '%s -h' for usage.\n", defaults.ToolName)
	return defaults.ExitUserError
}

// newLogger builds the stderr text logger: -v enables debug output and
// -silent keeps errors only.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case cfg.Silent:
		level = slog.LevelError
	case cfg.Verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
