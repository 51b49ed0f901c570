package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesreport/internal/config"
	"salesreport/internal/errors"
	"salesreport/internal/observability"
	"salesreport/internal/pipeline"
)

var version = "1.0.0"

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	bootLogger := slog.New(slog.NewTextHandler(stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		errors.WriteError(stderr, bootLogger, errors.ConfigWrap(err, "failed to load configuration"))
		return errors.ExitConfig
	}

	fs := flag.NewFlagSet("salesreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: salesreport [flags] <file_path>")
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Reads a sales CSV with date, product_id, quantity and revenue columns,")
		fmt.Fprintln(fs.Output(), "prints totals, and writes a revenue and product chart.")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.Output.Path, "out", cfg.Output.Path, "chart output path")
	fs.StringVar(&cfg.Output.Format, "format", cfg.Output.Format, "chart format: png, svg, pdf or xlsx (default: from -out extension)")
	fs.BoolVar(&cfg.Output.Quiet, "quiet", cfg.Output.Quiet, "do not print the text summary")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return errors.ExitConfig
	}
	if *showVersion {
		fmt.Fprintf(stdout, "salesreport %s\n", version)
		return 0
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Input.FilePath = fs.Arg(0)
	default:
		fs.Usage()
		errors.WriteError(stderr, bootLogger,
			errors.Config("too many arguments").WithDetails("expected one file path, got %d", fs.NArg()))
		return errors.ExitConfig
	}

	if err := cfg.Validate(); err != nil {
		fs.Usage()
		errors.WriteError(stderr, bootLogger, errors.ConfigWrap(err, "invalid arguments"))
		return errors.ExitConfig
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	tracing, err := observability.InitTracing(cfg.Tracing, stderr)
	if err != nil {
		errors.WriteError(stderr, logger, errors.ConfigWrap(err, "failed to initialize tracing"))
		return errors.ExitConfig
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warn("trace shutdown failed", "error", err)
		}
	}()

	ctx = observability.WithRunID(ctx, observability.NewRunID())
	logger.DebugContext(ctx, "starting run",
		"version", version,
		"input", cfg.Input.FilePath,
		"output", cfg.Output.Path,
		"tracing", tracing.Enabled())

	if _, err := pipeline.Run(ctx, cfg, stdout, logger); err != nil {
		errors.WriteError(stderr, logger, err)
		return errors.ExitCode(err)
	}
	return 0
}
