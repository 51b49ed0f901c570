// Package pipeline runs one report end to end: load the sales file,
// analyze it, print the text summary and write the chart.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"salesreport/internal/chart"
	"salesreport/internal/config"
	"salesreport/internal/errors"
	"salesreport/internal/loader"
	"salesreport/internal/observability"
	"salesreport/internal/report"
	"salesreport/internal/services"
)

// Result is what a successful run produced.
type Result struct {
	Summary    services.Summary
	OutputPath string
	Format     chart.Format
}

// Run executes the stages in order and stops at the first failure. The
// returned error is always an *errors.AppError.
func Run(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.run")
	defer span.Finish()
	span.SetTag("input", cfg.Input.FilePath)
	span.SetTag("output", cfg.Output.Path)
	if runID := observability.GetRunID(ctx); runID != "" {
		span.SetTag("run_id", runID)
	}

	result, err := run(ctx, cfg, stdout, logger)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return result, nil
}

func run(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) (*Result, error) {
	start := time.Now()

	format, err := chart.ParseFormat(cfg.Output.ChartFormat())
	if err != nil {
		return nil, errors.ConfigWrap(err, "invalid output format")
	}

	ld := loader.New(logger, loader.Options{RejectNegative: cfg.Input.RejectNegative})
	table, err := ld.Load(ctx, cfg.Input.FilePath)
	if err != nil {
		return nil, err
	}

	summary := services.NewAnalyzer(table, logger).Summarize(ctx)

	if !cfg.Output.Quiet {
		if err := report.WriteText(stdout, summary); err != nil {
			return nil, errors.InternalWrap(err, "cannot print summary")
		}
	}

	renderer := chart.NewRenderer(chart.Options{
		Width:  cfg.Output.Width,
		Height: cfg.Output.Height,
	}, logger)

	metrics := summary.Metrics
	in := chart.Input{
		Source:   table.Source,
		Daily:    summary.DailyRevenue,
		Products: summary.TopProducts,
		Metrics:  &metrics,
	}
	if err := renderer.RenderFile(ctx, cfg.Output.Path, format, in); err != nil {
		return nil, err
	}

	if !cfg.Output.Quiet {
		fmt.Fprintf(stdout, "\nChart saved to %s\n", cfg.Output.Path)
	}

	logger.InfoContext(ctx, "report complete",
		"input", cfg.Input.FilePath,
		"output", cfg.Output.Path,
		"format", format,
		"rows", table.Len(),
		"duration", time.Since(start))

	return &Result{Summary: summary, OutputPath: cfg.Output.Path, Format: format}, nil
}
