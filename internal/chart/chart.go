// Package chart renders the daily revenue and product ranking results as a
// two-panel figure. PNG and SVG output hold just the figure; XLSX output is
// a workbook with native charts over the data; PDF output is a printable
// report with the figure and the underlying tables.
package chart

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"salesreport/internal/errors"
	"salesreport/internal/models"
	"salesreport/internal/observability"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG, FormatPDF, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q", s)
	}
}

const (
	revenueTitle  = "Revenue by day"
	productsTitle = "Top products by units sold"
)

type Options struct {
	// Figure size in inches.
	Width  float64
	Height float64
}

func DefaultOptions() Options {
	return Options{Width: 14, Height: 5}
}

// Input is what gets drawn. Daily and Products are drawn in the order
// given. Metrics is optional and only used by the report formats.
type Input struct {
	Source   string
	Daily    []models.DailyRevenue
	Products []models.ProductQuantity
	Metrics  *models.Metrics
}

type Renderer struct {
	opts   Options
	logger *slog.Logger
}

func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{opts: opts, logger: logger}
}

// Render writes the chart output in format to w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, format Format, in Input) error {
	ctx, span := observability.StartSpan(ctx, "chart.render")
	defer span.Finish()
	span.SetTag("format", string(format))

	var err error
	switch format {
	case FormatPNG, FormatSVG:
		err = writeFigure(w, format, in, r.opts)
	case FormatXLSX:
		err = writeWorkbook(w, in)
	case FormatPDF:
		err = writePDFReport(w, in, r.opts)
	default:
		err = fmt.Errorf("unsupported chart format %q", format)
	}
	if err != nil {
		appErr := errors.RenderWrap(err, fmt.Sprintf("cannot render %s chart", format))
		span.SetError(appErr)
		return appErr
	}

	r.logger.DebugContext(ctx, "chart rendered",
		"format", format,
		"days", len(in.Daily),
		"products", len(in.Products))
	return nil
}

// RenderFile renders into a temporary file next to path and renames it into
// place, so a failed render never leaves a partial file behind.
func (r *Renderer) RenderFile(ctx context.Context, path string, format Format, in Input) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.RenderWrap(err, fmt.Sprintf("cannot create output directory %s", dir))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.RenderWrap(err, fmt.Sprintf("cannot write %s", path))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := r.Render(ctx, tmp, format, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return errors.RenderWrap(err, fmt.Sprintf("cannot write %s", path))
	}
	if err := tmp.Close(); err != nil {
		return errors.RenderWrap(err, fmt.Sprintf("cannot write %s", path))
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.RenderWrap(err, fmt.Sprintf("cannot write %s", path))
	}

	r.logger.InfoContext(ctx, "chart written", "path", path, "format", format)
	return nil
}
