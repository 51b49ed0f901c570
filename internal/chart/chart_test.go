package chart

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salesreport/internal/errors"
	"salesreport/internal/models"
)

func newTestRenderer() *Renderer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRenderer(Options{Width: 6, Height: 3}, logger)
}

func day(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleInput() Input {
	return Input{
		Source: "sales_data.csv",
		Daily: []models.DailyRevenue{
			{Date: day("2023-10-01"), Revenue: decimal.NewFromInt(300)},
			{Date: day("2023-10-02"), Revenue: decimal.NewFromInt(500)},
			{Date: day("2023-10-03"), Revenue: decimal.NewFromInt(200)},
		},
		Products: []models.ProductQuantity{
			{ProductID: 102, Quantity: 5},
			{ProductID: 101, Quantity: 3},
			{ProductID: 103, Quantity: 2},
		},
		Metrics: &models.Metrics{
			TotalQuantity:       10,
			TotalRevenue:        decimal.NewFromInt(1000),
			AverageDailyRevenue: 1000.0 / 3,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"SVG", FormatSVG, false},
		{" pdf ", FormatPDF, false},
		{"xlsx", FormatXLSX, false},
		{"gif", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRenderer_Defaults(t *testing.T) {
	r := NewRenderer(Options{}, nil)
	assert.Equal(t, DefaultOptions(), r.opts)
	assert.NotNil(t, r.logger)
}

func TestRender_Formats(t *testing.T) {
	r := newTestRenderer()
	ctx := context.Background()

	t.Run("png", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.Render(ctx, &buf, FormatPNG, sampleInput()))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
	})

	t.Run("svg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.Render(ctx, &buf, FormatSVG, sampleInput()))
		assert.Contains(t, buf.String(), "<svg")
	})

	t.Run("pdf", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, r.Render(ctx, &buf, FormatPDF, sampleInput()))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	})

	t.Run("unknown", func(t *testing.T) {
		var buf bytes.Buffer
		err := r.Render(ctx, &buf, Format("gif"), sampleInput())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeRender))
	})
}

func TestRender_PDFEmbedsUnicodeFont(t *testing.T) {
	r := newTestRenderer()
	in := sampleInput()
	in.Source = "продажи_октябрь.csv"

	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), &buf, FormatPDF, in))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.Contains(t, out, "/CIDFontType2", "text should use an embedded UTF-8 font")
	assert.Contains(t, out, "/FontFile2")
	assert.NotContains(t, out, "/Helvetica")
}

func TestRender_WorkbookKeepsInputOrder(t *testing.T) {
	r := newTestRenderer()
	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), &buf, FormatXLSX, sampleInput()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, dailySheet, productsSheet}, f.GetSheetList())

	rows, err := f.GetRows(productsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Product ID", "Units sold"},
		{"102", "5"},
		{"101", "3"},
		{"103", "2"},
	}, rows)

	rows, err = f.GetRows(dailySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "2023-10-01", rows[1][0])
	assert.Equal(t, "2023-10-03", rows[3][0])

	source, err := f.GetCellValue(summarySheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "sales_data.csv", source)
}

func TestRender_EmptyInput(t *testing.T) {
	r := newTestRenderer()
	empty := Input{
		Source: "empty.csv",
		Metrics: &models.Metrics{
			TotalRevenue:        decimal.Zero,
			AverageDailyRevenue: math.NaN(),
		},
	}

	for _, format := range []Format{FormatPNG, FormatSVG, FormatPDF, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Render(context.Background(), &buf, format, empty))
			assert.NotZero(t, buf.Len())
		})
	}
}

func TestRenderFile(t *testing.T) {
	r := newTestRenderer()
	path := filepath.Join(t.TempDir(), "out", "sales_report.png")

	require.NoError(t, r.RenderFile(context.Background(), path, FormatPNG, sampleInput()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be renamed into place")
}

func TestRenderFile_Overwrites(t *testing.T) {
	r := newTestRenderer()
	path := filepath.Join(t.TempDir(), "sales_report.svg")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, r.RenderFile(context.Background(), path, FormatSVG, sampleInput()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestRenderFile_Failures(t *testing.T) {
	r := newTestRenderer()
	dir := t.TempDir()

	t.Run("parent is a file", func(t *testing.T) {
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0o644))

		err := r.RenderFile(context.Background(), filepath.Join(blocker, "report.png"), FormatPNG, sampleInput())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeRender))
		assert.Equal(t, errors.ExitRender, errors.ExitCode(err))
	})

	t.Run("render error leaves no file", func(t *testing.T) {
		path := filepath.Join(dir, "report.gif")
		err := r.RenderFile(context.Background(), path, Format("gif"), sampleInput())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeRender))

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))

		matches, _ := filepath.Glob(filepath.Join(dir, ".report.gif.*"))
		assert.Empty(t, matches)
	})
}

func TestViridis(t *testing.T) {
	assert.Empty(t, viridis(0))
	assert.Len(t, viridis(1), 1)

	colors := viridis(5)
	require.Len(t, colors, 5)
	assert.Equal(t, viridisStops[0], colors[0])
	assert.Equal(t, viridisStops[len(viridisStops)-1], colors[4])
	assert.NotEqual(t, colors[1], colors[2])
}

func BenchmarkRender_PNG(b *testing.B) {
	r := newTestRenderer()
	in := sampleInput()
	ctx := context.Background()

	for b.Loop() {
		if err := r.Render(ctx, io.Discard, FormatPNG, in); err != nil {
			b.Fatal(err)
		}
	}
}
