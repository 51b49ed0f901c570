package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesreport/internal/chart"
	"salesreport/internal/config"
	"salesreport/internal/errors"
	"salesreport/internal/observability"
)

const sampleCSV = `date,product_id,quantity,revenue
2023-10-01,101,3,300
2023-10-02,102,5,500
2023-10-03,103,2,200
`

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(input, output string) *config.Config {
	return &config.Config{
		Input:  config.InputConfig{FilePath: input},
		Output: config.OutputConfig{Path: output, Width: 6, Height: 3},
		Logger: config.LoggerConfig{Level: "info", Format: "text", Output: "stderr"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_SampleFile(t *testing.T) {
	input := createTempCSV(t, sampleCSV)
	output := filepath.Join(t.TempDir(), "sales_report.png")

	var stdout bytes.Buffer
	ctx := observability.WithRunID(context.Background(), observability.NewRunID())
	result, err := Run(ctx, testConfig(input, output), &stdout, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, chart.FormatPNG, result.Format)
	assert.Equal(t, int64(10), result.Summary.Metrics.TotalQuantity)
	assert.Equal(t, "1000.00", result.Summary.Metrics.TotalRevenue.StringFixed(2))
	require.Len(t, result.Summary.TopProducts, 3)
	assert.Equal(t, int64(102), result.Summary.TopProducts[0].ProductID)

	out := stdout.String()
	assert.Contains(t, out, "Total units sold:")
	assert.Contains(t, out, "333.33")
	assert.Contains(t, out, "Chart saved to "+output)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestRun_FormatFromExtension(t *testing.T) {
	input := createTempCSV(t, sampleCSV)
	output := filepath.Join(t.TempDir(), "report.svg")

	result, err := Run(context.Background(), testConfig(input, output), io.Discard, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, chart.FormatSVG, result.Format)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestRun_Quiet(t *testing.T) {
	input := createTempCSV(t, sampleCSV)
	cfg := testConfig(input, filepath.Join(t.TempDir(), "report.xlsx"))
	cfg.Output.Quiet = true

	var stdout bytes.Buffer
	_, err := Run(context.Background(), cfg, &stdout, discardLogger())
	require.NoError(t, err)
	assert.Empty(t, stdout.String())
}

func TestRun_HeaderOnlyFile(t *testing.T) {
	input := createTempCSV(t, "date,product_id,quantity,revenue\n")
	output := filepath.Join(t.TempDir(), "sales_report.png")

	var stdout bytes.Buffer
	result, err := Run(context.Background(), testConfig(input, output), &stdout, discardLogger())
	require.NoError(t, err)

	assert.Empty(t, result.Summary.TopProducts)
	assert.Empty(t, result.Summary.DailyRevenue)
	assert.Contains(t, stdout.String(), "n/a")
	assert.FileExists(t, output)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		missing  bool
		output   func(dir string) string
		format   string
		wantCode errors.ErrorCode
		wantExit int
	}{
		{
			name:     "missing input file",
			missing:  true,
			wantCode: errors.CodeDataAccess,
			wantExit: errors.ExitDataAccess,
		},
		{
			name:     "missing column",
			content:  "date,product_id,quantity\n2023-10-01,101,3\n",
			wantCode: errors.CodeSchema,
			wantExit: errors.ExitSchema,
		},
		{
			name:     "malformed value",
			content:  "date,product_id,quantity,revenue\n2023-10-01,abc,3,300\n",
			wantCode: errors.CodeDataAccess,
			wantExit: errors.ExitDataAccess,
		},
		{
			name:    "unwritable output",
			content: sampleCSV,
			output: func(dir string) string {
				blocker := filepath.Join(dir, "blocker")
				_ = os.WriteFile(blocker, nil, 0o644)
				return filepath.Join(blocker, "sales_report.png")
			},
			wantCode: errors.CodeRender,
			wantExit: errors.ExitRender,
		},
		{
			name:     "unknown format",
			content:  sampleCSV,
			format:   "gif",
			wantCode: errors.CodeConfig,
			wantExit: errors.ExitConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := filepath.Join(dir, "absent.csv")
			if !tt.missing {
				input = createTempCSV(t, tt.content)
			}
			output := filepath.Join(dir, "sales_report.png")
			if tt.output != nil {
				output = tt.output(dir)
			}
			cfg := testConfig(input, output)
			cfg.Output.Format = tt.format

			var stdout bytes.Buffer
			result, err := Run(context.Background(), cfg, &stdout, discardLogger())
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.wantCode), "got %v", err)
			assert.Equal(t, tt.wantExit, errors.ExitCode(err))
		})
	}
}
