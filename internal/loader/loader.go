// Package loader reads sales tables from comma-separated files and writes
// them back in the same layout.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"salesreport/internal/errors"
	"salesreport/internal/models"
	"salesreport/internal/observability"
)

const utf8BOM = "\uFEFF"

type Options struct {
	// RejectNegative turns negative quantity or revenue values (returns,
	// refunds) into load errors instead of accepting them as decrements.
	RejectNegative bool
}

type Loader struct {
	opts   Options
	logger *slog.Logger
}

func New(logger *slog.Logger, opts Options) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{opts: opts, logger: logger}
}

// Load reads the whole file at path into memory.
func (l *Loader) Load(ctx context.Context, path string) (*models.Table, error) {
	ctx, span := observability.StartSpan(ctx, "loader.load")
	defer span.Finish()
	span.SetTag("path", path)

	file, err := os.Open(path)
	if err != nil {
		appErr := errors.DataAccessWrap(err, fmt.Sprintf("cannot read input file %s", path))
		span.SetError(appErr)
		return nil, appErr
	}
	defer file.Close()

	table, err := l.Parse(ctx, file, path)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.SetInt("rows", table.Len())

	l.logger.InfoContext(ctx, "file loaded",
		"path", path,
		"rows", table.Len(),
		"duration", time.Since(span.StartTime))

	return table, nil
}

// Parse reads a sales table from r. source names the input in errors.
func (l *Loader) Parse(ctx context.Context, r io.Reader, source string) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, errors.DataAccess(fmt.Sprintf("input file %s is empty", source)).
			WithDetails("a header row with %s is required", strings.Join(models.RequiredColumns, ", "))
	}
	if err != nil {
		return nil, errors.DataAccessWrap(err, fmt.Sprintf("cannot parse header of %s", source))
	}

	idx, missing := mapColumns(headers)
	if len(missing) > 0 {
		return nil, errors.MissingColumns(source, missing)
	}

	table := &models.Table{Source: source}
	negatives := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.DataAccessWrap(err, fmt.Sprintf("loading %s interrupted", source))
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.DataAccessWrap(err, fmt.Sprintf("cannot parse %s", source))
		}

		line, _ := reader.FieldPos(0)
		sale, err := parseSale(record, idx)
		if err != nil {
			return nil, errors.DataAccessWrap(err, fmt.Sprintf("invalid data in %s at line %d", source, line))
		}

		if sale.Quantity < 0 || sale.Revenue.IsNegative() {
			if l.opts.RejectNegative {
				return nil, errors.DataAccess(fmt.Sprintf("negative value in %s at line %d", source, line)).
					WithDetails("quantity=%d revenue=%s", sale.Quantity, sale.Revenue)
			}
			negatives++
		}

		table.Rows = append(table.Rows, sale)
	}

	if negatives > 0 {
		l.logger.WarnContext(ctx, "negative quantities or revenues treated as returns",
			"source", source,
			"rows", negatives)
	}

	return table, nil
}

type columnIndex map[string]int

// mapColumns locates the required columns in a header row. Names are
// matched after trimming and lower-casing; extra columns are ignored.
func mapColumns(headers []string) (columnIndex, []string) {
	idx := make(columnIndex, len(models.RequiredColumns))
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}

	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return idx, missing
}

func parseSale(record []string, idx columnIndex) (models.Sale, error) {
	field := func(col string) string {
		return strings.TrimSpace(record[idx[col]])
	}

	date, err := time.Parse(models.DateLayout, field(models.ColumnDate))
	if err != nil {
		return models.Sale{}, fmt.Errorf("column %s: %q is not a YYYY-MM-DD date", models.ColumnDate, field(models.ColumnDate))
	}

	productID, err := strconv.ParseInt(field(models.ColumnProductID), 10, 64)
	if err != nil {
		return models.Sale{}, fmt.Errorf("column %s: %q is not an integer", models.ColumnProductID, field(models.ColumnProductID))
	}

	quantity, err := strconv.ParseInt(field(models.ColumnQuantity), 10, 64)
	if err != nil {
		return models.Sale{}, fmt.Errorf("column %s: %q is not an integer", models.ColumnQuantity, field(models.ColumnQuantity))
	}

	revenue, err := decimal.NewFromString(field(models.ColumnRevenue))
	if err != nil {
		return models.Sale{}, fmt.Errorf("column %s: %q is not a number", models.ColumnRevenue, field(models.ColumnRevenue))
	}
	// Charts and workbooks plot revenue as float64.
	if math.IsInf(revenue.InexactFloat64(), 0) {
		return models.Sale{}, fmt.Errorf("column %s: %q is out of range", models.ColumnRevenue, field(models.ColumnRevenue))
	}

	return models.Sale{
		Date:      date,
		ProductID: productID,
		Quantity:  quantity,
		Revenue:   revenue,
	}, nil
}

// Write serializes table in the layout Parse accepts.
func Write(w io.Writer, table *models.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(models.RequiredColumns); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, sale := range table.Rows {
		record := []string{
			sale.Date.Format(models.DateLayout),
			strconv.FormatInt(sale.ProductID, 10),
			strconv.FormatInt(sale.Quantity, 10),
			sale.Revenue.String(),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes table to path, replacing any existing file.
func WriteFile(path string, table *models.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, table); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
