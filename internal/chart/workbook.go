package chart

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	dailySheet    = "DailyRevenue"
	productsSheet = "TopProducts"
)

// writeWorkbook writes the data behind both panels to their own sheets
// and places a native line chart and column chart on the summary sheet.
func writeWorkbook(w io.Writer, in Input) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{dailySheet, productsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummarySheet(f, in, headerStyle); err != nil {
		return err
	}

	if err := setRow(f, dailySheet, 1, []any{"Date", "Revenue"}); err != nil {
		return err
	}
	for i, d := range in.Daily {
		if err := setRow(f, dailySheet, i+2, []any{d.Day(), d.Revenue.InexactFloat64()}); err != nil {
			return err
		}
	}

	if err := setRow(f, productsSheet, 1, []any{"Product ID", "Units sold"}); err != nil {
		return err
	}
	for i, p := range in.Products {
		// Ids are written as text so the column chart treats them as categories.
		if err := setRow(f, productsSheet, i+2, []any{fmt.Sprintf("%d", p.ProductID), p.Quantity}); err != nil {
			return err
		}
	}

	for _, sheet := range []string{dailySheet, productsSheet} {
		if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
			return fmt.Errorf("style %s header: %w", sheet, err)
		}
		if err := f.SetColWidth(sheet, "A", "B", 14); err != nil {
			return fmt.Errorf("size %s columns: %w", sheet, err)
		}
	}

	if len(in.Daily) > 0 {
		if err := f.AddChart(summarySheet, "D2", revenueChart(len(in.Daily))); err != nil {
			return fmt.Errorf("add revenue chart: %w", err)
		}
	}
	if len(in.Products) > 0 {
		if err := f.AddChart(summarySheet, "N2", productsChart(len(in.Products))); err != nil {
			return fmt.Errorf("add products chart: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, in Input, headerStyle int) error {
	if err := setRow(f, summarySheet, 1, []any{"Metric", "Value"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 24); err != nil {
		return fmt.Errorf("size summary columns: %w", err)
	}

	rows := [][]any{{"Source", in.Source}}
	if m := in.Metrics; m != nil {
		var avg any = "n/a"
		if !math.IsNaN(m.AverageDailyRevenue) {
			avg = math.Round(m.AverageDailyRevenue*100) / 100
		}
		rows = append(rows,
			[]any{"Total units sold", m.TotalQuantity},
			[]any{"Total revenue", m.TotalRevenue.InexactFloat64()},
			[]any{"Average daily revenue", avg},
		)
	}
	for i, row := range rows {
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func revenueChart(n int) *excelize.Chart {
	return &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", dailySheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", dailySheet, n+1),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", dailySheet, n+1),
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 6},
		}},
		Title:  []excelize.RichTextRun{{Text: revenueTitle}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis: excelize.ChartAxis{
			MajorGridLines: true,
			Title:          []excelize.RichTextRun{{Text: "Date"}},
		},
		YAxis: excelize.ChartAxis{
			MajorGridLines: true,
			Title:          []excelize.RichTextRun{{Text: "Revenue"}},
		},
		Dimension: excelize.ChartDimension{Width: 640, Height: 360},
	}
}

func productsChart(n int) *excelize.Chart {
	return &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", productsSheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", productsSheet, n+1),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", productsSheet, n+1),
		}},
		Title:  []excelize.RichTextRun{{Text: productsTitle}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: "Product ID"}},
		},
		YAxis: excelize.ChartAxis{
			MajorGridLines: true,
			Title:          []excelize.RichTextRun{{Text: "Units sold"}},
		},
		Dimension: excelize.ChartDimension{Width: 640, Height: 360},
	}
}
