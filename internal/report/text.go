// Package report renders analysis results as plain text for the console.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"salesreport/internal/services"
)

const noData = "n/a"

// WriteText prints the totals followed by the product ranking and the
// per-day revenue table.
func WriteText(w io.Writer, summary services.Summary) error {
	m := summary.Metrics

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total units sold:\t%d\n", m.TotalQuantity)
	fmt.Fprintf(tw, "Total revenue:\t%s\n", m.TotalRevenue.StringFixed(2))
	fmt.Fprintf(tw, "Average daily revenue:\t%s\n", FormatAverage(m.AverageDailyRevenue))
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top products by units sold:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT_ID\tQUANTITY")
	for _, p := range summary.TopProducts {
		fmt.Fprintf(tw, "%d\t%d\n", p.ProductID, p.Quantity)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write product ranking: %w", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Revenue by day:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tREVENUE")
	for _, d := range summary.DailyRevenue {
		fmt.Fprintf(tw, "%s\t%s\n", d.Day(), d.Revenue.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write daily revenue: %w", err)
	}

	return nil
}

// FormatAverage rounds to two decimals, or returns "n/a" for NaN.
func FormatAverage(v float64) string {
	if math.IsNaN(v) {
		return noData
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
