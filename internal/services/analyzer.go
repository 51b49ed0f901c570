package services

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"salesreport/internal/models"
	"salesreport/internal/observability"
)

// Summary bundles every derived result for one table.
type Summary struct {
	Metrics      models.Metrics           `json:"metrics"`
	TopProducts  []models.ProductQuantity `json:"top_products"`
	DailyRevenue []models.DailyRevenue    `json:"daily_revenue"`
}

// Analyzer computes aggregates over a loaded table. Every method only
// reads the table, so calls may be repeated in any order.
type Analyzer struct {
	table  *models.Table
	logger *slog.Logger
}

func NewAnalyzer(table *models.Table, logger *slog.Logger) *Analyzer {
	if table == nil {
		table = &models.Table{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		table:  table,
		logger: logger,
	}
}

// ComputeTotals sums quantity and revenue and averages the per-day revenue
// totals. With no rows the average is NaN.
func (a *Analyzer) ComputeTotals() models.Metrics {
	var totalQuantity int64
	totalRevenue := decimal.Zero

	for _, sale := range a.table.Rows {
		totalQuantity += sale.Quantity
		totalRevenue = totalRevenue.Add(sale.Revenue)
	}

	return models.Metrics{
		TotalQuantity:       totalQuantity,
		TotalRevenue:        totalRevenue,
		AverageDailyRevenue: averageRevenue(a.DailyRevenue()),
	}
}

func averageRevenue(days []models.DailyRevenue) float64 {
	if len(days) == 0 {
		return math.NaN()
	}

	sum := decimal.Zero
	for _, d := range days {
		sum = sum.Add(d.Revenue)
	}
	return sum.Div(decimal.NewFromInt(int64(len(days)))).InexactFloat64()
}

// RankProducts returns summed quantity per product, largest first. Equal
// quantities are ordered by product id.
func (a *Analyzer) RankProducts() []models.ProductQuantity {
	groups := make(map[int64]int64)
	for _, sale := range a.table.Rows {
		groups[sale.ProductID] += sale.Quantity
	}
	return sortTopProducts(groups)
}

// DailyRevenue returns summed revenue per date in ascending date order.
func (a *Analyzer) DailyRevenue() []models.DailyRevenue {
	groups := make(map[time.Time]decimal.Decimal)
	for _, sale := range a.table.Rows {
		key := truncateDay(sale.Date)
		if cur, ok := groups[key]; ok {
			groups[key] = cur.Add(sale.Revenue)
		} else {
			groups[key] = sale.Revenue
		}
	}
	return sortDailyRevenue(groups)
}

// Summarize runs all three aggregations under one span.
func (a *Analyzer) Summarize(ctx context.Context) Summary {
	ctx, span := observability.StartSpan(ctx, "analyzer.compute")
	defer span.Finish()

	summary := Summary{
		Metrics:      a.ComputeTotals(),
		TopProducts:  a.RankProducts(),
		DailyRevenue: a.DailyRevenue(),
	}

	if a.table.Len() == 0 {
		a.logger.WarnContext(ctx, "no sales rows to analyze", "source", a.table.Source)
	}
	a.logger.DebugContext(ctx, "analysis complete", "stats", a.Stats())

	return summary
}

func (a *Analyzer) Stats() map[string]any {
	products := make(map[int64]struct{})
	days := make(map[time.Time]struct{})
	for _, sale := range a.table.Rows {
		products[sale.ProductID] = struct{}{}
		days[truncateDay(sale.Date)] = struct{}{}
	}

	return map[string]any{
		"record_count": a.table.Len(),
		"products":     len(products),
		"days":         len(days),
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sortTopProducts(groups map[int64]int64) []models.ProductQuantity {
	result := make([]models.ProductQuantity, 0, len(groups))
	for id, qty := range groups {
		result = append(result, models.ProductQuantity{ProductID: id, Quantity: qty})
	}
	slices.SortFunc(result, func(a, b models.ProductQuantity) int {
		if a.Quantity > b.Quantity {
			return -1
		}
		if a.Quantity < b.Quantity {
			return 1
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return result
}

func sortDailyRevenue(groups map[time.Time]decimal.Decimal) []models.DailyRevenue {
	result := make([]models.DailyRevenue, 0, len(groups))
	for date, revenue := range groups {
		result = append(result, models.DailyRevenue{Date: date, Revenue: revenue})
	}
	slices.SortFunc(result, func(a, b models.DailyRevenue) int {
		return a.Date.Compare(b.Date)
	})
	return result
}
