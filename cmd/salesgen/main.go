// Command salesgen writes a sales CSV that salesreport can read. With no
// flags it writes the three-row sample; -days and -products produce a
// larger synthetic dataset.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"salesreport/internal/loader"
	"salesreport/internal/models"
)

const firstProductID = 101

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	fs := flag.NewFlagSet("salesgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", "sales_data.csv", "output CSV path")
	days := fs.Int("days", 0, "number of days to generate (0 writes the built-in sample)")
	products := fs.Int("products", 5, "number of distinct products")
	start := fs.String("start", "2023-10-01", "first date, YYYY-MM-DD")
	seed := fs.Uint64("seed", 1, "random seed")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	startDate, err := time.Parse(models.DateLayout, *start)
	if err != nil {
		logger.Error("invalid start date", "start", *start, "error", err)
		return 2
	}
	if *days < 0 || *products <= 0 {
		logger.Error("days must be non-negative and products positive", "days", *days, "products", *products)
		return 2
	}

	table := sampleTable(startDate)
	if *days > 0 {
		table = generate(startDate, *days, *products, *seed)
	}

	if err := loader.WriteFile(*out, table); err != nil {
		logger.Error("failed to write sales file", "path", *out, "error", err)
		return 1
	}

	fmt.Fprintf(stdout, "Wrote %d rows to %s\n", table.Len(), *out)
	return 0
}

// sampleTable is the canonical three-day dataset.
func sampleTable(start time.Time) *models.Table {
	return &models.Table{Rows: []models.Sale{
		{Date: start, ProductID: 101, Quantity: 3, Revenue: decimal.NewFromInt(300)},
		{Date: start.AddDate(0, 0, 1), ProductID: 102, Quantity: 5, Revenue: decimal.NewFromInt(500)},
		{Date: start.AddDate(0, 0, 2), ProductID: 103, Quantity: 2, Revenue: decimal.NewFromInt(200)},
	}}
}

// generate produces between one and products rows per day. Each product
// has a fixed unit price so revenue tracks quantity.
func generate(start time.Time, days, products int, seed uint64) *models.Table {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	prices := make([]decimal.Decimal, products)
	for i := range prices {
		cents := 500 + rng.Int64N(9500)
		prices[i] = decimal.New(cents, -2)
	}

	table := &models.Table{}
	for d := range days {
		date := start.AddDate(0, 0, d)
		for _, p := range rng.Perm(products)[:1+rng.IntN(products)] {
			qty := 1 + rng.Int64N(20)
			table.Rows = append(table.Rows, models.Sale{
				Date:      date,
				ProductID: int64(firstProductID + p),
				Quantity:  qty,
				Revenue:   prices[p].Mul(decimal.NewFromInt(qty)),
			})
		}
	}
	return table
}
