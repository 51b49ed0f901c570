package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Required CSV columns, in the order they are written back out.
const (
	ColumnDate      = "date"
	ColumnProductID = "product_id"
	ColumnQuantity  = "quantity"
	ColumnRevenue   = "revenue"
)

var RequiredColumns = []string{ColumnDate, ColumnProductID, ColumnQuantity, ColumnRevenue}

type Sale struct {
	Date      time.Time
	ProductID int64
	Quantity  int64
	Revenue   decimal.Decimal
}

// Table is the loaded sales data. It is not modified after loading.
type Table struct {
	Source string
	Rows   []Sale
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

type Metrics struct {
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	// AverageDailyRevenue is NaN when the table has no rows.
	AverageDailyRevenue float64 `json:"average_daily_revenue"`
}

type ProductQuantity struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type DailyRevenue struct {
	Date    time.Time       `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

func (d DailyRevenue) Day() string {
	return d.Date.Format(DateLayout)
}
