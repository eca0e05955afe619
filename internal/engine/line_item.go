package engine

import (
	"fmt"
	"time"
)

// LineItem is one product line of a sale. Base fields are exported; the
// derived financial fields can only be produced by Derive or Recompute.
type LineItem struct {
	TransactionID   string
	BillID          string
	Date            time.Time
	StoreID         string
	StoreLocation   string
	CustomerID      string
	CustomerSegment string
	ProductID       string
	ProductCategory string
	ProductName     string
	PaymentMethod   string
	Channel         string
	Quantity        int
	UnitPrice       float64
	DiscountApplied float64

	grossRevenue float64
	lineRevenue  float64
	cost         float64
	profit       float64
	profitMargin float64
}

func (li LineItem) GrossRevenue() float64 { return li.grossRevenue }
func (li LineItem) LineRevenue() float64  { return li.lineRevenue }
func (li LineItem) Cost() float64         { return li.cost }
func (li LineItem) Profit() float64       { return li.profit }

// ProfitMargin is profit as a percentage of line revenue, 0 when there is no revenue.
func (li LineItem) ProfitMargin() float64 { return li.profitMargin }

// Calendar keys are always computed from Date.

func (li LineItem) DayOfWeek() string { return li.Date.Weekday().String() }

func (li LineItem) ISOWeek() (year, week int) { return li.Date.ISOWeek() }

func (li LineItem) Month() int { return int(li.Date.Month()) }

func (li LineItem) MonthName() string { return li.Date.Month().String() }

func (li LineItem) Quarter() int { return (int(li.Date.Month())-1)/3 + 1 }

func (li LineItem) Year() int { return li.Date.Year() }

func (li LineItem) DateKey() string { return li.Date.Format(time.DateOnly) }

func (li LineItem) YearMonth() string { return li.Date.Format("2006-01") }

func (li LineItem) YearQuarter() string { return fmt.Sprintf("%dQ%d", li.Year(), li.Quarter()) }

// YearWeek labels the ISO week with its ISO year, e.g. "2025-W01".
func (li LineItem) YearWeek() string {
	year, week := li.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
