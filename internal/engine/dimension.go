package engine

import (
	"fmt"
	"strings"

	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/models"
)

type Dimension string

const (
	DimStoreID   Dimension = "store_id"
	DimStore     Dimension = "store_location"
	DimCustomer  Dimension = "customer_id"
	DimSegment   Dimension = "customer_segment"
	DimProductID Dimension = "product_id"
	DimCategory  Dimension = "product_category"
	DimProduct   Dimension = "product_name"
	DimPayment   Dimension = "payment_method"
	DimChannel   Dimension = "channel"
	DimDayOfWeek Dimension = "day_of_week"
	DimMonthName Dimension = "month_name"
	DimDate      Dimension = "date"
	DimWeek      Dimension = "year_week"
	DimMonth     Dimension = "year_month"
	DimQuarter   Dimension = "year_quarter"
	DimYear      Dimension = "year"
)

var dimensions = []Dimension{
	DimStoreID, DimStore, DimCustomer, DimSegment, DimProductID, DimCategory,
	DimProduct, DimPayment, DimChannel, DimDayOfWeek, DimMonthName,
	DimDate, DimWeek, DimMonth, DimQuarter, DimYear,
}

var weekdayOrder = map[string]int{
	"Monday": 0, "Tuesday": 1, "Wednesday": 2, "Thursday": 3,
	"Friday": 4, "Saturday": 5, "Sunday": 6,
}

var monthOrder = map[string]int{
	"January": 1, "February": 2, "March": 3, "April": 4, "May": 5, "June": 6,
	"July": 7, "August": 8, "September": 9, "October": 10, "November": 11, "December": 12,
}

func ParseDimension(s string) (Dimension, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", errors.Validation(fmt.Sprintf("unknown dimension %q", s))
}

// ParseDimensions parses a comma-separated grouping key such as
// "store_location,product_category".
func ParseDimensions(s string) ([]Dimension, error) {
	var dims []Dimension
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := ParseDimension(part)
		if err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}
	return dims, nil
}

func (d Dimension) valid() bool {
	for _, known := range dimensions {
		if d == known {
			return true
		}
	}
	return false
}

func (d Dimension) value(li LineItem) string {
	switch d {
	case DimStoreID:
		return li.StoreID
	case DimStore:
		return li.StoreLocation
	case DimCustomer:
		return li.CustomerID
	case DimSegment:
		return li.CustomerSegment
	case DimProductID:
		return li.ProductID
	case DimCategory:
		return li.ProductCategory
	case DimProduct:
		return li.ProductName
	case DimPayment:
		return li.PaymentMethod
	case DimChannel:
		return li.Channel
	case DimDayOfWeek:
		return li.DayOfWeek()
	case DimMonthName:
		return li.MonthName()
	case DimDate:
		return li.DateKey()
	case DimWeek:
		return li.YearWeek()
	case DimMonth:
		return li.YearMonth()
	case DimQuarter:
		return li.YearQuarter()
	case DimYear:
		return fmt.Sprintf("%d", li.Year())
	default:
		return ""
	}
}

// compareValue orders two values of d. Weekdays run Monday..Sunday and
// month names January..December; every calendar key is zero-padded so the
// rest compare lexically.
func (d Dimension) compareValue(a, b string) int {
	var order map[string]int
	switch d {
	case DimDayOfWeek:
		order = weekdayOrder
	case DimMonthName:
		order = monthOrder
	}
	if order != nil {
		oa, aok := order[a]
		ob, bok := order[b]
		if aok && bok {
			return oa - ob
		}
	}
	return strings.Compare(a, b)
}

func compareKeys(dims []Dimension, a, b []string) int {
	for i, d := range dims {
		if c := d.compareValue(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func hasDimension(dims []Dimension, want Dimension) bool {
	for _, d := range dims {
		if d == want {
			return true
		}
	}
	return false
}

type Measure string

const (
	MeasureRevenue             Measure = "line_revenue"
	MeasureGrossRevenue        Measure = "gross_revenue"
	MeasureDiscount            Measure = "discount_applied"
	MeasureCost                Measure = "cost"
	MeasureProfit              Measure = "profit"
	MeasureQuantity            Measure = "quantity"
	MeasureLineItems           Measure = "line_items"
	MeasureTransactions        Measure = "transactions"
	MeasureCustomers           Measure = "customers"
	MeasureMeanRevenue         Measure = "mean_line_revenue"
	MeasureMargin              Measure = "profit_margin"
	MeasureAvgTransactionValue Measure = "avg_transaction_value"
)

var measures = []Measure{
	MeasureRevenue, MeasureGrossRevenue, MeasureDiscount, MeasureCost, MeasureProfit,
	MeasureQuantity, MeasureLineItems, MeasureTransactions, MeasureCustomers,
	MeasureMeanRevenue, MeasureMargin, MeasureAvgTransactionValue,
}

func ParseMeasure(s string) (Measure, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MeasureRevenue, nil
	}
	for _, m := range measures {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.Validation(fmt.Sprintf("unknown measure %q", s))
}

func (m Measure) valid() bool {
	for _, known := range measures {
		if m == known {
			return true
		}
	}
	return false
}

func (m Measure) of(r models.GroupResult) float64 {
	switch m {
	case MeasureGrossRevenue:
		return r.GrossRevenue
	case MeasureDiscount:
		return r.Discount
	case MeasureCost:
		return r.Cost
	case MeasureProfit:
		return r.Profit
	case MeasureQuantity:
		return float64(r.Quantity)
	case MeasureLineItems:
		return float64(r.LineItems)
	case MeasureTransactions:
		return float64(r.Transactions)
	case MeasureCustomers:
		return float64(r.Customers)
	case MeasureMeanRevenue:
		return r.MeanRevenue
	case MeasureMargin:
		return r.ProfitMargin
	case MeasureAvgTransactionValue:
		return r.AvgTransactionValue
	default:
		return r.Revenue
	}
}
