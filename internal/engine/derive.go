package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/models"
)

// CostRatio is the flat cost-of-goods share of gross revenue. There is no
// per-product cost data; keep it a single constant.
const CostRatio = 0.30

const dateLayout = time.DateOnly

// Derive parses raw records and computes every derived field. The first
// unparseable value aborts with a DATA_FORMAT error naming the row.
func Derive(records []models.RawRecord) ([]LineItem, error) {
	items := make([]LineItem, 0, len(records))
	for i, rec := range records {
		item, err := DeriveRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func DeriveRecord(rec models.RawRecord) (LineItem, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(rec.Date))
	if err != nil {
		return LineItem{}, errors.DataFormat("date", rec.Date, err)
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(rec.Quantity))
	if err != nil {
		return LineItem{}, errors.DataFormat("quantity", rec.Quantity, err)
	}

	unitPrice, err := strconv.ParseFloat(strings.TrimSpace(rec.UnitPrice), 64)
	if err != nil {
		return LineItem{}, errors.DataFormat("unit_price", rec.UnitPrice, err)
	}

	discount, err := strconv.ParseFloat(strings.TrimSpace(rec.DiscountApplied), 64)
	if err != nil {
		return LineItem{}, errors.DataFormat("discount_applied", rec.DiscountApplied, err)
	}

	item := LineItem{
		TransactionID:   strings.TrimSpace(rec.TransactionID),
		BillID:          strings.TrimSpace(rec.BillID),
		Date:            date,
		StoreID:         strings.TrimSpace(rec.StoreID),
		StoreLocation:   strings.TrimSpace(rec.StoreLocation),
		CustomerID:      strings.TrimSpace(rec.CustomerID),
		CustomerSegment: strings.TrimSpace(rec.CustomerSegment),
		ProductID:       strings.TrimSpace(rec.ProductID),
		ProductCategory: strings.TrimSpace(rec.ProductCategory),
		ProductName:     strings.TrimSpace(rec.ProductName),
		PaymentMethod:   strings.TrimSpace(rec.PaymentMethod),
		Channel:         strings.TrimSpace(rec.Channel),
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountApplied: discount,
	}
	return item.derive(), nil
}

// Recompute returns a copy of items with derived fields rebuilt from
// quantity, unit price and discount. Recompute(Recompute(x)) == Recompute(x).
func Recompute(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = item.derive()
	}
	return out
}

func (li LineItem) derive() LineItem {
	li.grossRevenue = float64(li.Quantity) * li.UnitPrice
	li.lineRevenue = li.grossRevenue - li.DiscountApplied
	li.cost = li.grossRevenue * CostRatio
	li.profit = li.lineRevenue - li.cost
	li.profitMargin = percent(li.profit, li.lineRevenue)
	return li
}

// percent is num/den*100 with division by zero defined as 0.
func percent(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
