package engine

import (
	"fmt"
	"slices"
	"strings"

	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/models"
)

// BasketKey selects the natural grouping of line items into one purchase.
type BasketKey string

const (
	BasketByBill        BasketKey = "bill_id"
	BasketByTransaction BasketKey = "transaction_id"
)

func ParseBasketKey(s string) (BasketKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bill", string(BasketByBill):
		return BasketByBill, nil
	case "transaction", string(BasketByTransaction):
		return BasketByTransaction, nil
	default:
		return "", errors.Validation(fmt.Sprintf("unknown basket key %q", s))
	}
}

func (k BasketKey) value(li LineItem) string {
	if k == BasketByTransaction {
		return li.TransactionID
	}
	return li.BillID
}

// basketGroup totals are summed in row order so the float result does not
// depend on map iteration.
type basketGroup struct {
	keys     []string
	baskets  map[string]struct{}
	revenue  float64
	lines    int
	quantity int
}

// Baskets is a two-level rollup: line items are first summed per basket
// within each outer group, then those basket totals are averaged per group.
// A basket whose lines fall in several outer groups counts once in each.
func Baskets(items []LineItem, outer []Dimension, by BasketKey) ([]models.BasketResult, error) {
	for _, d := range outer {
		if !d.valid() {
			return nil, errors.Validation(fmt.Sprintf("unknown dimension %q", d))
		}
	}
	if by != BasketByBill && by != BasketByTransaction {
		return nil, errors.Validation(fmt.Sprintf("unknown basket key %q", by))
	}
	if len(items) == 0 {
		return []models.BasketResult{}, nil
	}

	groups := make(map[string]*basketGroup)
	order := make([]*basketGroup, 0)
	for _, li := range items {
		keys := groupKeys(outer, li)
		k := mapKey(keys)
		g, ok := groups[k]
		if !ok {
			g = &basketGroup{keys: keys, baskets: make(map[string]struct{})}
			groups[k] = g
			order = append(order, g)
		}

		g.baskets[by.value(li)] = struct{}{}
		g.revenue += li.LineRevenue()
		g.lines++
		g.quantity += li.Quantity
	}

	results := make([]models.BasketResult, 0, len(order))
	for _, g := range order {
		n := float64(len(g.baskets))
		results = append(results, models.BasketResult{
			Keys:              g.keys,
			Label:             label(g.keys),
			Baskets:           len(g.baskets),
			Revenue:           g.revenue,
			AvgBasketValue:    ratio(g.revenue, n),
			AvgLinesPerBasket: ratio(float64(g.lines), n),
			AvgUnitsPerBasket: ratio(float64(g.quantity), n),
		})
	}

	byKey := func(a, b models.BasketResult) int { return compareKeys(outer, a.Keys, b.Keys) }
	if hasDimension(outer, DimDayOfWeek) {
		slices.SortStableFunc(results, byKey)
	} else {
		slices.SortStableFunc(results, func(a, b models.BasketResult) int {
			switch {
			case a.AvgBasketValue > b.AvgBasketValue:
				return -1
			case a.AvgBasketValue < b.AvgBasketValue:
				return 1
			}
			return byKey(a, b)
		})
	}
	return results, nil
}
