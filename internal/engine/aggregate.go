package engine

import (
	"fmt"
	"slices"
	"strings"

	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/models"
)

const totalLabel = "Total"

// GroupQuery describes one grouped rollup.
//
// Results are ordered descending by OrderBy (line revenue when empty), or
// ascending when Ascending is set, with the group key as tiebreak. SortByKey
// orders by key instead, which trend views use for chronological output. A
// day_of_week grouping runs Monday..Sunday unless Ranked is set, in which
// case the measure order wins and weekday order only breaks ties. Limit
// truncates after sorting; zero keeps every group.
type GroupQuery struct {
	GroupBy   []Dimension
	OrderBy   Measure
	Ascending bool
	SortByKey bool
	Ranked    bool
	Limit     int
}

func (q GroupQuery) validate() error {
	for _, d := range q.GroupBy {
		if !d.valid() {
			return errors.Validation(fmt.Sprintf("unknown dimension %q", d))
		}
	}
	if q.OrderBy != "" && !q.OrderBy.valid() {
		return errors.Validation(fmt.Sprintf("unknown measure %q", q.OrderBy))
	}
	if q.Limit < 0 {
		return errors.Validation("limit must not be negative")
	}
	return nil
}

type accumulator struct {
	keys         []string
	revenue      float64
	gross        float64
	discount     float64
	cost         float64
	profit       float64
	quantity     int
	lines        int
	transactions map[string]struct{}
	customers    map[string]struct{}
}

func newAccumulator(keys []string) *accumulator {
	return &accumulator{
		keys:         keys,
		transactions: make(map[string]struct{}),
		customers:    make(map[string]struct{}),
	}
}

func (a *accumulator) add(li LineItem) {
	a.revenue += li.LineRevenue()
	a.gross += li.GrossRevenue()
	a.discount += li.DiscountApplied
	a.cost += li.Cost()
	a.profit += li.Profit()
	a.quantity += li.Quantity
	a.lines++
	a.transactions[li.TransactionID] = struct{}{}
	a.customers[li.CustomerID] = struct{}{}
}

// result derives every ratio from the summed components, never from
// per-row ratios.
func (a *accumulator) result() models.GroupResult {
	txns := len(a.transactions)
	return models.GroupResult{
		Keys:                   a.keys,
		Label:                  label(a.keys),
		Revenue:                a.revenue,
		GrossRevenue:           a.gross,
		Discount:               a.discount,
		Cost:                   a.cost,
		Profit:                 a.profit,
		Quantity:               a.quantity,
		LineItems:              a.lines,
		Transactions:           txns,
		Customers:              len(a.customers),
		MeanRevenue:            ratio(a.revenue, float64(a.lines)),
		ProfitMargin:           percent(a.profit, a.revenue),
		DiscountRate:           percent(a.discount, a.gross),
		AvgTransactionValue:    ratio(a.revenue, float64(txns)),
		AvgItemsPerTransaction: ratio(float64(a.quantity), float64(txns)),
	}
}

func label(keys []string) string {
	if len(keys) == 0 {
		return totalLabel
	}
	return strings.Join(keys, " / ")
}

func groupKeys(dims []Dimension, li LineItem) []string {
	keys := make([]string, len(dims))
	for i, d := range dims {
		keys[i] = d.value(li)
	}
	return keys
}

// mapKey joins keys with a separator that cannot occur in CSV text fields.
func mapKey(keys []string) string {
	return strings.Join(keys, "\x00")
}

// Aggregate groups items by q.GroupBy and computes sums, distinct counts and
// derived ratios per group. An empty GroupBy yields a single "Total" group;
// empty input yields an empty result.
func Aggregate(items []LineItem, q GroupQuery) ([]models.GroupResult, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []models.GroupResult{}, nil
	}

	groups := make(map[string]*accumulator)
	order := make([]*accumulator, 0)
	for _, li := range items {
		keys := groupKeys(q.GroupBy, li)
		k := mapKey(keys)
		acc, ok := groups[k]
		if !ok {
			acc = newAccumulator(keys)
			groups[k] = acc
			order = append(order, acc)
		}
		acc.add(li)
	}

	results := make([]models.GroupResult, len(order))
	for i, acc := range order {
		results[i] = acc.result()
	}

	sortGroups(results, q)

	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func sortGroups(results []models.GroupResult, q GroupQuery) {
	byKey := func(a, b models.GroupResult) int {
		return compareKeys(q.GroupBy, a.Keys, b.Keys)
	}

	if q.SortByKey || (!q.Ranked && hasDimension(q.GroupBy, DimDayOfWeek)) {
		slices.SortStableFunc(results, byKey)
		return
	}

	measure := q.OrderBy
	if measure == "" {
		measure = MeasureRevenue
	}
	slices.SortStableFunc(results, func(a, b models.GroupResult) int {
		va, vb := measure.of(a), measure.of(b)
		switch {
		case va < vb:
			if q.Ascending {
				return -1
			}
			return 1
		case va > vb:
			if q.Ascending {
				return 1
			}
			return -1
		}
		return byKey(a, b)
	})
}

// TopN groups, sorts by measure and keeps the first n groups. Ties break on
// the group key so repeated calls return the same groups.
func TopN(items []LineItem, groupBy []Dimension, measure Measure, n int, ascending bool) ([]models.GroupResult, error) {
	if n <= 0 {
		return nil, errors.Validation("n must be positive")
	}
	return Aggregate(items, GroupQuery{
		GroupBy:   groupBy,
		OrderBy:   measure,
		Ascending: ascending,
		Ranked:    true,
		Limit:     n,
	})
}

// Total sums line revenue the same way every group does, so per-group sums
// can be checked against it.
func Total(items []LineItem) float64 {
	var total float64
	for _, li := range items {
		total += li.LineRevenue()
	}
	return total
}
