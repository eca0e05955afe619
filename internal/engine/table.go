package engine

import (
	"slices"
	"time"

	"urbanmart-dashboard/internal/models"
)

// Table is an immutable, fully derived dataset. It is shared between
// goroutines; every method returns fresh slices.
type Table struct {
	identity string
	items    []LineItem
	minDate  time.Time
	maxDate  time.Time
	loadedAt time.Time
}

func NewTable(identity string, items []LineItem) *Table {
	t := &Table{
		identity: identity,
		items:    items,
		loadedAt: time.Now().UTC(),
	}
	for i, li := range items {
		day := calendarDay(li.Date)
		if i == 0 || day.Before(t.minDate) {
			t.minDate = day
		}
		if i == 0 || day.After(t.maxDate) {
			t.maxDate = day
		}
	}
	return t
}

func (t *Table) Identity() string { return t.identity }

func (t *Table) Len() int { return len(t.items) }

func (t *Table) LoadedAt() time.Time { return t.loadedAt }

// DateBounds returns the earliest and latest sale dates. Both are zero for
// an empty table.
func (t *Table) DateBounds() (minDate, maxDate time.Time) {
	return t.minDate, t.maxDate
}

// All is a view over every row.
func (t *Table) All() *View {
	return &View{rows: t.items, criteria: Criteria{From: t.minDate, To: t.maxDate}}
}

func (t *Table) Filter(c Criteria) (*View, error) {
	rows, err := Apply(t.items, c)
	if err != nil {
		return nil, err
	}
	return &View{rows: rows, criteria: c}, nil
}

// Options lists the distinct values of every filterable dimension, sorted.
func (t *Table) Options() models.FilterOptions {
	stores := make(map[string]struct{})
	channels := make(map[string]struct{})
	categories := make(map[string]struct{})
	segments := make(map[string]struct{})
	payments := make(map[string]struct{})
	for _, li := range t.items {
		stores[li.StoreLocation] = struct{}{}
		channels[li.Channel] = struct{}{}
		categories[li.ProductCategory] = struct{}{}
		segments[li.CustomerSegment] = struct{}{}
		payments[li.PaymentMethod] = struct{}{}
	}

	opts := models.FilterOptions{
		Stores:         sortedKeys(stores),
		Channels:       sortedKeys(channels),
		Categories:     sortedKeys(categories),
		Segments:       sortedKeys(segments),
		PaymentMethods: sortedKeys(payments),
		Rows:           len(t.items),
	}
	if len(t.items) > 0 {
		opts.MinDate = t.minDate.Format(time.DateOnly)
		opts.MaxDate = t.maxDate.Format(time.DateOnly)
	}
	return opts
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// View is the filtered subset of a Table that every dashboard panel reads.
type View struct {
	rows     []LineItem
	criteria Criteria
}

func (v *View) Len() int { return len(v.rows) }

func (v *View) Empty() bool { return len(v.rows) == 0 }

func (v *View) Criteria() Criteria { return v.criteria }

// Rows returns a copy of the filtered rows in source order.
func (v *View) Rows() []LineItem { return slices.Clone(v.rows) }

func (v *View) Total() float64 { return Total(v.rows) }

func (v *View) Summary() models.Summary { return Summarize(v.rows) }

func (v *View) Aggregate(q GroupQuery) ([]models.GroupResult, error) {
	return Aggregate(v.rows, q)
}

func (v *View) TopN(groupBy []Dimension, measure Measure, n int, ascending bool) ([]models.GroupResult, error) {
	return TopN(v.rows, groupBy, measure, n, ascending)
}

func (v *View) Trend(g Granularity, split ...Dimension) ([]models.GroupResult, error) {
	return Trend(v.rows, g, split...)
}

func (v *View) Baskets(outer []Dimension, by BasketKey) ([]models.BasketResult, error) {
	return Baskets(v.rows, outer, by)
}
