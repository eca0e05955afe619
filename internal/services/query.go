package services

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"urbanmart-dashboard/internal/engine"
	"urbanmart-dashboard/internal/errors"
)

// Query is the filter state shared by every dashboard panel, as strings so
// HTTP parameters, Datastar signals and CLI flags all map onto it directly.
type Query struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	Range      string   `json:"range"`
	Stores     []string `json:"stores"`
	Channel    string   `json:"channel"`
	Categories []string `json:"categories"`
	Segments   []string `json:"segments"`
	Payments   []string `json:"payments"`
}

func QueryFromValues(v url.Values) Query {
	return Query{
		From:       v.Get("from"),
		To:         v.Get("to"),
		Range:      v.Get("range"),
		Stores:     splitList(v["stores"]),
		Channel:    v.Get("channel"),
		Categories: splitList(v["categories"]),
		Segments:   splitList(v["segments"]),
		Payments:   splitList(v["payments"]),
	}
}

// splitList accepts both repeated parameters and comma-separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Criteria resolves the query against the table's date bounds. Explicit
// from/to win over a named range; either missing bound falls back to it.
func (q Query) Criteria(table *engine.Table) (engine.Criteria, error) {
	quick, err := engine.ParseQuickRange(q.Range)
	if err != nil {
		return engine.Criteria{}, err
	}
	minDate, maxDate := table.DateBounds()
	from, to := quick.Bounds(minDate, maxDate)

	if q.From != "" {
		if from, err = parseDate("from", q.From); err != nil {
			return engine.Criteria{}, err
		}
	}
	if q.To != "" {
		if to, err = parseDate("to", q.To); err != nil {
			return engine.Criteria{}, err
		}
	}

	return engine.Criteria{
		From:           from,
		To:             to,
		Stores:         engine.RestrictTo(q.Stores...),
		Channel:        engine.ChannelRestriction(q.Channel),
		Categories:     engine.RestrictTo(q.Categories...),
		Segments:       engine.RestrictTo(q.Segments...),
		PaymentMethods: engine.RestrictTo(q.Payments...),
	}, nil
}

func parseDate(name, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errors.ValidationWrap(err, name+" must be a YYYY-MM-DD date")
	}
	return t, nil
}

// Breakdown is a grouped rollup request.
type Breakdown struct {
	GroupBy string
	Measure string
	Order   string
	Limit   int
}

func (b Breakdown) groupQuery() (engine.GroupQuery, error) {
	dims, err := engine.ParseDimensions(b.GroupBy)
	if err != nil {
		return engine.GroupQuery{}, err
	}
	measure, err := engine.ParseMeasure(b.Measure)
	if err != nil {
		return engine.GroupQuery{}, err
	}
	ascending, err := parseOrder(b.Order)
	if err != nil {
		return engine.GroupQuery{}, err
	}
	if b.Limit < 0 {
		return engine.GroupQuery{}, errors.Validation("limit must not be negative")
	}
	return engine.GroupQuery{GroupBy: dims, OrderBy: measure, Ascending: ascending, Limit: b.Limit}, nil
}

func parseOrder(order string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "desc", "top":
		return false, nil
	case "asc", "bottom":
		return true, nil
	default:
		return false, errors.Validation("order must be asc or desc")
	}
}

// ParseLimit reads an optional positive integer parameter.
func ParseLimit(name, value string, fallback int) (int, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0, errors.Validation(name + " must be a non-negative integer")
	}
	return n, nil
}
