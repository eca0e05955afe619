package engine

import (
	"fmt"
	"strings"

	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/models"
)

// Granularity is the bucket width of a revenue trend.
type Granularity string

const (
	Daily     Granularity = "daily"
	Weekly    Granularity = "weekly"
	Monthly   Granularity = "monthly"
	Quarterly Granularity = "quarterly"
	Yearly    Granularity = "yearly"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return g, nil
	default:
		return "", errors.Validation(fmt.Sprintf("unknown granularity %q", s))
	}
}

// Dimension is the calendar key a trend at g groups by.
func (g Granularity) Dimension() Dimension {
	switch g {
	case Weekly:
		return DimWeek
	case Monthly:
		return DimMonth
	case Quarterly:
		return DimQuarter
	case Yearly:
		return DimYear
	default:
		return DimDate
	}
}

// Trend buckets items by g, optionally split by an extra dimension, and
// returns the buckets in chronological order.
func Trend(items []LineItem, g Granularity, split ...Dimension) ([]models.GroupResult, error) {
	return Aggregate(items, GroupQuery{
		GroupBy:   append([]Dimension{g.Dimension()}, split...),
		SortByKey: true,
	})
}
