package engine

import (
	"fmt"
	"strings"
	"time"

	"urbanmart-dashboard/internal/errors"
)

// QuickRange is a named date window anchored at the latest sale in the data,
// not at wall-clock time, so historical extracts stay browsable.
type QuickRange string

const (
	RangeLast7Days QuickRange = "last_7_days"
	RangeLastMonth QuickRange = "last_month"
	RangeThisMonth QuickRange = "this_month"
	RangeAllTime   QuickRange = "all_time"
)

func ParseQuickRange(s string) (QuickRange, error) {
	switch r := QuickRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeAllTime, nil
	case RangeLast7Days, RangeLastMonth, RangeThisMonth, RangeAllTime:
		return r, nil
	default:
		return "", errors.Validation(fmt.Sprintf("unknown date range %q", s))
	}
}

// Bounds resolves r against the data's [minDate, maxDate]. The lower bound
// never precedes minDate.
func (r QuickRange) Bounds(minDate, maxDate time.Time) (from, to time.Time) {
	to = calendarDay(maxDate)
	switch r {
	case RangeLast7Days:
		from = to.AddDate(0, 0, -7)
	case RangeLastMonth:
		from = to.AddDate(0, 0, -30)
	case RangeThisMonth:
		from = time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		from = calendarDay(minDate)
	}
	if floor := calendarDay(minDate); from.Before(floor) {
		from = floor
	}
	return from, to
}
