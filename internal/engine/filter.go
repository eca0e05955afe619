package engine

import (
	"slices"
	"strings"
	"time"

	"urbanmart-dashboard/internal/errors"
)

// ChannelAll is the sentinel that lifts the channel restriction.
const ChannelAll = "all"

// Restriction is a categorical filter: either unrestricted (the zero value)
// or restricted to a non-empty set of allowed values.
type Restriction struct {
	allowed map[string]struct{}
}

func Unrestricted() Restriction {
	return Restriction{}
}

// RestrictTo builds a restriction from values. Blank values are ignored and
// an empty list yields Unrestricted, never "match nothing".
func RestrictTo(values ...string) Restriction {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			allowed[v] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return Unrestricted()
	}
	return Restriction{allowed: allowed}
}

// ChannelRestriction accepts a single channel or the "all" sentinel.
func ChannelRestriction(channel string) Restriction {
	channel = strings.TrimSpace(channel)
	if channel == "" || strings.EqualFold(channel, ChannelAll) {
		return Unrestricted()
	}
	return RestrictTo(channel)
}

func (r Restriction) Restricted() bool {
	return len(r.allowed) > 0
}

func (r Restriction) Allows(value string) bool {
	if !r.Restricted() {
		return true
	}
	_, ok := r.allowed[value]
	return ok
}

// Values returns the allowed values sorted, nil when unrestricted.
func (r Restriction) Values() []string {
	if !r.Restricted() {
		return nil
	}
	values := make([]string, 0, len(r.allowed))
	for v := range r.allowed {
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}

// Criteria selects rows. From and To are inclusive calendar days and both
// required; categorical restrictions are ANDed across dimensions.
type Criteria struct {
	From           time.Time
	To             time.Time
	Stores         Restriction
	Channel        Restriction
	Categories     Restriction
	Segments       Restriction
	PaymentMethods Restriction
}

func (c Criteria) Validate() error {
	if c.From.IsZero() || c.To.IsZero() {
		return errors.Validation("date_from and date_to are both required")
	}
	if calendarDay(c.From).After(calendarDay(c.To)) {
		return errors.InvalidRange(c.From, c.To)
	}
	return nil
}

func (c Criteria) Matches(li LineItem) bool {
	day := calendarDay(li.Date)
	if day.Before(calendarDay(c.From)) || day.After(calendarDay(c.To)) {
		return false
	}
	return c.Stores.Allows(li.StoreLocation) &&
		c.Channel.Allows(li.Channel) &&
		c.Categories.Allows(li.ProductCategory) &&
		c.Segments.Allows(li.CustomerSegment) &&
		c.PaymentMethods.Allows(li.PaymentMethod)
}

// Apply returns the rows matching c in their original order. No match is an
// empty slice, not an error.
func Apply(items []LineItem, c Criteria) ([]LineItem, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	matched := make([]LineItem, 0, len(items))
	for _, li := range items {
		if c.Matches(li) {
			matched = append(matched, li)
		}
	}
	return matched, nil
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
