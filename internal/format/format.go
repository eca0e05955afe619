package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Currency renders dollars with thousands separators and two decimals,
// e.g. "$12,345.60". Negative values keep the sign before the symbol.
func Currency(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// Compact drops the decimals for chart labels: "$12,346".
func Compact(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.", -v)
	}
	return "$" + humanize.FormatFloat("#,###.", v)
}

func Percent(v float64) string {
	return humanize.FormatFloat("#,###.#", v) + "%"
}

func Count(n int) string {
	return humanize.Comma(int64(n))
}

func Decimal(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// Since renders a load time relative to now, "3 minutes ago".
func Since(t time.Time) string {
	return humanize.Time(t)
}

// Title turns a dimension key such as "store_location" into "Store Location".
func Title(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
