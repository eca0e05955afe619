package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{30, "$30.00"},
		{12345.6, "$12,345.60"},
		{1234567.891, "$1,234,567.89"},
		{-42.5, "-$42.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in))
	}
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "$12,346", Compact(12345.6))
	assert.Equal(t, "-$5", Compact(-5))
}

func TestPercentAndCounts(t *testing.T) {
	assert.Equal(t, "62.5%", Percent(62.5))
	assert.Equal(t, "0.0%", Percent(0))
	assert.Equal(t, "1,234,567", Count(1234567))
	assert.Equal(t, "2.50", Decimal(2.5))
}

func TestSince(t *testing.T) {
	assert.Equal(t, "now", Since(time.Now()))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Store Location", Title("store_location"))
	assert.Equal(t, "Channel", Title("channel"))
	assert.Equal(t, "", Title(""))
}
