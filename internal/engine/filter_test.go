package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbanmart-dashboard/internal/errors"
)

func TestApplyStores(t *testing.T) {
	c := allTime()
	c.Stores = RestrictTo("B")

	got, err := Apply(threeRows(), c)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Milk", got[0].ProductName)
	assert.InDelta(t, 6.0, got[0].LineRevenue(), 1e-9)
}

func TestApplyEmptyRestrictionsAreNoOps(t *testing.T) {
	c := allTime()
	c.Stores = RestrictTo()
	c.Categories = RestrictTo("", "  ")
	c.Channel = ChannelRestriction("all")

	rows := threeRows()
	got, err := Apply(rows, c)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestApplyCombinesDimensions(t *testing.T) {
	tests := []struct {
		name     string
		criteria func(*Criteria)
		products []string
	}{
		{"or within a dimension", func(c *Criteria) { c.Categories = RestrictTo("Snacks", "Grocery") }, []string{"Rice", "Chips", "Milk"}},
		{"and across dimensions", func(c *Criteria) {
			c.Categories = RestrictTo("Grocery")
			c.Stores = RestrictTo("A")
		}, []string{"Rice"}},
		{"channel", func(c *Criteria) { c.Channel = ChannelRestriction("Online") }, []string{"Milk"}},
		{"channel all is case insensitive", func(c *Criteria) { c.Channel = ChannelRestriction("ALL") }, []string{"Rice", "Chips", "Milk"}},
		{"segment", func(c *Criteria) { c.Segments = RestrictTo("Regular") }, []string{"Rice", "Chips"}},
		{"payment", func(c *Criteria) { c.PaymentMethods = RestrictTo("UPI") }, []string{"Milk"}},
		{"unknown value matches nothing", func(c *Criteria) { c.Stores = RestrictTo("Nowhere") }, nil},
		{"category match is case sensitive", func(c *Criteria) { c.Categories = RestrictTo("grocery") }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := allTime()
			tt.criteria(&c)
			got, err := Apply(threeRows(), c)
			require.NoError(t, err)

			var products []string
			for _, li := range got {
				products = append(products, li.ProductName)
			}
			assert.Equal(t, tt.products, products)
		})
	}
}

func TestApplyInclusiveDates(t *testing.T) {
	day := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	got, err := Apply(threeRows(), Criteria{From: day, To: day})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-01-07", got[0].DateKey())
}

func TestApplyNoMatchIsEmpty(t *testing.T) {
	day := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := Apply(threeRows(), Criteria{From: day, To: day})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyInvalidRange(t *testing.T) {
	c := Criteria{
		From: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := Apply(threeRows(), c)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidRange))
}

func TestApplyRequiresBothBounds(t *testing.T) {
	_, err := Apply(threeRows(), Criteria{From: time.Now()})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeValidation))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	rows := threeRows()
	c := allTime()
	c.Stores = RestrictTo("A")

	got, err := Apply(rows, c)
	require.NoError(t, err)
	got[0].ProductName = "changed"
	assert.Equal(t, "Rice", rows[0].ProductName)
}

func TestRestrictionValues(t *testing.T) {
	assert.Nil(t, Unrestricted().Values())
	assert.Equal(t, []string{"a", "b"}, RestrictTo("b", "a", "b").Values())
	assert.False(t, ChannelRestriction("").Restricted())
	assert.True(t, ChannelRestriction("Online").Allows("Online"))
	assert.False(t, ChannelRestriction("Online").Allows("In-store"))
}
