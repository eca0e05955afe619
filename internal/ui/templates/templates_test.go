package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbanmart-dashboard/internal/models"
)

func render(t *testing.T, html func() (string, error)) string {
	t.Helper()
	out, err := html()
	require.NoError(t, err)
	return out
}

func TestDashboard(t *testing.T) {
	opts := models.FilterOptions{
		Stores:   []string{"Downtown", "Uptown"},
		Channels: []string{"In-store", "Online"},
		MinDate:  "2025-01-01",
		MaxDate:  "2025-03-31",
	}
	html := render(t, func() (string, error) { return RenderString(context.Background(), Dashboard(opts)) })

	for _, want := range []string{
		"<!DOCTYPE html>",
		"datastar.js",
		`data-init="@get('/sse/overview')"`,
		`from: '2025-01-01'`,
		`<option value="Downtown">Downtown</option>`,
		`<option value="Online">Online</option>`,
		`id="kpis"`,
		`id="day-of-week"`,
		`id="baskets"`,
	} {
		assert.Contains(t, html, want)
	}
}

func TestKPICards(t *testing.T) {
	html := render(t, func() (string, error) {
		return RenderString(context.Background(), KPICards(models.Summary{Revenue: 12345.6, Transactions: 1200, ProfitMargin: 62.5}))
	})
	assert.True(t, strings.HasPrefix(html, `<div id="kpis"`))
	assert.Contains(t, html, "$12,345.60")
	assert.Contains(t, html, "1,200")
	assert.Contains(t, html, "62.5%")
}

func TestGroupTableEscapes(t *testing.T) {
	rows := []models.GroupResult{{Label: "<script>", Revenue: 24, Transactions: 1, Quantity: 3}}
	html := render(t, func() (string, error) {
		return RenderString(context.Background(), GroupTable(StoresID, "Revenue by Store", "store_location", rows))
	})
	assert.Contains(t, html, `id="stores"`)
	assert.Contains(t, html, "<th>Store Location</th>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "$24.00")
}

func TestEmptyPanels(t *testing.T) {
	html := render(t, func() (string, error) {
		return RenderString(context.Background(), BasketTable(BasketsID, "Baskets", nil))
	})
	assert.Contains(t, html, "No data")
}

func TestWarning(t *testing.T) {
	cleared := render(t, func() (string, error) { return RenderString(context.Background(), Warning("")) })
	assert.Equal(t, `<div id="warning"></div>`, cleared)

	shown := render(t, func() (string, error) {
		return RenderString(context.Background(), Warning("no data available for the selected filters"))
	})
	assert.Contains(t, shown, `role="alert"`)
	assert.Contains(t, shown, "no data available")
}
