package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"urbanmart-dashboard/internal/format"
	"urbanmart-dashboard/internal/models"
)

// Element ids patched by the SSE handlers.
const (
	KPIsID           = "kpis"
	WarningID        = "warning"
	StoresID         = "stores"
	CategoriesID     = "categories"
	ChannelsID       = "channels"
	SegmentsID       = "segments"
	PaymentsID       = "payments"
	DayOfWeekID      = "day-of-week"
	TrendID          = "trend"
	TopProductsID    = "top-products"
	BottomProductsID = "bottom-products"
	TopCustomersID   = "top-customers"
	BasketsID        = "baskets"
	StatusID         = "status"
)

func esc(s string) string { return templ.EscapeString(s) }

func writeString(w io.Writer, b *strings.Builder) error {
	_, err := io.WriteString(w, b.String())
	return err
}

type kpi struct {
	label string
	value string
}

// KPICards renders the headline figures for the current filters.
func KPICards(s models.Summary) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		cards := []kpi{
			{"Net Revenue", format.Currency(s.Revenue)},
			{"Gross Revenue", format.Currency(s.GrossRevenue)},
			{"Discounts", format.Currency(s.Discount)},
			{"Profit", format.Currency(s.Profit)},
			{"Profit Margin", format.Percent(s.ProfitMargin)},
			{"Transactions", format.Count(s.Transactions)},
			{"Customers", format.Count(s.Customers)},
			{"Units Sold", format.Count(s.Units)},
			{"Avg Order Value", format.Currency(s.AvgOrderValue)},
			{"Customer Lifetime Value", format.Currency(s.CustomerLifetimeValue)},
			{"Repeat Customers", format.Percent(s.RepeatCustomerRate)},
			{"Discount Rate", format.Percent(s.DiscountRate)},
		}

		var b strings.Builder
		fmt.Fprintf(&b, `<div id="%s" class="kpi-grid">`, KPIsID)
		for _, c := range cards {
			fmt.Fprintf(&b, `<div class="kpi-card"><span class="kpi-label">%s</span><span class="kpi-value">%s</span></div>`,
				esc(c.label), esc(c.value))
		}
		b.WriteString(`</div>`)
		return writeString(w, &b)
	})
}

// GroupTable renders one grouped rollup as a table.
func GroupTable(id, title, dimension string, rows []models.GroupResult) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<section id="%s" class="panel"><h3>%s</h3>`, esc(id), esc(title))
		if len(rows) == 0 {
			b.WriteString(`<p class="empty">No data</p></section>`)
			return writeString(w, &b)
		}

		fmt.Fprintf(&b, `<table class="modern-table"><thead><tr><th>%s</th><th>Revenue</th><th>Profit</th><th>Margin</th><th>Orders</th><th>Units</th></tr></thead><tbody>`,
			esc(format.Title(dimension)))
		for _, r := range rows {
			fmt.Fprintf(&b, `<tr><td>%s</td><td><strong>%s</strong></td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				esc(r.Label),
				esc(format.Currency(r.Revenue)),
				esc(format.Currency(r.Profit)),
				esc(format.Percent(r.ProfitMargin)),
				esc(format.Count(r.Transactions)),
				esc(format.Count(r.Quantity)))
		}
		b.WriteString(`</tbody></table></section>`)
		return writeString(w, &b)
	})
}

func BasketTable(id, title string, rows []models.BasketResult) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<section id="%s" class="panel"><h3>%s</h3>`, esc(id), esc(title))
		if len(rows) == 0 {
			b.WriteString(`<p class="empty">No data</p></section>`)
			return writeString(w, &b)
		}

		b.WriteString(`<table class="modern-table"><thead><tr><th>Group</th><th>Baskets</th><th>Avg Basket</th><th>Lines / Basket</th><th>Units / Basket</th></tr></thead><tbody>`)
		for _, r := range rows {
			fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td><strong>%s</strong></td><td>%s</td><td>%s</td></tr>`,
				esc(r.Label),
				esc(format.Count(r.Baskets)),
				esc(format.Currency(r.AvgBasketValue)),
				esc(format.Decimal(r.AvgLinesPerBasket)),
				esc(format.Decimal(r.AvgUnitsPerBasket)))
		}
		b.WriteString(`</tbody></table></section>`)
		return writeString(w, &b)
	})
}

// Warning renders the banner for non-fatal conditions; an empty message
// clears it.
func Warning(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		if message == "" {
			fmt.Fprintf(&b, `<div id="%s"></div>`, WarningID)
		} else {
			fmt.Fprintf(&b, `<div id="%s" class="warning" role="alert">%s</div>`, WarningID, esc(message))
		}
		return writeString(w, &b)
	})
}

// Status shows which source is loaded and how large it is.
func Status(source string, rows int, loaded string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div id="%s" class="status">%s &middot; %s rows &middot; loaded %s</div>`,
			StatusID, esc(source), esc(format.Count(rows)), esc(loaded))
		return writeString(w, &b)
	})
}

// RenderString renders c for an SSE element patch.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
