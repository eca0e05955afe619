package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"urbanmart-dashboard/internal/models"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6fa;color:#1f2933}
header{background:#1f3a5f;color:#fff;padding:1rem 2rem}
.filters{display:flex;flex-wrap:wrap;gap:1rem;padding:1rem 2rem;background:#fff;border-bottom:1px solid #e4e7eb}
.filters label{display:flex;flex-direction:column;font-size:.8rem;gap:.25rem}
main{padding:1rem 2rem}
.kpi-grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(180px,1fr));gap:1rem}
.kpi-card{background:#fff;border-radius:8px;padding:1rem;display:flex;flex-direction:column}
.kpi-label{font-size:.8rem;color:#616e7c}.kpi-value{font-size:1.4rem;font-weight:600}
.panels{display:grid;grid-template-columns:repeat(auto-fill,minmax(420px,1fr));gap:1rem;margin-top:1rem}
.panel{background:#fff;border-radius:8px;padding:1rem}
.modern-table{width:100%;border-collapse:collapse;font-size:.85rem}
.modern-table th,.modern-table td{padding:.4rem;border-bottom:1px solid #e4e7eb;text-align:left}
.warning{background:#fff3c4;border:1px solid #f0b429;padding:.75rem 1rem;border-radius:6px;margin-bottom:1rem}
.status{font-size:.8rem;opacity:.8}
`

type option struct {
	signal string
	label  string
	values []string
}

// Dashboard is the single page. Filter widgets are bound to Datastar
// signals; any change re-requests /sse/overview, which patches the panels.
func Dashboard(opts models.FilterOptions) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>UrbanMart Sales Dashboard</title>`)
		fmt.Fprintf(&b, `<script type="module" src="%s"></script>`, datastarScript)
		fmt.Fprintf(&b, `<style>%s</style></head>`, styles)

		fmt.Fprintf(&b, `<body data-signals="{from: '%s', to: '%s', range: '', channel: 'all', stores: [], categories: [], segments: [], payments: [], granularity: 'daily'}" data-init="@get('/sse/overview')">`,
			esc(opts.MinDate), esc(opts.MaxDate))
		b.WriteString(`<header><h1>UrbanMart Sales Dashboard</h1><div id="status" class="status"></div></header>`)

		b.WriteString(`<form class="filters" data-on:change="@get('/sse/overview')" onsubmit="return false">`)
		fmt.Fprintf(&b, `<label>From<input type="date" data-bind="from" min="%s" max="%s"></label>`, esc(opts.MinDate), esc(opts.MaxDate))
		fmt.Fprintf(&b, `<label>To<input type="date" data-bind="to" min="%s" max="%s"></label>`, esc(opts.MinDate), esc(opts.MaxDate))
		b.WriteString(`<label>Quick range<select data-bind="range"><option value="">Custom</option>` +
			`<option value="last_7_days">Last 7 days</option><option value="last_month">Last 30 days</option>` +
			`<option value="this_month">This month</option><option value="all_time">All time</option></select></label>`)
		b.WriteString(`<label>Granularity<select data-bind="granularity"><option value="daily">Daily</option>` +
			`<option value="weekly">Weekly</option><option value="monthly">Monthly</option>` +
			`<option value="quarterly">Quarterly</option><option value="yearly">Yearly</option></select></label>`)

		b.WriteString(`<label>Channel<select data-bind="channel"><option value="all">All</option>`)
		for _, c := range opts.Channels {
			fmt.Fprintf(&b, `<option value="%s">%s</option>`, esc(c), esc(c))
		}
		b.WriteString(`</select></label>`)

		for _, o := range []option{
			{"stores", "Stores", opts.Stores},
			{"categories", "Categories", opts.Categories},
			{"segments", "Segments", opts.Segments},
			{"payments", "Payment methods", opts.PaymentMethods},
		} {
			fmt.Fprintf(&b, `<label>%s<select multiple data-bind="%s">`, esc(o.label), o.signal)
			for _, v := range o.values {
				fmt.Fprintf(&b, `<option value="%s">%s</option>`, esc(v), esc(v))
			}
			b.WriteString(`</select></label>`)
		}
		b.WriteString(`<button type="button" data-on:click="@get('/sse/refresh-all')">Refresh data</button></form>`)

		fmt.Fprintf(&b, `<main><div id="%s"></div><div id="%s" class="kpi-grid"></div><div class="panels">`, WarningID, KPIsID)
		for _, id := range []string{
			TrendID, StoresID, CategoriesID, ChannelsID, SegmentsID, PaymentsID,
			DayOfWeekID, TopProductsID, BottomProductsID, TopCustomersID, BasketsID,
		} {
			fmt.Fprintf(&b, `<section id="%s" class="panel"></section>`, id)
		}
		b.WriteString(`</div></main></body></html>`)
		return writeString(w, &b)
	})
}
