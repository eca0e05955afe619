package cli

import (
	"fmt"
	"io"
	"strings"

	"urbanmart-dashboard/internal/format"
	"urbanmart-dashboard/internal/models"
)

func title(w io.Writer, text string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render(strings.ToUpper(text)))
	fmt.Fprintln(w, rule("-"))
}

func line(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s: %s\n", LabelStyle.Render(label), ValueStyle.Render(value))
}

// Warning prints a non-fatal condition such as an empty selection.
func Warning(w io.Writer, message string) {
	fmt.Fprintln(w, WarningStyle.Render("! "+message))
}

func Error(w io.Writer, err error) {
	fmt.Fprintln(w, ErrorStyle.Render("x "+err.Error()))
}

func TotalRevenue(w io.Writer, total float64) {
	title(w, "Total Revenue")
	line(w, "Total Revenue", format.Currency(total))
}

// Groups prints one row per group, ranked when numbered is set.
func Groups(w io.Writer, heading string, rows []models.GroupResult, numbered bool) {
	title(w, heading)
	if len(rows) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("no rows"))
		return
	}
	for i, r := range rows {
		label := r.Label
		if numbered {
			label = fmt.Sprintf("%d. %s", i+1, r.Label)
		}
		line(w, label, format.Currency(r.Revenue))
	}
}

func Summary(w io.Writer, s models.Summary) {
	title(w, "Sales Summary")
	line(w, "Net Revenue", format.Currency(s.Revenue))
	line(w, "Gross Revenue", format.Currency(s.GrossRevenue))
	line(w, "Discounts", format.Currency(s.Discount))
	line(w, "Discount Rate", format.Percent(s.DiscountRate))
	line(w, "Cost", format.Currency(s.Cost))
	line(w, "Profit", format.Currency(s.Profit))
	line(w, "Profit Margin", format.Percent(s.ProfitMargin))
	line(w, "Transactions", format.Count(s.Transactions))
	line(w, "Customers", format.Count(s.Customers))
	line(w, "Line Items", format.Count(s.LineItems))
	line(w, "Units Sold", format.Count(s.Units))
	line(w, "Avg Order Value", format.Currency(s.AvgOrderValue))
	line(w, "Transactions per Customer", format.Decimal(s.TransactionsPerCustomer))
	line(w, "Customer Lifetime Value", format.Currency(s.CustomerLifetimeValue))
	line(w, "Repeat Customer Rate", format.Percent(s.RepeatCustomerRate))
}

// SanityChecks prints the loaded table's size, stores and date bounds.
func SanityChecks(w io.Writer, opts models.FilterOptions) {
	title(w, "Basic Sanity Checks")
	line(w, "Total number of rows", format.Count(opts.Rows))
	line(w, "Store locations", strings.Join(opts.Stores, ", "))
	if opts.MinDate != "" {
		line(w, "Date range", opts.MinDate+" to "+opts.MaxDate)
	}
}
