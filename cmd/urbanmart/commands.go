package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"urbanmart-dashboard/internal/cli"
	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/export"
	"urbanmart-dashboard/internal/models"
	"urbanmart-dashboard/internal/services"
)

// filterFlags are the shared filter widgets of the dashboard, as flags.
type filterFlags struct {
	from, to, quickRange, channel string
	stores, categories, segments  []string
	payments                      []string
}

func (f *filterFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.from, "from", "", "first day, YYYY-MM-DD (default: earliest date)")
	flags.StringVar(&f.to, "to", "", "last day, YYYY-MM-DD (default: latest date)")
	flags.StringVar(&f.quickRange, "range", "", "quick range: last_7_days, last_month, this_month, all_time")
	flags.StringVar(&f.channel, "channel", "all", "channel, or all")
	flags.StringSliceVar(&f.stores, "store", nil, "store locations to include (repeatable)")
	flags.StringSliceVar(&f.categories, "category", nil, "product categories to include (repeatable)")
	flags.StringSliceVar(&f.segments, "segment", nil, "customer segments to include (repeatable)")
	flags.StringSliceVar(&f.payments, "payment", nil, "payment methods to include (repeatable)")
}

func (f *filterFlags) query() services.Query {
	return services.Query{
		From:       f.from,
		To:         f.to,
		Range:      f.quickRange,
		Stores:     f.stores,
		Channel:    f.channel,
		Categories: f.categories,
		Segments:   f.segments,
		Payments:   f.payments,
	}
}

// warnEmpty turns an empty selection into a printed warning and a clean exit.
func (a *app) warnEmpty(err error) error {
	if errors.HasCode(err, errors.CodeEmptyResult) {
		cli.Warning(a.stdout, "No data available for the selected filters.")
		return nil
	}
	return err
}

func (a *app) menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu: total revenue, revenue by store, top products",
		Args:  cobra.NoArgs,
		RunE:  a.runMenu,
	}
}

func (a *app) runMenu(cmd *cobra.Command, _ []string) error {
	opts, err := a.analytics.Options(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, cli.TitleStyle.Render("Welcome to UrbanMart Sales Analysis"))
	cli.SanityChecks(a.stdout, opts)
	return cli.NewMenu(a.analytics, a.filters.query(), a.stdin, a.stdout).Run(cmd.Context())
}

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the KPI summary for the selected filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.analytics.Summary(cmd.Context(), a.filters.query())
			if err != nil {
				return a.warnEmpty(err)
			}
			cli.Summary(a.stdout, s)
			return nil
		},
	}
}

func (a *app) topCmd() *cobra.Command {
	var (
		by, measure, order string
		n                  int
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank groups by a measure",
		Example: `  urbanmart top
  urbanmart top --by customer_id -n 10
  urbanmart top --by product_name --measure profit --order asc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.analytics.TopN(cmd.Context(), a.filters.query(), by, measure, n, order)
			if err != nil {
				return a.warnEmpty(err)
			}
			heading := fmt.Sprintf("Top %d by %s", n, by)
			if order == "asc" || order == "bottom" {
				heading = fmt.Sprintf("Bottom %d by %s", n, by)
			}
			cli.Groups(a.stdout, heading, rows, true)
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", "product_name", "grouping dimension(s), comma-separated")
	cmd.Flags().StringVar(&measure, "measure", "line_revenue", "measure to rank by")
	cmd.Flags().StringVar(&order, "order", "desc", "desc for top, asc for bottom")
	cmd.Flags().IntVarP(&n, "n", "n", services.DefaultTopN, "number of groups")
	return cmd
}

func (a *app) breakdownCmd() *cobra.Command {
	var b services.Breakdown
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Group revenue by one or more dimensions",
		Example: `  urbanmart breakdown --by store_location
  urbanmart breakdown --by store_location,product_category --range last_month`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.analytics.Breakdown(cmd.Context(), a.filters.query(), b)
			if err != nil {
				return a.warnEmpty(err)
			}
			cli.Groups(a.stdout, "Revenue by "+b.GroupBy, rows, false)
			return nil
		},
	}
	cmd.Flags().StringVar(&b.GroupBy, "by", "store_location", "grouping dimension(s), comma-separated")
	cmd.Flags().StringVar(&b.Measure, "measure", "", "measure to order by (default line_revenue)")
	cmd.Flags().StringVar(&b.Order, "order", "", "asc or desc (default desc)")
	cmd.Flags().IntVar(&b.Limit, "limit", 0, "keep only the first N groups")
	return cmd
}

func (a *app) trendCmd() *cobra.Command {
	var granularity string
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Revenue over time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.analytics.Trend(cmd.Context(), a.filters.query(), granularity, "")
			if err != nil {
				return a.warnEmpty(err)
			}
			cli.Groups(a.stdout, granularity+" revenue trend", rows, false)
			return nil
		},
	}
	cmd.Flags().StringVar(&granularity, "granularity", "monthly", "daily, weekly, monthly, quarterly or yearly")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		b          services.Breakdown
		formatName string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a breakdown to CSV or XLSX",
		Example: `  urbanmart export --by store_location,product_category -o breakdown.xlsx
  urbanmart export --by channel --format csv > channels.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if formatName == "" && strings.EqualFold(filepath.Ext(output), export.XLSX.Extension()) {
				formatName = string(export.XLSX)
			}
			f, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			rows, err := a.analytics.Breakdown(cmd.Context(), a.filters.query(), b)
			if err != nil && !errors.HasCode(err, errors.CodeEmptyResult) {
				return err
			}
			if err != nil {
				cli.Warning(a.stderr, "No data available for the selected filters; writing header only.")
				rows = []models.GroupResult{}
			}
			return a.writeExport(output, f, b.GroupBy, rows)
		},
	}
	cmd.Flags().StringVar(&b.GroupBy, "by", "store_location", "grouping dimension(s), comma-separated")
	cmd.Flags().StringVar(&b.Measure, "measure", "", "measure to order by (default line_revenue)")
	cmd.Flags().StringVar(&b.Order, "order", "", "asc or desc (default desc)")
	cmd.Flags().StringVar(&formatName, "format", "", "csv or xlsx (default: from --output extension, else csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) writeExport(output string, f export.Format, groupBy string, rows []models.GroupResult) error {
	dims := export.Dimensions(groupBy)
	if output == "" {
		w := bufio.NewWriter(a.stdout)
		if err := export.Groups(w, f, dims, rows); err != nil {
			return err
		}
		return w.Flush()
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := export.Groups(file, f, dims, rows); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", output, err)
	}
	fmt.Fprintln(a.stderr, cli.SubtleStyle.Render(fmt.Sprintf("wrote %d rows to %s", len(rows), output)))
	return nil
}
