package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/models"
	"urbanmart-dashboard/internal/services"
)

// Engine is the part of the analytics facade the menu queries.
type Engine interface {
	Summary(ctx context.Context, q services.Query) (models.Summary, error)
	Breakdown(ctx context.Context, q services.Query, b services.Breakdown) ([]models.GroupResult, error)
	TopN(ctx context.Context, q services.Query, groupBy, measure string, n int, order string) ([]models.GroupResult, error)
}

type Menu struct {
	engine Engine
	query  services.Query
	in     *bufio.Scanner
	out    io.Writer
}

// NewMenu runs every choice against q, so flags given on the command line
// narrow the whole session.
func NewMenu(engine Engine, q services.Query, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		engine: engine,
		query:  q,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

func (m *Menu) show() {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, rule("="))
	fmt.Fprintln(m.out, TitleStyle.Render("URBANMART ANALYTICS MENU"))
	fmt.Fprintln(m.out, rule("="))
	fmt.Fprintln(m.out, "1. Show Total Revenue")
	fmt.Fprintln(m.out, "2. Show Revenue by Store")
	fmt.Fprintf(m.out, "3. Show Top %d Products\n", services.DefaultTopN)
	fmt.Fprintln(m.out, "4. Exit")
	fmt.Fprintln(m.out, rule("="))
	fmt.Fprint(m.out, PromptStyle.Render("Enter your choice (1-4): "))
}

// Run loops until the user exits, input ends or ctx is cancelled. Query
// failures are printed and the menu shown again.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(m.out, SubtleStyle.Render("Exiting... Goodbye!"))
			return nil
		}

		m.show()
		if !m.in.Scan() {
			fmt.Fprintln(m.out)
			if err := m.in.Err(); err != nil {
				return fmt.Errorf("read menu choice: %w", err)
			}
			fmt.Fprintln(m.out, SubtleStyle.Render("Exiting... Goodbye!"))
			return nil
		}

		var err error
		switch strings.TrimSpace(m.in.Text()) {
		case "1":
			err = m.totalRevenue(ctx)
		case "2":
			err = m.revenueByStore(ctx)
		case "3":
			err = m.topProducts(ctx)
		case "4":
			fmt.Fprintln(m.out, TitleStyle.Render("Thank you for using UrbanMart Analytics!"))
			return nil
		default:
			Warning(m.out, "Invalid choice! Please enter a number between 1 and 4.")
			continue
		}
		m.report(err)
	}
}

func (m *Menu) report(err error) {
	switch {
	case err == nil:
	case errors.HasCode(err, errors.CodeEmptyResult):
		Warning(m.out, "No data available for the selected filters.")
	default:
		Error(m.out, err)
	}
}

func (m *Menu) totalRevenue(ctx context.Context) error {
	s, err := m.engine.Summary(ctx, m.query)
	if err != nil {
		return err
	}
	TotalRevenue(m.out, s.Revenue)
	return nil
}

func (m *Menu) revenueByStore(ctx context.Context) error {
	rows, err := m.engine.Breakdown(ctx, m.query, services.Breakdown{GroupBy: "store_location"})
	if err != nil {
		return err
	}
	Groups(m.out, "Revenue by Store", rows, false)
	return nil
}

func (m *Menu) topProducts(ctx context.Context) error {
	rows, err := m.engine.TopN(ctx, m.query, "product_name", "", services.DefaultTopN, "")
	if err != nil {
		return err
	}
	Groups(m.out, fmt.Sprintf("Top %d Products by Revenue", services.DefaultTopN), rows, true)
	return nil
}
