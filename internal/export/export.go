package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/format"
	"urbanmart-dashboard/internal/models"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CSV, nil
	case CSV, XLSX:
		return f, nil
	default:
		return "", errors.Validation(fmt.Sprintf("unknown export format %q", s))
	}
}

func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Dimensions splits a comma-separated grouping key into header names,
// normalised the way dimension names are parsed.
func Dimensions(groupBy string) []string {
	var dims []string
	for _, d := range strings.Split(groupBy, ",") {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			dims = append(dims, d)
		}
	}
	return dims
}

var measureColumns = []string{
	"line_revenue", "gross_revenue", "discount_applied", "cost", "profit",
	"profit_margin_pct", "discount_rate_pct", "quantity", "line_items",
	"transactions", "customers", "avg_transaction_value", "avg_items_per_transaction",
}

func header(dimensions []string) []string {
	cols := make([]string, 0, len(dimensions)+len(measureColumns))
	if len(dimensions) == 0 {
		cols = append(cols, "group")
	}
	cols = append(cols, dimensions...)
	return append(cols, measureColumns...)
}

func keys(r models.GroupResult) []string {
	if len(r.Keys) == 0 {
		return []string{r.Label}
	}
	return r.Keys
}

func measures(r models.GroupResult) []float64 {
	return []float64{
		r.Revenue, r.GrossRevenue, r.Discount, r.Cost, r.Profit,
		r.ProfitMargin, r.DiscountRate, float64(r.Quantity), float64(r.LineItems),
		float64(r.Transactions), float64(r.Customers), r.AvgTransactionValue, r.AvgItemsPerTransaction,
	}
}

// Groups writes rows in the chosen format, one column per grouping
// dimension followed by every measure.
func Groups(w io.Writer, f Format, dimensions []string, rows []models.GroupResult) error {
	switch f {
	case XLSX:
		return writeXLSX(w, dimensions, rows)
	default:
		return writeCSV(w, dimensions, rows)
	}
}

func writeCSV(w io.Writer, dimensions []string, rows []models.GroupResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(dimensions)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := append([]string{}, keys(r)...)
		for _, v := range measures(r) {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Breakdown"

func writeXLSX(w io.Writer, dimensions []string, rows []models.GroupResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	cols := header(dimensions)
	titles := make([]any, len(cols))
	for i, c := range cols {
		titles[i] = format.Title(c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &titles); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]any, 0, len(cols))
		for _, k := range keys(r) {
			values = append(values, k)
		}
		for _, v := range measures(r) {
			values = append(values, v)
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(cols))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
