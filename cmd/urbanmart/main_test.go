package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"urbanmart-dashboard/internal/errors"
)

const sample = "transaction_id,bill_id,date,store_id,store_location,customer_id,customer_segment,product_id,product_category,product_name,quantity,unit_price,payment_method,discount_applied,channel\n" +
	"T1,B1,2025-01-06,S1,Downtown,C1,Regular,P1,Grocery,Rice,2,10,Cash,0,In-store\n" +
	"T1,B1,2025-01-06,S1,Downtown,C1,Regular,P2,Snacks,Chips,1,5,Cash,1,In-store\n" +
	"T2,B2,2025-01-07,S2,Uptown,C2,Student,P3,Grocery,Milk,3,2,UPI,0,Online\n" +
	"T3,B3,2025-02-10,S1,Downtown,C1,Regular,P4,Beverages,Tea,1,8,Card,0,Online\n" +
	"T4,B4,2025-02-14,S2,Uptown,C3,Premium,P1,Grocery,Rice,5,10,Card,5,In-store\n"

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "urbanmart_sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSummaryCommand(t *testing.T) {
	out, _, err := execute(t, "", "--data", writeSample(t), "summary")
	require.NoError(t, err)

	assert.Contains(t, out, "SALES SUMMARY")
	assert.Contains(t, out, "$83.00")
}

func TestSummaryCommandFilters(t *testing.T) {
	out, _, err := execute(t, "", "--data", writeSample(t), "summary", "--store", "Uptown", "--channel", "In-store")
	require.NoError(t, err)

	assert.Contains(t, out, "$45.00")
}

func TestTopCommand(t *testing.T) {
	out, _, err := execute(t, "", "--data", writeSample(t), "top", "-n", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "1. Rice")
	assert.Contains(t, out, "2. Tea")
	assert.NotContains(t, out, "Milk")
}

func TestBreakdownCommand(t *testing.T) {
	out, _, err := execute(t, "", "--data", writeSample(t), "breakdown", "--by", "store_location", "--from", "2025-02-01")
	require.NoError(t, err)

	assert.Contains(t, out, "Uptown")
	assert.Contains(t, out, "$45.00")
	assert.Contains(t, out, "$8.00")
}

func TestTrendCommand(t *testing.T) {
	out, _, err := execute(t, "", "--data", writeSample(t), "trend", "--granularity", "monthly")
	require.NoError(t, err)

	assert.Less(t, strings.Index(out, "2025-01"), strings.Index(out, "2025-02"))
}

func TestExportCommandStdout(t *testing.T) {
	out, _, err := execute(t, "", "--data", writeSample(t), "export", "--by", "channel")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "channel,line_revenue"))
}

func TestExportCommandXLSXFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "breakdown.xlsx")
	_, stderr, err := execute(t, "", "--data", writeSample(t), "export", "--by", "store_location,product_category", "-o", dst)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote 4 rows")

	f, err := excelize.OpenFile(dst)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Breakdown")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestMenuCommand(t *testing.T) {
	out, _, err := execute(t, "1\n2\n3\n4\n", "--data", writeSample(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Welcome to UrbanMart Sales Analysis")
	assert.Contains(t, out, "Downtown, Uptown")
	assert.Contains(t, out, "$83.00")
	assert.Contains(t, out, "1. Rice")
	assert.Contains(t, out, "Thank you for using UrbanMart Analytics!")
}

func TestEmptySelectionWarns(t *testing.T) {
	out, _, err := execute(t, "", "--data", writeSample(t), "summary", "--segment", "Nobody")
	require.NoError(t, err)

	assert.Contains(t, out, "No data available for the selected filters.")
}

func TestInvalidRangeFails(t *testing.T) {
	_, _, err := execute(t, "", "--data", writeSample(t), "summary", "--from", "2025-03-01", "--to", "2025-01-01")
	require.Error(t, err)

	assert.True(t, errors.HasCode(err, errors.CodeInvalidRange))
}

func TestMissingSourceFails(t *testing.T) {
	_, stderr, err := execute(t, "", "--data", filepath.Join(t.TempDir(), "absent.csv"), "summary")
	require.Error(t, err)

	assert.True(t, errors.HasCode(err, errors.CodeSourceNotFound))
	assert.Contains(t, stderr, "not found")
}
