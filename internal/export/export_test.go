package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/models"
)

func rows() []models.GroupResult {
	return []models.GroupResult{
		{Keys: []string{"A", "Grocery"}, Label: "A / Grocery", Revenue: 24, Profit: 16.5, Quantity: 3, Transactions: 1},
		{Keys: []string{"B", "Grocery"}, Label: "B / Grocery", Revenue: 6, Profit: 4.2, Quantity: 3, Transactions: 1},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, CSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, XLSX, f)
	assert.Equal(t, ".xlsx", f.Extension())

	_, err = ParseFormat("pdf")
	assert.True(t, errors.HasCode(err, errors.CodeValidation))
}

func TestDimensionsNormalised(t *testing.T) {
	assert.Equal(t, []string{"store_location", "product_category"}, Dimensions(" Store_Location, PRODUCT_category ,"))
	assert.Nil(t, Dimensions(""))
}

func TestGroupsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Groups(&buf, CSV, []string{"store_location", "product_category"}, rows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"store_location", "product_category", "line_revenue"}, records[0][:3])
	assert.Equal(t, []string{"A", "Grocery", "24"}, records[1][:3])
	assert.Equal(t, "16.5", records[1][6])
}

func TestGroupsCSVTotal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Groups(&buf, CSV, nil, []models.GroupResult{{Label: "Total", Revenue: 30}}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "group", records[0][0])
	assert.Equal(t, []string{"Total", "30"}, records[1][:2])
}

func TestGroupsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Groups(&buf, XLSX, []string{"store_location", "product_category"}, rows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Breakdown")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Store Location", got[0][0])
	assert.Equal(t, "Line Revenue", got[0][2])
	assert.Equal(t, []string{"B", "Grocery", "6"}, got[2][:3])
}
