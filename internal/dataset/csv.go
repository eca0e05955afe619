package dataset

import (
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"urbanmart-dashboard/internal/errors"
	"urbanmart-dashboard/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadRecords parses CSV content into raw records. The header must carry
// every column in models.Columns; order is free and extra columns are
// ignored.
func ReadRecords(data []byte) ([]models.RawRecord, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, errors.MissingColumn(models.Columns[0])
	}
	if err != nil {
		return nil, errors.DataFormat("header", "", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range models.Columns {
		if _, ok := index[col]; !ok {
			return nil, errors.MissingColumn(col)
		}
	}

	var records []models.RawRecord
	for {
		row, err := r.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if stderrors.As(err, &parseErr) {
				return nil, errors.DataFormat("line", fmt.Sprint(parseErr.Line), err)
			}
			return nil, errors.DataFormat("row", "", err)
		}
		records = append(records, models.RecordFromRow(row, index))
	}
	return records, nil
}
