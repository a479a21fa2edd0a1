package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// sheetTables returns one table per sheet of an XLSX workbook.
func sheetTables(data []byte) ([]Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook: %w", err)
	}
	defer f.Close()

	var tables []Table
	for i, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("cannot read sheet %q: %w", sheet, err)
		}
		tables = append(tables, Table{Page: i + 1, Rows: rows})
	}
	return tables, nil
}

// csvTables returns the single table of a CSV file.
func csvTables(data []byte) ([]Table, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // UTF-8 BOM written by spreadsheet exports
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read csv: %w", err)
	}
	return []Table{{Page: 1, Rows: rows}}, nil
}
