package parser

import (
	"strings"
)

// Table is a grid of cells extracted from one page or one sheet.
type Table struct {
	Page int // 1-based page or sheet number
	Rows [][]string
}

// column identifies the role of a table column.
type column int

const (
	colCaseID column = iota
	colPaymentType
	colAmount
	colDate
	colField // fixed case fields start here, offset by commission.Field
)

// region is the part of a table below a recognized header row.
type region struct {
	table  Table
	header int            // header row index
	end    int            // index after the last row of the region
	cols   map[column]int // column role to cell index
}

// value returns the trimmed cell of row for column c, "" if the column is absent.
func (r region) value(row int, c column) string {
	i, ok := r.cols[c]
	if !ok {
		return ""
	}
	cells := r.table.Rows[row]
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

// has reports whether the region carries column c.
func (r region) has(c column) bool {
	_, ok := r.cols[c]
	return ok
}

// isBlank reports whether every cell of row is blank.
func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// locate returns the index of the cell matching aliases in row, or -1.
func locate(row []string, aliases []string) int {
	for i, cell := range row {
		if matches(cell, aliases) {
			return i
		}
	}
	return -1
}
