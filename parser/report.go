package parser

import (
	"log"

	"github.com/etnz/commission"
)

// headerSearchDepth is how many leading rows of a report table may precede its header
// (titles, export dates, ...).
const headerSearchDepth = 10

// reportRegions finds the case table of every sheet of a report.
func reportRegions(tables []Table, m ReportMapping) []region {
	var regions []region
	for _, t := range tables {
		for i, row := range t.Rows {
			if i >= headerSearchDepth {
				break
			}
			if cols, ok := reportHeader(row, m); ok {
				regions = append(regions, region{table: t, header: i, end: len(t.Rows), cols: cols})
				break
			}
		}
	}
	return regions
}

func reportHeader(row []string, m ReportMapping) (map[column]int, bool) {
	id := locate(row, m.CaseID)
	if id < 0 {
		return nil, false
	}
	cols := map[column]int{colCaseID: id}
	for header, aliases := range m.Fields {
		f, ok := commission.FieldByHeader(header)
		if !ok {
			continue
		}
		if i := locate(row, aliases); i >= 0 {
			cols[colField+column(f)] = i
		}
	}
	return cols, true
}

// decodeReport decodes the row of a report region into a Report.
func decodeReport(doc string, r region, row int) (commission.Record, error) {
	id := r.value(row, colCaseID)
	if id == "" {
		err := &commission.RowError{Document: doc, Row: row + 1, Reason: commission.SkipMissingCaseID}
		log.Printf("sheet %d: %v", r.table.Page, err)
		return nil, err
	}
	rep := commission.Report{CaseID: id}
	for _, f := range commission.AllFields() {
		c := colField + column(f)
		if !r.has(c) {
			continue
		}
		rep.Fields[f] = r.value(row, c)
		rep.Has = rep.Has.With(f)
	}
	return rep, nil
}
