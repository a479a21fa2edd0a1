package commission

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Ledger workbook layout.
const (
	casesSheet     = "Cases"
	documentsSheet = "Documents"
)

var documentsHeader = []any{"Fingerprint", "Name", "Kind", "RunID", "ReconciledAt"}

// EncodeLedger writes the ledger as an XLSX workbook.
//
// Sheet "Cases" holds one row per case: the CaseID column, the fixed fields, then one
// column per payment type in ledger order. Sheet "Documents" holds the reconciled
// documents history.
func EncodeLedger(w io.Writer, l *Ledger) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), casesSheet); err != nil {
		return fmt.Errorf("cannot create sheet %q: %w", casesSheet, err)
	}
	pts := l.PaymentTypes()

	header := []any{CaseIDHeader}
	for _, fd := range AllFields() {
		header = append(header, fd.String())
	}
	for _, pt := range pts {
		header = append(header, pt)
	}
	if err := setRow(f, casesSheet, 1, header); err != nil {
		return err
	}

	rowNum := 2
	for c := range l.Cases() {
		row := []any{c.ID}
		for _, v := range c.Fields {
			row = append(row, v)
		}
		if err := setRow(f, casesSheet, rowNum, row); err != nil {
			return err
		}
		// amounts are written as their exact decimal text in numeric cells.
		for i, pt := range pts {
			v, ok := c.Payments[pt]
			if !ok {
				continue
			}
			name, err := excelize.CoordinatesToCellName(len(row)+i+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellDefault(casesSheet, name, v.String()); err != nil {
				return fmt.Errorf("cannot write %s %s: %w", casesSheet, name, err)
			}
		}
		rowNum++
	}

	if _, err := f.NewSheet(documentsSheet); err != nil {
		return fmt.Errorf("cannot create sheet %q: %w", documentsSheet, err)
	}
	if err := setRow(f, documentsSheet, 1, documentsHeader); err != nil {
		return err
	}
	for i, e := range l.Documents() {
		row := []any{e.Fingerprint, e.Name, e.Kind.String(), e.RunID, e.ReconciledAt.UTC().Format(time.RFC3339)}
		if err := setRow(f, documentsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("cannot write ledger workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("cannot write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// DecodeLedger reads a ledger workbook written by EncodeLedger.
//
// When there is no "Cases" sheet the first sheet is used, so a plain spreadsheet with a
// CaseID column can seed a ledger. Columns that are neither CaseID nor a fixed field are
// payment types, kept in their column order.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger workbook: %w", err)
	}
	defer f.Close()

	sheet := casesSheet
	if idx, _ := f.GetSheetIndex(casesSheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q: %w", sheet, err)
	}

	l := NewLedger()
	if len(rows) == 0 {
		return l, nil
	}
	if err := decodeCases(l, rows); err != nil {
		return nil, err
	}

	if idx, _ := f.GetSheetIndex(documentsSheet); idx >= 0 {
		docs, err := f.GetRows(documentsSheet)
		if err != nil {
			return nil, fmt.Errorf("cannot read sheet %q: %w", documentsSheet, err)
		}
		if err := decodeDocuments(l, docs); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func decodeCases(l *Ledger, rows [][]string) error {
	idCol := -1
	fieldCols := make(map[int]Field)
	paymentCols := make(map[int]string)
	var seen FieldSet
	// the first column with a reserved header holds it, later ones are payments.
	for i, h := range rows[0] {
		switch fd, ok := FieldByHeader(h); {
		case idCol < 0 && normalizeHeader(h) == normalizeHeader(CaseIDHeader):
			idCol = i
		case ok && !seen.Has(fd):
			fieldCols[i] = fd
			seen = seen.With(fd)
		case h != "":
			paymentCols[i] = h
			l.DeclarePaymentType(h)
		}
	}
	if idCol < 0 {
		return fmt.Errorf("ledger has no %q column", CaseIDHeader)
	}

	for n, row := range rows[1:] {
		id := cell(row, idCol)
		if id == "" {
			continue
		}
		if l.Has(id) {
			return fmt.Errorf("ledger row %d: duplicate case %q", n+2, id)
		}
		c := Case{ID: id, Payments: make(map[string]decimal.Decimal)}
		for col, fd := range fieldCols {
			c.Fields[fd] = cell(row, col)
		}
		for col, pt := range paymentCols {
			v := cell(row, col)
			if v == "" {
				continue
			}
			amount, err := decimal.NewFromString(v)
			if err != nil {
				return fmt.Errorf("ledger row %d: invalid %q amount %q: %w", n+2, pt, v, err)
			}
			c.Payments[pt] = amount
		}
		l.Upsert(c)
	}
	return nil
}

func decodeDocuments(l *Ledger, rows [][]string) error {
	for n, row := range rows {
		if n == 0 || cell(row, 0) == "" {
			continue // header
		}
		kind, _ := ParseKind(cell(row, 2))
		e := DocumentEntry{
			Fingerprint: cell(row, 0),
			Name:        cell(row, 1),
			Kind:        kind,
			RunID:       cell(row, 3),
		}
		if at := cell(row, 4); at != "" {
			t, err := time.Parse(time.RFC3339, at)
			if err != nil {
				return fmt.Errorf("documents row %d: invalid time %q: %w", n+1, at, err)
			}
			e.ReconciledAt = t
		}
		l.RecordDocument(e)
	}
	return nil
}

// cell returns the trimmed value of row at col, "" when the row is too short.
func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
