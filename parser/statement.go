package parser

import (
	"errors"
	"log"

	"github.com/etnz/commission"
	"github.com/etnz/commission/date"
)

// statementRegions finds every payment table in tables.
//
// A header row is a row holding a case id, a payment type and an amount column. A new
// header row closes the previous region, so a page may hold several tables and a table
// may be repeated on every page.
func statementRegions(tables []Table, m StatementMapping) []region {
	var regions []region
	for _, t := range tables {
		var current *region
		for i, row := range t.Rows {
			cols, ok := statementHeader(row, m)
			if !ok {
				continue
			}
			if current != nil {
				current.end = i
				regions = append(regions, *current)
			}
			current = &region{table: t, header: i, cols: cols}
		}
		if current != nil {
			current.end = len(t.Rows)
			regions = append(regions, *current)
		}
	}
	return regions
}

func statementHeader(row []string, m StatementMapping) (map[column]int, bool) {
	cols := make(map[column]int)
	for c, aliases := range map[column][]string{
		colCaseID:      m.CaseID,
		colPaymentType: m.PaymentType,
		colAmount:      m.Amount,
		colDate:        m.Date,
	} {
		if i := locate(row, aliases); i >= 0 {
			cols[c] = i
		}
	}
	_, hasID := cols[colCaseID]
	_, hasType := cols[colPaymentType]
	_, hasAmount := cols[colAmount]
	return cols, hasID && hasType && hasAmount
}

// decodePayment decodes the row of a statement region into a Payment.
func decodePayment(doc string, r region, row int) (commission.Record, error) {
	rowErr := func(reason commission.SkipReason, value string) (commission.Record, error) {
		err := &commission.RowError{Document: doc, Row: row + 1, Reason: reason, Value: value}
		log.Printf("page %d: %v", r.table.Page, err)
		return nil, err
	}

	id := r.value(row, colCaseID)
	if id == "" {
		return rowErr(commission.SkipMissingCaseID, "")
	}
	paymentType := r.value(row, colPaymentType)
	if paymentType == "" {
		return rowErr(commission.SkipMissingType, "")
	}
	raw := r.value(row, colAmount)
	amount, err := commission.ParseAmount(raw)
	switch {
	case errors.Is(err, commission.ErrEmptyAmount):
		return rowErr(commission.SkipMissingAmount, "")
	case err != nil:
		return rowErr(commission.SkipInvalidAmount, raw)
	}

	p := commission.Payment{CaseID: id, Type: paymentType, Amount: amount}
	if d := r.value(row, colDate); d != "" {
		if on, err := date.Parse(d); err == nil {
			p.Date = on
		}
	}
	return p, nil
}
