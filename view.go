package commission

import (
	"github.com/shopspring/decimal"
)

// View is the derived, read-only table of a ledger, ready to be formatted.
type View struct {
	Columns      []string // CaseID, fixed fields, then payment types
	PaymentTypes []string
	Rows         []ViewRow
	Total        Money // sum of every payment of every case
	Completed    int   // number of cases in the terminal status
	Cases        int
}

// ViewRow is one case of a View.
type ViewRow struct {
	CaseID   string
	Fields   []string // fixed field values, in AllFields() order
	Payments []Money  // payment values, in PaymentTypes order
	Changed  bool     // touched by the current run
	Complete bool     // in the terminal status
}

// Highlight reports whether the row deserves visual emphasis.
func (r ViewRow) Highlight() bool { return r.Changed || r.Complete }

// Cells returns all the row values as display strings, in View.Columns order.
func (r ViewRow) Cells() []string {
	cells := make([]string, 0, 1+len(r.Fields)+len(r.Payments))
	cells = append(cells, r.CaseID)
	cells = append(cells, r.Fields...)
	for _, p := range r.Payments {
		cells = append(cells, p.Cell())
	}
	return cells
}

// Render builds the View of l. Rows of cases in changed are flagged as changed.
//
// Render has no side effect, rendering the same ledger twice gives the same view.
func Render(l *Ledger, changed CaseSet) *View {
	cur := l.Currency()
	pts := l.PaymentTypes()
	v := &View{
		PaymentTypes: pts,
		Total:        M(decimal.Zero, cur),
	}
	v.Columns = append(v.Columns, CaseIDHeader)
	for _, f := range AllFields() {
		v.Columns = append(v.Columns, f.String())
	}
	v.Columns = append(v.Columns, pts...)

	for c := range l.Cases() {
		row := ViewRow{
			CaseID:   c.ID,
			Fields:   c.Fields[:],
			Changed:  changed.Has(c.ID),
			Complete: c.IsComplete(),
		}
		for _, pt := range pts {
			row.Payments = append(row.Payments, M(c.Payment(pt), cur))
		}
		v.Total = v.Total.Add(M(c.Total(), cur))
		if row.Complete {
			v.Completed++
		}
		v.Rows = append(v.Rows, row)
	}
	v.Cases = len(v.Rows)
	return v
}
