package commission

import (
	"iter"

	"github.com/etnz/commission/date"
	"github.com/shopspring/decimal"
)

// Record is a flat record extracted from a document.
// It is either a Payment or a Report.
type Record interface {
	// Case returns the identifier of the case the record is about.
	Case() string
	isRecord()
}

// Payment is a payment line of a commission statement.
type Payment struct {
	CaseID string
	Type   string          // payment type, like "Proc Fee"
	Amount decimal.Decimal // non-negative, major units
	Date   date.Date       // statement line date, zero if not reported
}

func (p Payment) Case() string { return p.CaseID }
func (Payment) isRecord()      {}

// Report is a case line of an introducer report: a full or partial snapshot of the
// case fixed fields.
type Report struct {
	CaseID string
	Fields Fields
	Has    FieldSet // fields actually present in the report
}

func (r Report) Case() string { return r.CaseID }
func (Report) isRecord()      {}

// Records returns a sequence over in-memory records, with no row error.
func Records(records ...Record) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for _, r := range records {
			if !yield(r, nil) {
				return
			}
		}
	}
}
