package commission

import (
	"maps"
	"strings"

	"github.com/shopspring/decimal"
)

// Field names one of the fixed attributes of a case.
type Field int

const (
	Priority Field = iota
	Created
	ReportName
	Customer
	Status
	Advisor
	numFields
)

// fieldHeaders are the ledger column headers of the fixed fields, in ledger order.
// They are the introducer report's own headers.
var fieldHeaders = [numFields]string{
	Priority:   "Priority",
	Created:    "Created",
	ReportName: "Report Name",
	Customer:   "Full Names",
	Status:     "Status",
	Advisor:    "Advisor",
}

// CaseIDHeader is the header of the case identifier column in the ledger.
const CaseIDHeader = "CaseID"

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldHeaders[f]
}

// AllFields returns the fixed fields in ledger column order.
func AllFields() []Field {
	fields := make([]Field, numFields)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

// FieldByHeader returns the field whose ledger header is h, case and blank insensitive.
func FieldByHeader(h string) (Field, bool) {
	for i, header := range fieldHeaders {
		if normalizeHeader(header) == normalizeHeader(h) {
			return Field(i), true
		}
	}
	return 0, false
}

// IsReservedHeader reports whether h names the CaseID column or a fixed field column.
// Such a name cannot be a payment type column.
func IsReservedHeader(h string) bool {
	if normalizeHeader(h) == normalizeHeader(CaseIDHeader) {
		return true
	}
	_, ok := FieldByHeader(h)
	return ok
}

// normalizeHeader folds case and removes blanks: "Case ID" and "CaseID" are the same header.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), ""))
}

// Fields holds the fixed attributes of a case.
type Fields [numFields]string

// Get returns the value of field f.
func (fs Fields) Get(f Field) string { return fs[f] }

// Set returns a copy of fs with field f set to v.
func (fs Fields) Set(f Field, v string) Fields {
	fs[f] = v
	return fs
}

// FieldSet tells which fixed fields a case report actually carried.
type FieldSet uint8

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool { return s&(1<<f) != 0 }

// With returns the set with f added.
func (s FieldSet) With(f Field) FieldSet { return s | 1<<f }

// Case is one row of the ledger.
type Case struct {
	ID       string
	Fields   Fields
	Payments map[string]decimal.Decimal // accumulated amount per payment type
}

// Status returns the case lifecycle status.
func (c Case) Status() string { return c.Fields[Status] }

// IsComplete reports whether the case reached the terminal status.
func (c Case) IsComplete() bool { return IsComplete(c.Status()) }

// Payment returns the accumulated amount for a payment type, zero if never paid.
func (c Case) Payment(paymentType string) decimal.Decimal {
	return c.Payments[paymentType] // zero value is decimal zero
}

// Total returns the sum of all payments received for the case.
func (c Case) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range c.Payments {
		total = total.Add(v)
	}
	return total
}

// clone returns a deep copy of c.
func (c Case) clone() Case {
	c.Payments = maps.Clone(c.Payments)
	if c.Payments == nil {
		c.Payments = make(map[string]decimal.Decimal)
	}
	return c
}

// IsComplete reports whether status is the terminal "complete" status.
// Lenders write it "Complete", "COMPLETED" or "completed ".
func IsComplete(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "complete", "completed":
		return true
	}
	return false
}
