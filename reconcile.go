package commission

import (
	"errors"
	"iter"
	"log"
	"maps"
	"slices"
	"strings"
)

// CaseSet is a set of case identifiers.
type CaseSet map[string]struct{}

// NewCaseSet returns a set holding ids.
func NewCaseSet(ids ...string) CaseSet {
	s := make(CaseSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add adds id to the set.
func (s CaseSet) Add(id string) { s[id] = struct{}{} }

// Has reports whether id is in the set. A nil set is empty.
func (s CaseSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the set elements in lexical order.
func (s CaseSet) Sorted() []string { return slices.Sorted(maps.Keys(s)) }

// Result reports what a reconciliation did.
type Result struct {
	Changed   CaseSet            // cases created or mutated
	Applied   int                // records that reached the ledger
	Created   int                // cases created
	Skipped   int                // records or rows that did not reach the ledger
	SkippedBy map[SkipReason]int // Skipped detailed per reason
}

func newResult() *Result {
	return &Result{Changed: make(CaseSet), SkippedBy: make(map[SkipReason]int)}
}

func (r *Result) skip(reason SkipReason) {
	r.Skipped++
	r.SkippedBy[reason]++
}

// Merge adds the counts and changes of o to r.
func (r *Result) Merge(o *Result) {
	if o == nil {
		return
	}
	if r.Changed == nil {
		r.Changed = make(CaseSet)
	}
	if r.SkippedBy == nil {
		r.SkippedBy = make(map[SkipReason]int)
	}
	for id := range o.Changed {
		r.Changed.Add(id)
	}
	r.Applied += o.Applied
	r.Created += o.Created
	r.Skipped += o.Skipped
	for reason, n := range o.SkippedBy {
		r.SkippedBy[reason] += n
	}
}

// Reconcile merges records into a copy of l and returns it, l is left untouched.
//
// A Payment is added to the case payment type total; it never creates a case, a payment
// for an unknown case is skipped. A Report creates the case when it is unknown,
// otherwise only its status is overwritten.
//
// Payments are additive, so their order does not matter. Reports are last-value-wins.
// Reconcile has no memory of previous runs: a payment applied twice is counted twice.
//
// Row errors yielded by records are counted as skipped, never fatal.
func Reconcile(l *Ledger, records iter.Seq2[Record, error]) (*Ledger, *Result) {
	l = l.Clone()
	res := newResult()
	for rec, err := range records {
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				res.skip(rowErr.Reason)
			} else {
				res.skip(SkipMalformedRow)
			}
			log.Printf("skipped: %v", err)
			continue
		}
		switch r := rec.(type) {
		case Payment:
			applyPayment(l, r, res)
		case Report:
			applyReport(l, r, res)
		default:
			log.Printf("skipped: unsupported record %T", rec)
			res.skip(SkipUnknownRecord)
		}
	}
	return l, res
}

func applyPayment(l *Ledger, p Payment, res *Result) {
	id, paymentType := strings.TrimSpace(p.CaseID), strings.TrimSpace(p.Type)
	switch {
	case id == "":
		res.skip(SkipMissingCaseID)
		return
	case paymentType == "":
		res.skip(SkipMissingType)
		return
	case IsReservedHeader(paymentType):
		log.Printf("skipped payment for case %s: %q is a ledger column", id, paymentType)
		res.skip(SkipReservedType)
		return
	case p.Amount.IsNegative():
		res.skip(SkipInvalidAmount)
		return
	}
	if !l.AddPayment(id, paymentType, p.Amount) {
		log.Printf("skipped payment %s %q %s: case %s is not in the ledger", p.Date, paymentType, p.Amount, id)
		res.skip(SkipUnknownCase)
		return
	}
	res.Applied++
	res.Changed.Add(id)
}

func applyReport(l *Ledger, r Report, res *Result) {
	id := strings.TrimSpace(r.CaseID)
	if id == "" {
		res.skip(SkipMissingCaseID)
		return
	}
	existing, ok := l.Get(id)
	if !ok {
		l.Upsert(Case{ID: id, Fields: r.Fields})
		log.Printf("new case %s (%s)", id, r.Fields[Customer])
		res.Applied++
		res.Created++
		res.Changed.Add(id)
		return
	}
	res.Applied++
	if !r.Has.Has(Status) {
		return
	}
	if old, status := existing.Status(), r.Fields[Status]; old != status {
		l.SetStatus(id, status)
		log.Printf("case %s: status %q -> %q", id, old, status)
		res.Changed.Add(id)
	}
}
