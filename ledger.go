package commission

import (
	"iter"
	"log"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is the authoritative table of cases and their accumulated payments.
//
// Cases are kept in creation order. Payment types are kept in the order they were
// first observed: that order is the ledger column order and it only ever grows.
type Ledger struct {
	cases        []Case
	index        map[string]int // index cases by ID
	paymentTypes []string
	documents    []DocumentEntry
	currency     string
}

// DocumentEntry records a document reconciled into the ledger.
type DocumentEntry struct {
	Fingerprint  string
	Name         string
	Kind         Kind
	RunID        string
	ReconciledAt time.Time
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		index:    make(map[string]int),
		currency: DefaultCurrency,
	}
}

// Currency returns the currency ledger amounts are expressed in.
func (l *Ledger) Currency() string { return l.currency }

// SetCurrency sets the currency ledger amounts are expressed in.
func (l *Ledger) SetCurrency(cur string) { l.currency = cur }

// Len returns the number of cases.
func (l *Ledger) Len() int { return len(l.cases) }

// Get returns a copy of the case identified by id.
func (l *Ledger) Get(id string) (Case, bool) {
	i, ok := l.index[id]
	if !ok {
		return Case{}, false
	}
	return l.cases[i].clone(), true
}

// Has reports whether a case with this id exists.
func (l *Ledger) Has(id string) bool {
	_, ok := l.index[id]
	return ok
}

// Cases iterates over copies of all cases in creation order.
func (l *Ledger) Cases() iter.Seq[Case] {
	return func(yield func(Case) bool) {
		for _, c := range l.cases {
			if !yield(c.clone()) {
				return
			}
		}
	}
}

// Upsert inserts c, or replaces the case with the same ID.
// Payment types carried by c are declared in the ledger.
func (l *Ledger) Upsert(c Case) {
	c = c.clone()
	for _, pt := range sortedKeys(c.Payments) {
		l.DeclarePaymentType(pt)
	}
	if i, ok := l.index[c.ID]; ok {
		l.cases[i] = c
		return
	}
	l.index[c.ID] = len(l.cases)
	l.cases = append(l.cases, c)
}

// SetStatus overwrites the status of an existing case.
// It returns false if the case does not exist.
func (l *Ledger) SetStatus(id, status string) bool {
	i, ok := l.index[id]
	if !ok {
		return false
	}
	l.cases[i].Fields[Status] = status
	return true
}

// AddPayment adds amount to the accumulated value of paymentType for the case id,
// creating the payment type column when needed.
// It returns false, and does nothing, if the case does not exist.
func (l *Ledger) AddPayment(id, paymentType string, amount decimal.Decimal) bool {
	i, ok := l.index[id]
	if !ok {
		return false
	}
	if l.DeclarePaymentType(paymentType) {
		log.Printf("case %s: new payment type column %q", id, paymentType)
	}
	c := &l.cases[i]
	if c.Payments == nil {
		c.Payments = make(map[string]decimal.Decimal)
	}
	c.Payments[paymentType] = c.Payments[paymentType].Add(amount)
	return true
}

// DeclarePaymentType appends a payment type column if it is not yet known.
// It reports whether the column was added.
func (l *Ledger) DeclarePaymentType(paymentType string) bool {
	if slices.Contains(l.paymentTypes, paymentType) {
		return false
	}
	l.paymentTypes = append(l.paymentTypes, paymentType)
	return true
}

// PaymentTypes returns the payment type columns in ledger order.
func (l *Ledger) PaymentTypes() []string { return slices.Clone(l.paymentTypes) }

// Documents returns the reconciled documents history.
func (l *Ledger) Documents() []DocumentEntry { return slices.Clone(l.documents) }

// Reconciled reports whether a document with this fingerprint was already reconciled.
func (l *Ledger) Reconciled(fingerprint string) bool {
	return slices.ContainsFunc(l.documents, func(e DocumentEntry) bool { return e.Fingerprint == fingerprint })
}

// RecordDocument appends e to the reconciled documents history.
func (l *Ledger) RecordDocument(e DocumentEntry) {
	if l.Reconciled(e.Fingerprint) {
		return
	}
	l.documents = append(l.documents, e)
}

// Total returns the sum of every payment of every case.
func (l *Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range l.cases {
		total = total.Add(c.Total())
	}
	return total
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	n := &Ledger{
		cases:        make([]Case, len(l.cases)),
		index:        make(map[string]int, len(l.index)),
		paymentTypes: slices.Clone(l.paymentTypes),
		documents:    slices.Clone(l.documents),
		currency:     l.currency,
	}
	for i, c := range l.cases {
		n.cases[i] = c.clone()
		n.index[c.ID] = i
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
