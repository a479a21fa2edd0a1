package commission

import (
	"errors"
	"fmt"
)

// ErrAlreadyReconciled is returned for a document whose fingerprint is already
// recorded in the ledger history.
var ErrAlreadyReconciled = errors.New("document already reconciled")

// ParseError reports a document whose structure does not match its declared kind.
// The document is skipped, the run goes on.
type ParseError struct {
	Document string // document name
	Kind     Kind
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q: %v", e.Kind, e.Document, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SkipReason classifies why a record did not reach the ledger.
type SkipReason string

const (
	SkipMissingCaseID SkipReason = "missing case id"
	SkipMissingType   SkipReason = "missing payment type"
	SkipReservedType  SkipReason = "reserved payment type"
	SkipMissingAmount SkipReason = "missing amount"
	SkipInvalidAmount SkipReason = "invalid amount"
	SkipUnknownCase   SkipReason = "unknown case"
	SkipUnknownRecord SkipReason = "unknown record"
	SkipMalformedRow  SkipReason = "malformed row"
)

// RowError reports a row-level defect. It is counted, never raised.
type RowError struct {
	Document string
	Row      int // 1-based row number in its table, header included
	Reason   SkipReason
	Value    string // offending value, if any
}

func (e *RowError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s row %d: %s %q", e.Document, e.Row, e.Reason, e.Value)
	}
	return fmt.Sprintf("%s row %d: %s", e.Document, e.Row, e.Reason)
}

// PersistenceError reports a ledger that could not be durably written or read.
// It is fatal to a run: no view is published and the previous ledger stays authoritative.
type PersistenceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cannot %s ledger %q: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// TransportError reports a view that could not be published.
// The ledger has already been persisted when it happens.
type TransportError struct {
	Target string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("cannot publish view to %q: %v", e.Target, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
