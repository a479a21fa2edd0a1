package commission

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Outcome is what a run did with a document.
type Outcome int

const (
	Reconciled Outcome = iota // parsed and merged into the ledger
	Duplicate                 // already reconciled by a previous run
	Failed                    // could not be parsed
	Ignored                   // not a statement nor a report
)

func (o Outcome) String() string {
	switch o {
	case Reconciled:
		return "reconciled"
	case Duplicate:
		return "duplicate"
	case Failed:
		return "failed"
	case Ignored:
		return "ignored"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// DocumentOutcome reports what a run did with one document.
type DocumentOutcome struct {
	Name        string
	Kind        Kind
	Fingerprint string
	Outcome     Outcome
	Result      *Result // nil unless reconciled
	Err         error   // nil when reconciled
}

// Applied returns the number of records of the document that reached the ledger.
func (d DocumentOutcome) Applied() int {
	if d.Result == nil {
		return 0
	}
	return d.Result.Applied
}

// Skipped returns the number of records of the document that did not reach the ledger.
func (d DocumentOutcome) Skipped() int {
	if d.Result == nil {
		return 0
	}
	return d.Result.Skipped
}

// Summary reports a reconciliation run.
type Summary struct {
	ID        string
	Started   time.Time
	Documents []DocumentOutcome
	Result    *Result // all reconciled documents merged
	ViewPath  string  // where the view was published, empty when it was not
}

// NewSummary returns an empty Summary for run id.
func NewSummary(id string, started time.Time) *Summary {
	return &Summary{ID: id, Started: started, Result: newResult()}
}

// Add records the outcome of a document and merges its result.
func (s *Summary) Add(d DocumentOutcome) {
	s.Documents = append(s.Documents, d)
	s.Result.Merge(d.Result)
}

func (s *Summary) count(o Outcome) int {
	n := 0
	for _, d := range s.Documents {
		if d.Outcome == o {
			n++
		}
	}
	return n
}

// Reconciled returns the number of documents merged into the ledger.
func (s *Summary) Reconciled() int { return s.count(Reconciled) }

// Duplicates returns the number of documents skipped because already reconciled.
func (s *Summary) Duplicates() int { return s.count(Duplicate) }

// Failed returns the number of documents that could not be parsed.
func (s *Summary) Failed() int { return s.count(Failed) }

// Ignored returns the number of inbox files that were neither a statement nor a report.
func (s *Summary) Ignored() int { return s.count(Ignored) }

// Err returns the errors of the failed documents joined, nil if none failed.
func (s *Summary) Err() error {
	var errs []error
	for _, d := range s.Documents {
		if d.Outcome == Failed {
			errs = append(errs, d.Err)
		}
	}
	return errors.Join(errs...)
}

// SkipDetails returns the skip counts as "reason: n" strings, by reason.
func (s *Summary) SkipDetails() []string {
	var details []string
	for _, r := range slices.Sorted(maps.Keys(s.Result.SkippedBy)) {
		details = append(details, fmt.Sprintf("%s: %d", r, s.Result.SkippedBy[r]))
	}
	return details
}

// String returns a one line account of the run.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d reconciled, %d duplicate, %d failed document(s)", s.ID, s.Reconciled(), s.Duplicates(), s.Failed())
	if n := s.Ignored(); n > 0 {
		fmt.Fprintf(&b, ", %d ignored file(s)", n)
	}
	fmt.Fprintf(&b, "; %d record(s) applied, %d skipped, %d case(s) changed", s.Result.Applied, s.Result.Skipped, len(s.Result.Changed))
	return b.String()
}
