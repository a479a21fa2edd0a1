// Package runner orchestrates a reconciliation run: fetch the inbound documents, merge
// them into the ledger, persist it, then publish its view and notify.
package runner

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/etnz/commission"
	"github.com/etnz/commission/parser"
	"github.com/etnz/commission/renderer"
	"github.com/google/uuid"
)

// Source provides the inbound documents.
type Source interface {
	// Fetch returns the documents received since the given time, already classified.
	Fetch(ctx context.Context, since time.Time) ([]commission.Document, error)
}

// Publisher makes the rendered view available to its readers.
type Publisher interface {
	// Publish replaces the published page and returns where it can be found.
	Publish(ctx context.Context, page []byte) (string, error)
}

// Notifier tells downstream systems that a run completed.
type Notifier interface {
	Notify(ctx context.Context, s *commission.Summary, v *commission.View) error
}

// Runner runs reconciliations. Source and Store are required, Publisher and Notifier
// are optional.
type Runner struct {
	Source    Source
	Store     commission.Store
	Publisher Publisher
	Notifier  Notifier

	Parse []parser.Option      // options for every parsed document
	HTML  renderer.HTMLOptions // Generated is set to the run start
	Now   func() time.Time     // time.Now if nil
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Run reconciles the documents received since the given time.
//
// Documents that cannot be parsed are reported in the summary and the run goes on.
// A *commission.PersistenceError aborts the run before anything is published. A
// *commission.TransportError is returned when the view could not be published or
// the notification sent: the ledger is already persisted then. The summary and view
// are returned whenever the ledger was saved.
func (r *Runner) Run(ctx context.Context, since time.Time) (*commission.Summary, *commission.View, error) {
	started := r.now()
	s := commission.NewSummary(uuid.NewString(), started)
	log.Printf("run %s: fetching documents received since %s", s.ID, since.Format(time.DateTime))

	l, err := r.Store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	docs, err := r.Source.Fetch(ctx, since)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot fetch documents: %w", err)
	}
	sortDocuments(docs)

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		var outcome commission.DocumentOutcome
		l, outcome = r.reconcile(l, doc, s.ID, started)
		s.Add(outcome)
	}

	if err := r.Store.Save(ctx, l); err != nil {
		return nil, nil, err
	}
	log.Print(s)

	v := commission.Render(l, s.Result.Changed)
	if r.Publisher != nil {
		opts := r.HTML
		opts.Generated = started
		var page bytes.Buffer
		if err := renderer.HTML(&page, v, opts); err != nil {
			return s, v, err
		}
		where, err := r.Publisher.Publish(ctx, page.Bytes())
		if err != nil {
			return s, v, asTransportError("view", err)
		}
		s.ViewPath = where
		log.Printf("run %s: view published to %s", s.ID, where)
	}
	if r.Notifier != nil {
		if err := r.Notifier.Notify(ctx, s, v); err != nil {
			return s, v, asTransportError("notification", err)
		}
	}
	return s, v, nil
}

// reconcile merges doc into l, unless it was already reconciled.
func (r *Runner) reconcile(l *commission.Ledger, doc commission.Document, runID string, at time.Time) (*commission.Ledger, commission.DocumentOutcome) {
	outcome := commission.DocumentOutcome{Name: doc.Name, Kind: doc.Kind}
	if doc.Kind == commission.UnknownKind {
		log.Printf("%s: ignored, neither a statement nor a report", doc.Name)
		outcome.Outcome = commission.Ignored
		return l, outcome
	}
	fp := doc.Fingerprint()
	outcome.Fingerprint = fp
	if l.Reconciled(fp) {
		log.Printf("%s: skipped, %v", doc.Name, commission.ErrAlreadyReconciled)
		outcome.Outcome = commission.Duplicate
		outcome.Err = fmt.Errorf("%s: %w", doc.Name, commission.ErrAlreadyReconciled)
		return l, outcome
	}
	p, err := parser.Parse(doc, r.Parse...)
	if err != nil {
		log.Printf("%s: skipped, %v", doc.Name, err)
		outcome.Outcome = commission.Failed
		outcome.Err = err
		return l, outcome
	}
	l, outcome.Result = commission.Reconcile(l, p.Records())
	l.RecordDocument(commission.DocumentEntry{
		Fingerprint:  fp,
		Name:         doc.Name,
		Kind:         doc.Kind,
		RunID:        runID,
		ReconciledAt: at,
	})
	log.Printf("%s: %d record(s) applied, %d skipped", doc.Name, outcome.Result.Applied, outcome.Result.Skipped)
	return l, outcome
}

// sortDocuments puts case reports before payment statements, so that cases reported
// in a batch exist when their payments are applied, and unknown files last. Otherwise
// documents keep their order of reception.
func sortDocuments(docs []commission.Document) {
	rank := func(k commission.Kind) int {
		switch k {
		case commission.CaseReport:
			return 0
		case commission.PaymentStatement:
			return 1
		default:
			return 2
		}
	}
	slices.SortStableFunc(docs, func(a, b commission.Document) int {
		if c := cmp.Compare(rank(a.Kind), rank(b.Kind)); c != 0 {
			return c
		}
		return a.Received.Compare(b.Received)
	})
}

func asTransportError(target string, err error) error {
	var terr *commission.TransportError
	if errors.As(err, &terr) {
		return err
	}
	return &commission.TransportError{Target: target, Err: err}
}
