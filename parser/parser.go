// Package parser turns raw commission statements and introducer reports into records.
//
// Parsing is a pure transformation of the document bytes: the structure of the
// document is validated when it is parsed, and rows are decoded lazily each time the
// records are iterated.
package parser

import (
	"errors"
	"fmt"
	"iter"

	"github.com/etnz/commission"
)

// ErrUnsupportedFormat is returned for a document whose extension has no decoder.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Option configures Parse.
type Option func(*options)

type options struct {
	mapping Mapping
}

// WithMapping sets the column mapping, DefaultMapping() otherwise.
func WithMapping(m Mapping) Option {
	return func(o *options) { o.mapping = m }
}

// Parsed is a document whose structure matches its kind.
type Parsed struct {
	doc     commission.Document
	regions []region
	decode  func(r region, row int) (commission.Record, error)
}

// Name returns the parsed document name.
func (p *Parsed) Name() string { return p.doc.Name }

// Kind returns the parsed document kind.
func (p *Parsed) Kind() commission.Kind { return p.doc.Kind }

// Tables returns the number of tables holding records.
func (p *Parsed) Tables() int { return len(p.regions) }

// Records iterates over the document records in document order.
//
// A row that cannot become a record yields a *commission.RowError and the iteration
// goes on. Blank rows are ignored. The sequence can be iterated several times.
func (p *Parsed) Records() iter.Seq2[commission.Record, error] {
	return func(yield func(commission.Record, error) bool) {
		for _, r := range p.regions {
			for i := r.header + 1; i < r.end; i++ {
				if isBlank(r.table.Rows[i]) {
					continue
				}
				rec, err := p.decode(r, i)
				if !yield(rec, err) {
					return
				}
			}
		}
	}
}

// Parse validates the structure of doc against its declared kind.
//
// It returns a *commission.ParseError when the document cannot be read, or holds no
// table with the columns its kind requires.
func Parse(doc commission.Document, opts ...Option) (*Parsed, error) {
	o := options{mapping: DefaultMapping()}
	for _, opt := range opts {
		opt(&o)
	}
	fail := func(err error) (*Parsed, error) {
		return nil, &commission.ParseError{Document: doc.Name, Kind: doc.Kind, Err: err}
	}

	tables, err := readTables(doc, o.mapping)
	if err != nil {
		return fail(err)
	}

	p := &Parsed{doc: doc}
	switch doc.Kind {
	case commission.PaymentStatement:
		p.regions = statementRegions(tables, o.mapping.Statement)
		p.decode = func(r region, row int) (commission.Record, error) { return decodePayment(doc.Name, r, row) }
	case commission.CaseReport:
		p.regions = reportRegions(tables, o.mapping.Report)
		p.decode = func(r region, row int) (commission.Record, error) { return decodeReport(doc.Name, r, row) }
	default:
		return fail(fmt.Errorf("cannot parse documents of kind %s", doc.Kind))
	}
	if len(p.regions) == 0 {
		return fail(fmt.Errorf("no table with the expected columns in %d table(s)", len(tables)))
	}
	return p, nil
}

// readTables decodes the document into tables according to its format.
func readTables(doc commission.Document, m Mapping) ([]Table, error) {
	switch doc.Format() {
	case "pdf":
		return pdfTables(doc.Data)
	case "xlsx", "xlsm":
		return sheetTables(doc.Data)
	case "csv":
		return csvTables(doc.Data)
	case "json":
		return jsonTables(doc.Data, m.Report.JSONPath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.Format())
	}
}
