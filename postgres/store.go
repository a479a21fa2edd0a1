// Package postgres persists the ledger in a PostgreSQL database.
package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/etnz/commission"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS cases (
	position    integer NOT NULL,
	case_id     text PRIMARY KEY,
	priority    text NOT NULL DEFAULT '',
	created     text NOT NULL DEFAULT '',
	report_name text NOT NULL DEFAULT '',
	customer    text NOT NULL DEFAULT '',
	status      text NOT NULL DEFAULT '',
	advisor     text NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS payment_types (
	position integer PRIMARY KEY,
	name     text NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS case_payments (
	case_id      text NOT NULL REFERENCES cases (case_id) ON DELETE CASCADE,
	payment_type text NOT NULL REFERENCES payment_types (name) ON DELETE CASCADE,
	amount       numeric NOT NULL,
	PRIMARY KEY (case_id, payment_type)
);
CREATE TABLE IF NOT EXISTS documents (
	position      integer NOT NULL,
	fingerprint   text PRIMARY KEY,
	name          text NOT NULL,
	kind          text NOT NULL,
	run_id        text NOT NULL,
	reconciled_at timestamptz NOT NULL
);`

const (
	insertCases = `INSERT INTO cases (position, case_id, priority, created, report_name, customer, status, advisor)
	VALUES (:position, :case_id, :priority, :created, :report_name, :customer, :status, :advisor)`
	insertPaymentTypes = `INSERT INTO payment_types (position, name) VALUES (:position, :name)`
	insertPayments     = `INSERT INTO case_payments (case_id, payment_type, amount) VALUES (:case_id, :payment_type, :amount)`
	insertDocuments    = `INSERT INTO documents (position, fingerprint, name, kind, run_id, reconciled_at)
	VALUES (:position, :fingerprint, :name, :kind, :run_id, :reconciled_at)`
)

type caseRow struct {
	Position   int    `db:"position"`
	CaseID     string `db:"case_id"`
	Priority   string `db:"priority"`
	Created    string `db:"created"`
	ReportName string `db:"report_name"`
	Customer   string `db:"customer"`
	Status     string `db:"status"`
	Advisor    string `db:"advisor"`
}

type paymentTypeRow struct {
	Position int    `db:"position"`
	Name     string `db:"name"`
}

type paymentRow struct {
	CaseID      string          `db:"case_id"`
	PaymentType string          `db:"payment_type"`
	Amount      decimal.Decimal `db:"amount"`
}

type documentRow struct {
	Position     int       `db:"position"`
	Fingerprint  string    `db:"fingerprint"`
	Name         string    `db:"name"`
	Kind         string    `db:"kind"`
	RunID        string    `db:"run_id"`
	ReconciledAt time.Time `db:"reconciled_at"`
}

// tables is the relational form of a ledger.
type tables struct {
	cases     []caseRow
	types     []paymentTypeRow
	payments  []paymentRow
	documents []documentRow
}

// Store is a commission.Store backed by PostgreSQL.
type Store struct {
	db       *sqlx.DB
	Currency string // currency of the loaded ledger, commission.DefaultCurrency if empty
}

var _ commission.Store = (*Store)(nil)

// Open connects to the database at dsn.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Migrate creates the ledger tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// Load reads the ledger. Empty tables are an empty ledger.
func (s *Store) Load(ctx context.Context) (*commission.Ledger, error) {
	var t tables
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &t.cases, `SELECT * FROM cases ORDER BY position`); err != nil {
			return err
		}
		if err := tx.SelectContext(ctx, &t.types, `SELECT position, name FROM payment_types ORDER BY position`); err != nil {
			return err
		}
		if err := tx.SelectContext(ctx, &t.payments, `SELECT case_id, payment_type, amount FROM case_payments`); err != nil {
			return err
		}
		return tx.SelectContext(ctx, &t.documents, `SELECT * FROM documents ORDER BY position`)
	})
	if err != nil {
		return nil, &commission.PersistenceError{Op: "load", Path: "postgres", Err: err}
	}
	l, err := t.ledger()
	if err != nil {
		return nil, &commission.PersistenceError{Op: "load", Path: "postgres", Err: err}
	}
	if s.Currency != "" {
		l.SetCurrency(s.Currency)
	}
	return l, nil
}

// Save replaces the persisted ledger with l in a single transaction.
func (s *Store) Save(ctx context.Context, l *commission.Ledger) error {
	t := tablesOf(l)
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, table := range []string{"case_payments", "cases", "payment_types", "documents"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		if err := insert(ctx, tx, insertCases, t.cases); err != nil {
			return err
		}
		if err := insert(ctx, tx, insertPaymentTypes, t.types); err != nil {
			return err
		}
		if err := insert(ctx, tx, insertPayments, t.payments); err != nil {
			return err
		}
		return insert(ctx, tx, insertDocuments, t.documents)
	})
	if err != nil {
		return &commission.PersistenceError{Op: "save", Path: "postgres", Err: err}
	}
	log.Printf("ledger saved to postgres: %d cases, %d payment types", len(t.cases), len(t.types))
	return nil
}

// batchRows is the number of rows inserted per statement. PostgreSQL accepts at most
// 65535 bind parameters in a statement, the widest table has 8 columns.
const batchRows = 1000

// insert runs the named query for rows, batchRows rows per statement.
func insert[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) error {
	for _, batch := range batches(rows, batchRows) {
		if _, err := tx.NamedExecContext(ctx, query, batch); err != nil {
			return err
		}
	}
	return nil
}

// batches splits rows into consecutive slices of at most n rows.
func batches[T any](rows []T, n int) [][]T {
	var out [][]T
	for len(rows) > n {
		out = append(out, rows[:n])
		rows = rows[n:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// tablesOf returns the relational form of l.
func tablesOf(l *commission.Ledger) tables {
	var t tables
	for i, pt := range l.PaymentTypes() {
		t.types = append(t.types, paymentTypeRow{Position: i, Name: pt})
	}
	i := 0
	for c := range l.Cases() {
		t.cases = append(t.cases, caseRow{
			Position:   i,
			CaseID:     c.ID,
			Priority:   c.Fields[commission.Priority],
			Created:    c.Fields[commission.Created],
			ReportName: c.Fields[commission.ReportName],
			Customer:   c.Fields[commission.Customer],
			Status:     c.Fields[commission.Status],
			Advisor:    c.Fields[commission.Advisor],
		})
		for _, pt := range l.PaymentTypes() {
			if amount, ok := c.Payments[pt]; ok {
				t.payments = append(t.payments, paymentRow{CaseID: c.ID, PaymentType: pt, Amount: amount})
			}
		}
		i++
	}
	for i, d := range l.Documents() {
		t.documents = append(t.documents, documentRow{
			Position:     i,
			Fingerprint:  d.Fingerprint,
			Name:         d.Name,
			Kind:         d.Kind.String(),
			RunID:        d.RunID,
			ReconciledAt: d.ReconciledAt,
		})
	}
	return t
}

// ledger rebuilds the ledger from its relational form. Rows must be sorted by position.
func (t tables) ledger() (*commission.Ledger, error) {
	l := commission.NewLedger()
	for _, pt := range t.types {
		l.DeclarePaymentType(pt.Name)
	}
	payments := make(map[string]map[string]decimal.Decimal)
	for _, p := range t.payments {
		if payments[p.CaseID] == nil {
			payments[p.CaseID] = make(map[string]decimal.Decimal)
		}
		payments[p.CaseID][p.PaymentType] = p.Amount
	}
	for _, r := range t.cases {
		var fs commission.Fields
		fs[commission.Priority] = r.Priority
		fs[commission.Created] = r.Created
		fs[commission.ReportName] = r.ReportName
		fs[commission.Customer] = r.Customer
		fs[commission.Status] = r.Status
		fs[commission.Advisor] = r.Advisor
		l.Upsert(commission.Case{ID: r.CaseID, Fields: fs, Payments: payments[r.CaseID]})
	}
	for _, d := range t.documents {
		kind, err := commission.ParseKind(d.Kind)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", d.Name, err)
		}
		l.RecordDocument(commission.DocumentEntry{
			Fingerprint:  d.Fingerprint,
			Name:         d.Name,
			Kind:         kind,
			RunID:        d.RunID,
			ReconciledAt: d.ReconciledAt,
		})
	}
	return l, nil
}
