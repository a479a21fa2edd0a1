package commission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Store loads and saves the ledger.
//
// Stores do not lock: a single writer is assumed, runs must never overlap.
type Store interface {
	// Load returns the persisted ledger, an empty one if nothing was persisted yet.
	Load(ctx context.Context) (*Ledger, error)
	// Save persists the ledger. It is all-or-nothing: on error the previously
	// persisted ledger is left untouched.
	Save(ctx context.Context, l *Ledger) error
}

// FileStore persists the ledger in a single XLSX workbook.
type FileStore struct {
	Path     string
	Currency string // currency of the loaded ledger, DefaultCurrency if empty
}

var _ Store = (*FileStore)(nil)

// Load decodes the workbook at s.Path. A missing file is an empty ledger.
func (s *FileStore) Load(_ context.Context) (*Ledger, error) {
	data, err := os.ReadFile(s.Path)
	var l *Ledger
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("ledger %q does not exist, starting from an empty ledger", s.Path)
		l = NewLedger()
	case err != nil:
		return nil, &PersistenceError{Op: "load", Path: s.Path, Err: err}
	default:
		l, err = DecodeLedger(bytes.NewReader(data))
		if err != nil {
			return nil, &PersistenceError{Op: "load", Path: s.Path, Err: err}
		}
	}
	if s.Currency != "" {
		l.SetCurrency(s.Currency)
	}
	return l, nil
}

// Save encodes the ledger into a temporary file next to s.Path, then renames it over
// s.Path. Readers see either the previous ledger or the new one, never a partial write.
func (s *FileStore) Save(_ context.Context, l *Ledger) error {
	if err := s.save(l); err != nil {
		return &PersistenceError{Op: "save", Path: s.Path, Err: err}
	}
	log.Printf("saved %d cases to %s", l.Len(), s.Path)
	return nil
}

func (s *FileStore) save(l *Ledger) (err error) {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory for ledger: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return err
	}
	// on any failure the temporary file is removed and the target untouched.
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = EncodeLedger(tmp, l); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}
