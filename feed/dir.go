// Package feed provides inbound documents to reconciliation runs.
package feed

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/etnz/commission"
)

// Classify returns the kind of a document from its file name.
//
// PDF files named after a commission or a statement are payment statements.
// Spreadsheets and exports named after an introducer or a report are case reports,
// those named after a commission or a statement are payment statements. Anything else
// is of UnknownKind.
func Classify(name string) commission.Kind {
	base := strings.ToLower(filepath.Base(name))
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	isStatement := strings.Contains(base, "commission") || strings.Contains(base, "statement")
	isReport := strings.Contains(base, "introducer") || strings.Contains(base, "report")

	switch ext {
	case "pdf":
		if isStatement {
			return commission.PaymentStatement
		}
	case "xlsx", "xls", "csv", "json":
		switch {
		case isReport:
			return commission.CaseReport
		case isStatement && ext != "json":
			return commission.PaymentStatement
		}
	}
	return commission.UnknownKind
}

// Dir is an inbox directory where statements and reports are dropped, typically by a
// mail rule saving attachments. Subdirectories are scanned too, their relative path is
// the document Source.
type Dir struct {
	Path string
}

// Fetch returns the documents modified since the given time, oldest first. Hidden files
// are skipped. Files that cannot be classified are returned as UnknownKind documents
// without their content, so that runs account for them.
func (d *Dir) Fetch(ctx context.Context, since time.Time) ([]commission.Document, error) {
	var docs []commission.Document
	err := filepath.WalkDir(d.Path, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if strings.HasPrefix(e.Name(), ".") && path != d.Path {
			if e.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if e.IsDir() {
			return nil
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(since) {
			return nil
		}
		source, _ := filepath.Rel(d.Path, filepath.Dir(path))
		kind := Classify(e.Name())
		var data []byte
		if kind != commission.UnknownKind {
			if data, err = os.ReadFile(path); err != nil {
				return err
			}
		}
		docs = append(docs, commission.Document{
			Name:     e.Name(),
			Kind:     kind,
			Data:     data,
			Received: info.ModTime(),
			Source:   filepath.ToSlash(source),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot scan inbox %q: %w", d.Path, err)
	}
	slices.SortStableFunc(docs, func(a, b commission.Document) int { return a.Received.Compare(b.Received) })
	log.Printf("inbox %q: %d document(s) since %s", d.Path, len(docs), since.Format(time.DateOnly))
	return docs, nil
}
