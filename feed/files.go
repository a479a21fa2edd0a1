package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/commission"
)

// Files is a fixed list of document paths, given on the command line for instance.
// The window passed to Fetch is ignored: every file is returned.
type Files struct {
	Paths []string
	Kind  commission.Kind // kind of every file, classified by name if UnknownKind
}

// Fetch reads the files in order.
func (f *Files) Fetch(ctx context.Context, _ time.Time) ([]commission.Document, error) {
	docs := make([]commission.Document, 0, len(f.Paths))
	for _, path := range f.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		kind := f.Kind
		if kind == commission.UnknownKind {
			kind = Classify(path)
		}
		if kind == commission.UnknownKind {
			return nil, fmt.Errorf("cannot tell whether %q is a statement or a report", path)
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, commission.Document{
			Name:     filepath.Base(path),
			Kind:     kind,
			Data:     data,
			Received: info.ModTime(),
			Source:   filepath.Dir(path),
		})
	}
	return docs, nil
}
