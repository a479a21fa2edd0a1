package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/commission"
	"github.com/etnz/commission/feed"
	"github.com/etnz/commission/renderer"
	"github.com/google/subcommands"
)

type reconcileCmd struct {
	kind string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "reconcile the given documents" }
func (*reconcileCmd) Usage() string {
	return `recon reconcile [-kind statement|report] <file>...

  Reconciles the given documents into the ledger, as a run would do with an inbox
  holding only them. Files are classified by their name unless -kind is set.

Usage Examples:
# Reconciles a statement whose name does not tell its kind.
$ recon reconcile -kind statement lender_0925.pdf
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "", "Kind of every file: statement or report")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no document to reconcile")
		return subcommands.ExitUsageError
	}
	source := &feed.Files{Paths: f.Args()}
	if c.kind != "" {
		kind, err := commission.ParseKind(c.kind)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		source.Kind = kind
	}

	r, release, err := newRunner(ctx, source, renderer.DefaultTitle, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()
	return execute(ctx, r, time.Time{})
}
