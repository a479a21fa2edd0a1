package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/commission"
	"github.com/etnz/commission/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	documents bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the ledger" }
func (*summaryCmd) Usage() string {
	return `recon summary [-documents]

  Displays the ledger cases with their payments, the total paid and the number of
  completed cases.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.documents, "documents", false, "Also list the documents already reconciled")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, release, err := OpenStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	l, err := store.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	md := renderer.Ledger(commission.Render(l, nil))
	if c.documents {
		md += renderer.Documents(l.Documents())
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
