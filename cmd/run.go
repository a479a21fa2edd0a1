package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/commission"
	"github.com/etnz/commission/date"
	"github.com/etnz/commission/feed"
	"github.com/etnz/commission/renderer"
	"github.com/etnz/commission/runner"
	"github.com/google/subcommands"
)

type runCmd struct {
	days  int
	title string
	notes string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "reconcile the documents received in the inbox" }
func (*runCmd) Usage() string {
	return `recon run [-days <n>] [-title <title>] [-notes <file>]

  Reconciles the statements and reports received in the inbox during the last days
  into the ledger, then publishes the dashboard and notifies the run, when configured.

  Documents already reconciled by a previous run are skipped, so overlapping
  windows are safe. A document that cannot be parsed is reported and the run goes on.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 0, "Lookback window in days. Defaults to $"+EnvDays+" or 7")
	f.StringVar(&c.title, "title", renderer.DefaultTitle, "Title of the dashboard")
	f.StringVar(&c.notes, "notes", "", "Markdown file displayed in the dashboard")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	days := c.days
	if days <= 0 {
		days = defaultDays()
	}
	r, release, err := newRunner(ctx, &feed.Dir{Path: inboxPath()}, c.title, c.notes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	since := date.Since(days).Time(time.Local)
	return execute(ctx, r, since)
}

// newRunner returns a runner over source, with the store, publisher and notifier of
// the app. The returned function releases them.
func newRunner(ctx context.Context, source runner.Source, title, notesFile string) (*runner.Runner, func(), error) {
	opts, err := parseOptions()
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := OpenStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	r := &runner.Runner{
		Source: source,
		Store:  store,
		Parse:  opts,
	}
	r.HTML.Title = title
	if notesFile != "" {
		notes, err := os.ReadFile(notesFile)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		r.HTML.Notes = string(notes)
	}
	if p := publisher(); p != nil {
		r.Publisher = p
	}
	n := notifier()
	if n != nil {
		r.Notifier = n
	}
	release := func() {
		if n != nil {
			n.Close()
		}
		closeStore()
	}
	return r, release, nil
}

// execute runs r and prints its summary.
func execute(ctx context.Context, r *runner.Runner, since time.Time) subcommands.ExitStatus {
	s, v, err := r.Run(ctx, since)
	if s != nil {
		printMarkdown(renderer.Summary(v, s))
	}
	var terr *commission.TransportError
	switch {
	case errors.As(err, &terr):
		fmt.Fprintf(os.Stderr, "Error: the ledger is saved but %v\n", err)
		return subcommands.ExitFailure
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
