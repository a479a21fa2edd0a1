package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/commission"
	"github.com/etnz/commission/renderer"
	"github.com/google/subcommands"
)

type renderCmd struct {
	output  string
	title   string
	notes   string
	publish bool
}

func (*renderCmd) Name() string     { return "render" }
func (*renderCmd) Synopsis() string { return "render the ledger dashboard" }
func (*renderCmd) Usage() string {
	return `recon render [-o <file>] [-publish] [-title <title>] [-notes <file>]

  Renders the HTML dashboard of the ledger, without reconciling anything. The page is
  written to stdout, to a file with -o, or published in the publish directory with
  -publish.
`
}

func (c *renderCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file, stdout if empty")
	f.BoolVar(&c.publish, "publish", false, "Publish the dashboard in the publish directory")
	f.StringVar(&c.title, "title", renderer.DefaultTitle, "Title of the dashboard")
	f.StringVar(&c.notes, "notes", "", "Markdown file displayed in the dashboard")
}

func (c *renderCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	opts := renderer.HTMLOptions{Title: c.title, Generated: time.Now()}
	if c.notes != "" {
		notes, err := os.ReadFile(c.notes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading notes: %v\n", err)
			return subcommands.ExitFailure
		}
		opts.Notes = string(notes)
	}
	var page bytes.Buffer
	if err := renderer.HTML(&page, commission.Render(l, nil), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	switch {
	case c.publish:
		p := publisher()
		if p == nil {
			fmt.Fprintf(os.Stderr, "Error: -publish needs a publish directory, see -publish-dir\n")
			return subcommands.ExitUsageError
		}
		where, err := p.Publish(ctx, page.Bytes())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Dashboard published at %s\n", where)
	case c.output != "":
		if err := os.WriteFile(c.output, page.Bytes(), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing dashboard: %v\n", err)
			return subcommands.ExitFailure
		}
	default:
		os.Stdout.Write(page.Bytes())
	}
	return subcommands.ExitSuccess
}
