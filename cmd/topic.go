package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/commission/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show the documentation" }
func (*topicCmd) Usage() string {
	return `recon topic [-list] [<topic>...]

  Shows the documentation of the given topics, in order. "*" shows every topic.
  Without topic, shows the documentation index.

Usage Examples:
# Reads how runs work, then the ledger format.
$ recon topic run ledger
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "List the topic names and summaries")
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.list {
		md, err := topicList()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading the documentation: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(md)
		return subcommands.ExitSuccess
	}

	md, err := docs.Get(f.Args()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// topicList returns the documentation topics as a markdown table.
func topicList() (string, error) {
	topics, err := docs.Topics()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("| Topic | Summary |\n|---|---|\n")
	for _, t := range topics {
		fmt.Fprintf(&b, "| %s | %s |\n", t.Name, t.Summary)
	}
	return b.String(), nil
}
