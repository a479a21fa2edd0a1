// Package cmd implements the CLI application to reconcile commission statements.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/commission"
	"github.com/etnz/commission/kafka"
	"github.com/etnz/commission/parser"
	"github.com/etnz/commission/postgres"
	"github.com/etnz/commission/publish"
	"github.com/google/subcommands"
	"golang.org/x/term"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&runCmd{}, "reconciliation")
	c.Register(&reconcileCmd{}, "reconciliation")

	c.Register(&summaryCmd{}, "ledger")
	c.Register(&renderCmd{}, "ledger")
	c.Register(&serveCmd{}, "ledger")

	c.Register(&topicCmd{}, "help")
}

// Environment variables used when the matching global flag is not set.
// They are also passed to extensions.
const (
	EnvLedgerFile   = "RECON_LEDGER_FILE"
	EnvInbox        = "RECON_INBOX"
	EnvPublishDir   = "RECON_PUBLISH_DIR"
	EnvDays         = "RECON_DAYS"
	EnvCurrency     = "RECON_CURRENCY"
	EnvPostgresDSN  = "RECON_POSTGRES_DSN"
	EnvKafkaBrokers = "RECON_KAFKA_BROKERS"
	EnvKafkaTopic   = "RECON_KAFKA_TOPIC"
	EnvMappingFile  = "RECON_MAPPING_FILE"
	EnvVerbose      = "RECON_VERBOSE"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "", "Path to the ledger workbook. Defaults to $"+EnvLedgerFile+" or ledger.xlsx")
var inboxDir = flag.String("inbox", "", "Inbox directory where statements and reports are received. Defaults to $"+EnvInbox+" or inbox")
var publishDir = flag.String("publish-dir", "", "Directory where the dashboard is published. Defaults to $"+EnvPublishDir+", nothing is published if empty")
var currency = flag.String("currency", "", "Currency of the ledger amounts. Defaults to $"+EnvCurrency+" or "+commission.DefaultCurrency)
var postgresDSN = flag.String("postgres", "", "PostgreSQL connection string, the ledger is stored in the database instead of the workbook. Defaults to $"+EnvPostgresDSN)
var kafkaBrokers = flag.String("kafka-brokers", "", "Comma separated Kafka brokers notified after each run. Defaults to $"+EnvKafkaBrokers)
var kafkaTopic = flag.String("kafka-topic", "", "Kafka topic of run events. Defaults to $"+EnvKafkaTopic+" or commission.runs")
var mappingFile = flag.String("mapping", "", "YAML file overriding the document column names. Defaults to $"+EnvMappingFile)

// Verbose enables logging to stderr.
var Verbose = flag.Bool("v", false, "Log what is done to stderr")

// setting returns the value of flag v, or of the environment variable env, or def.
func setting(v *string, env, def string) string {
	if *v != "" {
		return *v
	}
	if s := strings.TrimSpace(os.Getenv(env)); s != "" {
		return s
	}
	return def
}

func ledgerPath() string { return setting(ledgerFile, EnvLedgerFile, "ledger.xlsx") }
func inboxPath() string  { return setting(inboxDir, EnvInbox, "inbox") }
func publishPath() string {
	return setting(publishDir, EnvPublishDir, "")
}
func ledgerCurrency() string { return setting(currency, EnvCurrency, commission.DefaultCurrency) }

// defaultDays returns the lookback window from the environment, 7 days otherwise.
func defaultDays() int {
	if s := os.Getenv(EnvDays); s != "" {
		if days, err := strconv.Atoi(s); err == nil && days > 0 {
			return days
		}
		log.Printf("ignoring invalid %s=%q", EnvDays, s)
	}
	return 7
}

// SetupLogging sends logs to stderr in verbose mode, and discards them otherwise.
func SetupLogging() {
	if *Verbose || os.Getenv(EnvVerbose) == "true" {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(io.Discard)
}

// OpenStore opens the ledger store: the database if a connection string is set,
// the workbook otherwise. The returned function releases the store.
func OpenStore(ctx context.Context) (commission.Store, func() error, error) {
	if dsn := setting(postgresDSN, EnvPostgresDSN, ""); dsn != "" {
		s, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, nil, err
		}
		s.Currency = ledgerCurrency()
		return s, s.Close, nil
	}
	s := &commission.FileStore{Path: ledgerPath(), Currency: ledgerCurrency()}
	return s, func() error { return nil }, nil
}

// parseOptions returns the parser options of the app: the column mapping.
func parseOptions() ([]parser.Option, error) {
	path := setting(mappingFile, EnvMappingFile, "")
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := parser.LoadMapping(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return []parser.Option{parser.WithMapping(m)}, nil
}

// publisher returns the dashboard publisher, nil if none is configured.
func publisher() *publish.Dir {
	root := publishPath()
	if root == "" {
		return nil
	}
	return &publish.Dir{Root: root}
}

// notifier returns the run notifier, nil if none is configured.
func notifier() *kafka.Notifier {
	brokers := setting(kafkaBrokers, EnvKafkaBrokers, "")
	if brokers == "" {
		return nil
	}
	return kafka.NewNotifier(strings.Split(brokers, ","), setting(kafkaTopic, EnvKafkaTopic, "commission.runs"))
}

// printMarkdown prints md to stdout, styled when stdout is a terminal.
func printMarkdown(md string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	log.Printf("cannot style markdown: %v", err)
	fmt.Print(md)
}
