package renderer

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/etnz/commission"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var fixGolden = flag.Bool("fix-golden", false, "if true, update failing golden files with the received output")

func TestFixGoldenIsOff(t *testing.T) {
	if *fixGolden {
		t.Fatal("-fix-golden is enabled. This flag should only be used for updating test fixtures and must be disabled for regular tests.")
	}
}

// checkGolden compares got with the content of the golden file.
func checkGolden(t *testing.T, goldenFile, got string) {
	t.Helper()
	want, err := os.ReadFile(goldenFile)
	if err != nil {
		t.Fatalf("failed to read golden file %q: %v", goldenFile, err)
	}
	if diff := cmp.Diff(string(want), got); diff != "" {
		if *fixGolden {
			if err := os.WriteFile(goldenFile, []byte(got), 0644); err != nil {
				t.Fatalf("failed to update golden file %q: %v", goldenFile, err)
			}
			t.Logf("updated golden file %q", goldenFile)
			return
		}
		t.Errorf("output mismatch for %q (-want +got):\n%s", goldenFile, diff)
	}
}

func fields(priority, created, report, customer, status, advisor string) commission.Fields {
	var fs commission.Fields
	fs[commission.Priority] = priority
	fs[commission.Created] = created
	fs[commission.ReportName] = report
	fs[commission.Customer] = customer
	fs[commission.Status] = status
	fs[commission.Advisor] = advisor
	return fs
}

// sampleView is a helper for test to build the view of a small ledger where C2 changed.
func sampleView() *commission.View {
	l := commission.NewLedger()
	l.Upsert(commission.Case{ID: "C1", Fields: fields("High", "01/09/2025", "Remortgage", "Ann Smith", "Completed", "Bob")})
	l.Upsert(commission.Case{ID: "C2", Fields: fields("Low", "02/09/2025", "Purchase", "Tom Jones", "Lead", "Eve")})
	l.Upsert(commission.Case{ID: "C3", Fields: fields("", "03/09/2025", "Purchase", "Joe Bloggs", "Lead", "Eve")})
	l.AddPayment("C1", "Proc Fee", decimal.RequireFromString("500"))
	l.AddPayment("C1", "Proc Fee", decimal.RequireFromString("250"))
	l.AddPayment("C2", "Admin", decimal.RequireFromString("25.5"))
	return commission.Render(l, commission.NewCaseSet("C2"))
}

var generated = time.Date(2025, 9, 1, 8, 30, 0, 0, time.UTC)

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	err := HTML(&buf, sampleView(), HTMLOptions{Generated: generated, Notes: "Two statements **received**."})
	if err != nil {
		t.Fatalf("HTML() unexpected error: %v", err)
	}
	checkGolden(t, "testdata/dashboard.html", buf.String())
}

func TestHTML_Idempotent(t *testing.T) {
	render := func() string {
		var buf bytes.Buffer
		if err := HTML(&buf, sampleView(), HTMLOptions{Generated: generated}); err != nil {
			t.Fatalf("HTML() unexpected error: %v", err)
		}
		return buf.String()
	}
	first, second := render(), render()
	if first != second {
		t.Errorf("rendering twice gives different pages:\n%s", cmp.Diff(first, second))
	}
	if !strings.Contains(first, `<meta name="robots" content="noindex, nofollow">`) {
		t.Errorf("HTML() page is missing the noindex meta")
	}
	if strings.Contains(first, `class="notes"`) {
		t.Errorf("HTML() page without notes has a notes section")
	}
}

func TestHTML_Escaping(t *testing.T) {
	l := commission.NewLedger()
	l.Upsert(commission.Case{ID: "<C1>", Fields: fields("", "", "", "Smith & Sons", "Lead", "")})
	var buf bytes.Buffer
	if err := HTML(&buf, commission.Render(l, nil), HTMLOptions{Title: "Q3 <ledger>"}); err != nil {
		t.Fatalf("HTML() unexpected error: %v", err)
	}
	page := buf.String()
	for _, want := range []string{"<title>Q3 &lt;ledger&gt;</title>", "<td>&lt;C1&gt;</td>", "<td>Smith &amp; Sons</td>"} {
		if !strings.Contains(page, want) {
			t.Errorf("HTML() page does not contain %q", want)
		}
	}
}

func TestSummary(t *testing.T) {
	s := commission.NewSummary("run-1", generated)
	s.Add(commission.DocumentOutcome{
		Name:    "lender.csv",
		Kind:    commission.PaymentStatement,
		Outcome: commission.Reconciled,
		Result: &commission.Result{
			Changed:   commission.NewCaseSet("C2"),
			Applied:   2,
			Skipped:   1,
			SkippedBy: map[commission.SkipReason]int{commission.SkipInvalidAmount: 1},
		},
	})
	s.Add(commission.DocumentOutcome{
		Name:    "broken.pdf",
		Kind:    commission.PaymentStatement,
		Outcome: commission.Failed,
		Err:     &commission.ParseError{Document: "broken.pdf", Kind: commission.PaymentStatement, Err: errors.New("no table")},
	})
	s.Add(commission.DocumentOutcome{Name: "notes|draft.txt", Outcome: commission.Ignored})
	s.ViewPath = "/srv/view/abc/index.html"

	checkGolden(t, "testdata/summary.md", Summary(sampleView(), s))
}

func TestSummary_DocumentNameCell(t *testing.T) {
	s := commission.NewSummary("run-2", generated)
	s.Add(commission.DocumentOutcome{
		Name:    "lender|sept.csv",
		Kind:    commission.PaymentStatement,
		Outcome: commission.Reconciled,
		Result:  &commission.Result{Applied: 1},
	})
	got := Summary(sampleView(), s)
	if want := "| lender\\|sept.csv | payment_statement | reconciled | 1 | 0 |\n"; !strings.Contains(got, want) {
		t.Errorf("Summary() does not contain %q:\n%s", want, got)
	}
}

func TestLedger(t *testing.T) {
	checkGolden(t, "testdata/ledger.md", Ledger(sampleView()))
}

func TestLedger_Empty(t *testing.T) {
	got := Ledger(commission.Render(commission.NewLedger(), nil))
	if want := "# Ledger\n\n0 case(s), 0 completed, £0.00 paid.\n"; got != want {
		t.Errorf("Ledger() = %q, want %q", got, want)
	}
}

func TestMarkdownCell(t *testing.T) {
	if got, want := markdownCell("a|b\nc"), `a\|b c`; got != want {
		t.Errorf("markdownCell() = %q, want %q", got, want)
	}
}

func TestDocuments(t *testing.T) {
	got := Documents([]commission.DocumentEntry{{
		Fingerprint:  "abc",
		Name:         "commission|sept.pdf",
		Kind:         commission.PaymentStatement,
		RunID:        "run-1",
		ReconciledAt: generated,
	}})
	want := "\n## Reconciled documents\n\n| Document | Kind | Run | Reconciled at |\n|---|---|---|---|\n| commission\\|sept.pdf | payment_statement | run-1 | 01/09/2025 08:30 |\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Documents() mismatch (-want +got):\n%s", diff)
	}

	if got, want := Documents(nil), "\n## Reconciled documents\n\nNo document reconciled yet.\n"; got != want {
		t.Errorf("Documents(nil) = %q, want %q", got, want)
	}
}
