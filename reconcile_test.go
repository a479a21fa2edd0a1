package commission

import (
	"errors"
	"iter"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// decimalEqual lets cmp compare decimals by value.
var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestReconcile_Scenario(t *testing.T) {
	l := NewLedger()

	// A case report creates the case.
	l, res := Reconcile(l, Records(report("C1", "new")))
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	c1, ok := l.Get("C1")
	if !ok {
		t.Fatal("case C1 not created")
	}
	if c1.Status() != "new" {
		t.Errorf("C1 status = %q, want %q", c1.Status(), "new")
	}
	if len(c1.Payments) != 0 {
		t.Errorf("C1 payments = %v, want none", c1.Payments)
	}
	if res.Created != 1 || !res.Changed.Has("C1") {
		t.Errorf("result = %+v, want C1 created and changed", res)
	}

	// A first payment.
	l, res = Reconcile(l, Records(payment("C1", "Proc Fee", "500.00")))
	c1, _ = l.Get("C1")
	if got := c1.Payment("Proc Fee"); !got.Equal(D("500")) {
		t.Errorf("C1 Proc Fee = %s, want 500.00", got)
	}
	if diff := cmp.Diff([]string{"C1"}, res.Changed.Sorted()); diff != "" {
		t.Errorf("changed set mismatch (-want +got):\n%s", diff)
	}

	// A second payment accumulates.
	l, _ = Reconcile(l, Records(payment("C1", "Proc Fee", "250.00")))
	c1, _ = l.Get("C1")
	if got := c1.Payment("Proc Fee"); !got.Equal(D("750")) {
		t.Errorf("C1 Proc Fee = %s, want 750.00", got)
	}
}

func TestReconcile_PaymentNeverCreatesCase(t *testing.T) {
	before, _ := Reconcile(NewLedger(), Records(report("C1", "new")))

	after, res := Reconcile(before, Records(payment("C2", "Proc Fee", "100")))

	if after.Has("C2") {
		t.Error("payment for unknown case C2 created a row")
	}
	if after.Len() != before.Len() {
		t.Errorf("Len() = %d, want %d", after.Len(), before.Len())
	}
	if res.Skipped != 1 || res.SkippedBy[SkipUnknownCase] != 1 {
		t.Errorf("skipped = %d %v, want 1 unknown case", res.Skipped, res.SkippedBy)
	}
	if len(res.Changed) != 0 {
		t.Errorf("changed = %v, want empty", res.Changed)
	}
	if len(after.PaymentTypes()) != 0 {
		t.Errorf("payment types = %v, want none", after.PaymentTypes())
	}
}

func TestReconcile_StatusOverwriteIsExclusive(t *testing.T) {
	full := Report{CaseID: "C1"}
	for _, f := range AllFields() {
		full.Fields[f] = "original " + f.String()
		full.Has = full.Has.With(f)
	}
	l, _ := Reconcile(NewLedger(), Records(full, payment("C1", "Proc Fee", "500"), payment("C1", "Renewal", "12.5")))
	before, _ := l.Get("C1")

	// The update carries other fields too, only the status must be applied.
	update := full
	for _, f := range AllFields() {
		update.Fields[f] = "updated " + f.String()
	}
	l, res := Reconcile(l, Records(update))
	after, _ := l.Get("C1")

	want := before
	want.Fields[Status] = "updated Status"
	if diff := cmp.Diff(want, after, decimalEqual); diff != "" {
		t.Errorf("case mismatch (-want +got):\n%s", diff)
	}
	if !res.Changed.Has("C1") {
		t.Error("status change not reported in changed set")
	}
}

func TestReconcile_ReportWithoutStatus(t *testing.T) {
	l, _ := Reconcile(NewLedger(), Records(report("C1", "new")))

	var fs Fields
	fs[Advisor] = "someone"
	l, res := Reconcile(l, Records(Report{CaseID: "C1", Fields: fs, Has: FieldSet(0).With(Advisor)}))

	c, _ := l.Get("C1")
	if c.Status() != "new" || c.Fields[Advisor] != "" {
		t.Errorf("case = %+v, want untouched", c)
	}
	if len(res.Changed) != 0 {
		t.Errorf("changed = %v, want empty", res.Changed)
	}
}

func TestReconcile_SameStatusIsNotAChange(t *testing.T) {
	l, _ := Reconcile(NewLedger(), Records(report("C1", "new")))
	_, res := Reconcile(l, Records(report("C1", "new")))
	if len(res.Changed) != 0 {
		t.Errorf("changed = %v, want empty", res.Changed)
	}
	if res.Applied != 1 {
		t.Errorf("applied = %d, want 1", res.Applied)
	}
}

func TestReconcile_NewCaseCreation(t *testing.T) {
	r := Report{CaseID: "C9"}
	r.Fields[Customer] = "Jane Doe"
	r.Fields[Status] = "Lead"
	r.Has = r.Has.With(Customer).With(Status)

	l, res := Reconcile(NewLedger(), Records(r))

	if l.Len() != 1 || res.Created != 1 {
		t.Fatalf("Len() = %d created = %d, want exactly one row", l.Len(), res.Created)
	}
	want := Case{ID: "C9", Fields: r.Fields, Payments: map[string]decimal.Decimal{}}
	got, _ := l.Get("C9")
	if diff := cmp.Diff(want, got, decimalEqual); diff != "" {
		t.Errorf("case mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcile_Additivity(t *testing.T) {
	amounts := []string{"500", "250.25", "0.10", "0.20", "1200.5", "3", "0"}
	want := decimal.Zero
	var payments []Record
	for _, a := range amounts {
		want = want.Add(D(a))
		payments = append(payments, payment("C1", "Proc Fee", a))
	}
	seed, _ := Reconcile(NewLedger(), Records(report("C1", "new")))

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		r.Shuffle(len(payments), func(i, j int) { payments[i], payments[j] = payments[j], payments[i] })
		l, res := Reconcile(seed, Records(payments...))
		c, _ := l.Get("C1")
		if got := c.Payment("Proc Fee"); !got.Equal(want) {
			t.Fatalf("order %v: Proc Fee = %s, want %s", payments, got, want)
		}
		if res.Applied != len(payments) {
			t.Fatalf("applied = %d, want %d", res.Applied, len(payments))
		}
	}
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	l, _ := Reconcile(NewLedger(), Records(report("C1", "new")))
	_, _ = Reconcile(l, Records(payment("C1", "Proc Fee", "10"), report("C1", "Complete"), report("C2", "new")))

	c, _ := l.Get("C1")
	if l.Len() != 1 || c.Status() != "new" || len(c.Payments) != 0 || len(l.PaymentTypes()) != 0 {
		t.Errorf("input ledger was mutated: %+v types=%v", c, l.PaymentTypes())
	}
}

func TestReconcile_RowErrorsAreCounted(t *testing.T) {
	seed, _ := Reconcile(NewLedger(), Records(report("C1", "new")))

	var records iter.Seq2[Record, error] = func(yield func(Record, error) bool) {
		_ = yield(payment("C1", "Proc Fee", "100"), nil) &&
			yield(nil, &RowError{Document: "statement.pdf", Row: 3, Reason: SkipInvalidAmount, Value: "N/A"}) &&
			yield(payment("C1", "Proc Fee", "50"), nil) &&
			yield(nil, errors.New("boom")) &&
			yield(payment("", "Proc Fee", "50"), nil) &&
			yield(payment("C1", "", "50"), nil) &&
			yield(Payment{CaseID: "C1", Type: "Proc Fee", Amount: D("-1")}, nil)
	}
	l, res := Reconcile(seed, records)

	c, _ := l.Get("C1")
	if got := c.Payment("Proc Fee"); !got.Equal(D("150")) {
		t.Errorf("Proc Fee = %s, want 150", got)
	}
	want := map[SkipReason]int{
		SkipInvalidAmount: 2,
		SkipMalformedRow:  1,
		SkipMissingCaseID: 1,
		SkipMissingType:   1,
	}
	if diff := cmp.Diff(want, res.SkippedBy); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
	if res.Skipped != 5 {
		t.Errorf("skipped = %d, want 5", res.Skipped)
	}
}

func TestReconcile_ReservedPaymentType(t *testing.T) {
	seed, _ := Reconcile(NewLedger(), Records(report("C1", "new")))

	l, res := Reconcile(seed, Records(
		payment("C1", "Status", "100"),
		payment("C1", "case id", "5"),
		payment("C1", " full names ", "5"),
		payment("C1", "Proc Fee", "10"),
	))
	c, _ := l.Get("C1")
	if c.Status() != "new" {
		t.Errorf("status = %q, want new", c.Status())
	}
	if diff := cmp.Diff([]string{"Proc Fee"}, l.PaymentTypes()); diff != "" {
		t.Errorf("payment types mismatch (-want +got):\n%s", diff)
	}
	if res.SkippedBy[SkipReservedType] != 3 || res.Applied != 1 {
		t.Errorf("result = %+v, want 3 reserved skipped and 1 applied", res)
	}
}

func TestReconcile_PaymentTypeColumnsAreAppendOnly(t *testing.T) {
	l, _ := Reconcile(NewLedger(), Records(report("C1", "new"), report("C2", "new")))
	l, _ = Reconcile(l, Records(
		payment("C1", "Proc Fee", "1"),
		payment("C2", "Renewal", "1"),
		payment("C1", "Proc Fee", "1"),
		payment("C2", "Arrangement", "1"),
	))
	l, _ = Reconcile(l, Records(payment("C1", "Arrangement", "1"), payment("C1", "Bonus", "1")))

	want := []string{"Proc Fee", "Renewal", "Arrangement", "Bonus"}
	if diff := cmp.Diff(want, l.PaymentTypes()); diff != "" {
		t.Errorf("payment types mismatch (-want +got):\n%s", diff)
	}
}

func TestResult_Merge(t *testing.T) {
	var total Result
	total.Merge(&Result{Changed: NewCaseSet("C1"), Applied: 2, Skipped: 1, SkippedBy: map[SkipReason]int{SkipUnknownCase: 1}})
	total.Merge(&Result{Changed: NewCaseSet("C2", "C1"), Applied: 1, Created: 1, Skipped: 2, SkippedBy: map[SkipReason]int{SkipUnknownCase: 1, SkipInvalidAmount: 1}})
	total.Merge(nil)

	if diff := cmp.Diff([]string{"C1", "C2"}, total.Changed.Sorted()); diff != "" {
		t.Errorf("changed mismatch (-want +got):\n%s", diff)
	}
	if total.Applied != 3 || total.Created != 1 || total.Skipped != 3 {
		t.Errorf("counts = %+v", total)
	}
	if total.SkippedBy[SkipUnknownCase] != 2 || total.SkippedBy[SkipInvalidAmount] != 1 {
		t.Errorf("skipped by = %v", total.SkippedBy)
	}
}
