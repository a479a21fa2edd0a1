package commission

import (
	"github.com/shopspring/decimal"
)

// D is a helper for test to create a decimal from a string constant.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// GBP is a helper for test to create pound money from a string constant.
func GBP(s string) Money { return M(D(s), "GBP") }

// report is a helper for test to create a Report carrying a status.
func report(id, status string) Report {
	var fs Fields
	fs[Status] = status
	return Report{CaseID: id, Fields: fs, Has: FieldSet(0).With(Status)}
}

// payment is a helper for test to create a Payment.
func payment(id, paymentType, amount string) Payment {
	return Payment{CaseID: id, Type: paymentType, Amount: D(amount)}
}
