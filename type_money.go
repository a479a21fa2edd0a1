package commission

import (
	"errors"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency statements are issued in unless configured otherwise.
const DefaultCurrency = "GBP"

// Money represents a monetary value, for display purposes.
// Amounts are accumulated as decimal.Decimal in the ledger, Money only pairs them with a currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns a Money value from a number.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	var d decimal.Decimal
	switch v := any(value).(type) {
	case decimal.Decimal:
		d = v
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	}
	return Money{value: d, cur: currency}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value, like "£1,250.00".
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// Cell returns the string representation used in the dashboard table: "-" for zero.
func (m Money) Cell() string {
	if m.value.IsZero() {
		return "-"
	}
	return m.String()
}

func (m Money) Currency() string         { return m.cur }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) Add(n Money) Money        { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch" + A.cur + "!=" + B.cur)
	}
	return A.cur
}

var (
	// ErrEmptyAmount is returned by ParseAmount for a blank amount.
	ErrEmptyAmount = errors.New("empty amount")
	// ErrNegativeAmount is returned by ParseAmount for an amount below zero.
	ErrNegativeAmount = errors.New("negative amount")
)

// ParseAmount parses a display formatted amount like "£1,250.00" or "GBP 1 250.5".
//
// Currency symbols and codes, grouping separators and blanks are removed, the decimal
// point is kept. Anything that does not reduce to a non-negative number is an error.
func ParseAmount(s string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range s {
		if r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := b.String()
	for _, code := range []string{"GBP", "EUR", "USD"} {
		cleaned = strings.TrimPrefix(cleaned, code)
		cleaned = strings.TrimSuffix(cleaned, code)
	}
	if cleaned == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}
