package commission

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"500.00", "500"},
		{"£500.00", "500"},
		{"£1,250.50", "1250.5"},
		{" £ 1 250.50 ", "1250.5"},
		{"GBP 99.99", "99.99"},
		{"99.99 GBP", "99.99"},
		{"€12", "12"},
		{"0", "0"},
		{"1,000,000", "1000000"},
	}
	for _, tc := range testCases {
		got, err := ParseAmount(tc.in)
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if !got.Equal(D(tc.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"N/A", "abc", "12.3.4", "£-5.00", "-1"} {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) expected an error", in)
		}
	}
	if _, err := ParseAmount(" £ "); !errors.Is(err, ErrEmptyAmount) {
		t.Errorf("ParseAmount(blank) = %v, want ErrEmptyAmount", err)
	}
	if _, err := ParseAmount("-1"); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("ParseAmount(-1) = %v, want ErrNegativeAmount", err)
	}
}

func TestMoney_String(t *testing.T) {
	for _, tc := range []struct {
		m    Money
		want string
	}{
		{GBP("1250.5"), "£1,250.50"},
		{GBP("0"), "£0.00"},
		{GBP("0.005"), "£0.01"},
	} {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
	if got := GBP("0").Cell(); got != "-" {
		t.Errorf("Cell() = %q, want \"-\"", got)
	}
}
