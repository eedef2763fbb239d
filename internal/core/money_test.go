package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"45.50", "45.5", true},
		{"45,50", "45.5", true},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.5", true},
		{"0.005", "0.005", true}, // no rounding on parse
		{"-1", "", false},
		{"0", "", false},
		{"0.00", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"  ", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParsePaidAmountAllowsZero(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"0", "0", true},
		{"0.00", "0", true},
		{"", "0", true},
		{"  ", "0", true},
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{"-0.01", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		got, err := ParsePaidAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"45.5", "45.50"},
		{"0", "0.00"},
		{"5", "5.00"},
		{"12.345", "12.35"}, // rounds half away from zero
		{"-3.2", "-3.20"},
	}
	for _, tc := range cases {
		if got := FormatAmount(decimal.RequireFromString(tc.in)); got != tc.out {
			t.Fatalf("%s expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestParseFormatPreservesExactness(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3, never 0.30000000000000004.
	a, err := ParseAmount("0.1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseAmount("0.2")
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Add(b).String(); got != "0.3" {
		t.Fatalf("0.1 + 0.2 = %s", got)
	}
}
