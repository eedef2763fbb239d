// Package core holds the domain model of the ledger: people, expenses,
// payments, and the money representation shared by every backend.
//
// Money amounts are exact decimals end to end. They enter the system as
// decimal text, are held as decimal.Decimal in memory, and are persisted as
// decimal text again. Binary floating point never touches a stored amount.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a payment or expense amount from its text form.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// The value must be strictly positive; zero, negative, and non-numeric
// inputs are rejected with ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParsePaidAmount parses a cumulative paid amount. Unlike ParseAmount it
// allows zero, since a fresh expense starts with amountPaid = "0".
// An empty string also maps to zero, matching the durable schema where the
// field is nullable with "0" semantics.
func ParsePaidAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount in its canonical storage form: a plain
// decimal string with two fractional digits ("45.50", "0.00").
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
