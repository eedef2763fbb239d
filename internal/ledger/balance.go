// Package ledger implements the business rules of the expense ledger:
// balance derivation and payment application. It owns no storage; it reads
// and writes through the store.Store contract.
package ledger

import (
	"github.com/shopspring/decimal"

	"splittracker/internal/core"
)

// PersonBalance is the derived balance for one person.
type PersonBalance struct {
	core.Person
	TotalOwed        decimal.Decimal `json:"totalOwed"`  // outstanding amount still owed to this person
	TotalOwing       decimal.Decimal `json:"totalOwing"` // overpayment across this person's expenses
	NetBalance       decimal.Decimal `json:"netBalance"`
	TransactionCount int             `json:"transactionCount"` // expenses, not payments
}

// Totals aggregates balance figures across the whole ledger.
type Totals struct {
	TotalOwed  decimal.Decimal `json:"totalOwed"`
	TotalOwing decimal.Decimal `json:"totalOwing"`
	NetBalance decimal.Decimal `json:"netBalance"`
}

// BalanceFor reduces a person's expenses into their balance. Accumulation is
// exact decimal arithmetic throughout; nothing is rounded until formatting.
//
// Per expense: remaining = amountPaidFor - amountPaid. Positive remainders
// add to TotalOwed, negative ones add their magnitude to TotalOwing, exact
// zero contributes to neither.
func BalanceFor(person core.Person, expenses []core.Expense) PersonBalance {
	b := PersonBalance{
		Person:     person,
		TotalOwed:  decimal.Zero,
		TotalOwing: decimal.Zero,
		NetBalance: decimal.Zero,
	}
	for _, e := range expenses {
		if e.PaidForPersonID != person.ID {
			continue
		}
		b.TransactionCount++
		remaining := e.AmountPaidFor.Sub(e.AmountPaid)
		switch {
		case remaining.IsPositive():
			b.TotalOwed = b.TotalOwed.Add(remaining)
		case remaining.IsNegative():
			b.TotalOwing = b.TotalOwing.Add(remaining.Abs())
		}
	}
	b.NetBalance = b.TotalOwed.Sub(b.TotalOwing)
	return b
}

// BalancesForAll computes every person's balance over one expense snapshot.
// A person with no expenses yields an all-zero balance.
func BalancesForAll(people []core.Person, expenses []core.Expense) []PersonBalance {
	out := make([]PersonBalance, 0, len(people))
	for _, p := range people {
		out = append(out, BalanceFor(p, expenses))
	}
	return out
}

// SumBalances folds per-person balances into ledger totals. Totals are sums
// of the per-person fields, never recomputed from raw expenses, so they are
// consistent with the individual figures by construction.
func SumBalances(balances []PersonBalance) Totals {
	t := Totals{
		TotalOwed:  decimal.Zero,
		TotalOwing: decimal.Zero,
		NetBalance: decimal.Zero,
	}
	for _, b := range balances {
		t.TotalOwed = t.TotalOwed.Add(b.TotalOwed)
		t.TotalOwing = t.TotalOwing.Add(b.TotalOwing)
	}
	t.NetBalance = t.TotalOwed.Sub(t.TotalOwing)
	return t
}
