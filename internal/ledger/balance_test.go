package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"splittracker/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expense(personID, paidFor, paid string) core.Expense {
	return core.Expense{
		PaidForPersonID: personID,
		AmountPaidFor:   dec(paidFor),
		AmountPaid:      dec(paid),
	}
}

func TestBalanceFor(t *testing.T) {
	john := core.Person{ID: "p1", Name: "John Smith"}
	expenses := []core.Expense{
		expense("p1", "45.50", "20.00"), // owes 25.50
		expense("p1", "10.00", "15.00"), // overpaid 5.00
		expense("p1", "32.00", "32.00"), // settled exactly
		expense("p2", "99.99", "0"),     // someone else's
	}

	b := BalanceFor(john, expenses)
	if !b.TotalOwed.Equal(dec("25.50")) {
		t.Fatalf("totalOwed = %s", b.TotalOwed)
	}
	if !b.TotalOwing.Equal(dec("5.00")) {
		t.Fatalf("totalOwing = %s", b.TotalOwing)
	}
	if !b.NetBalance.Equal(dec("20.50")) {
		t.Fatalf("netBalance = %s", b.NetBalance)
	}
	if b.TransactionCount != 3 {
		t.Fatalf("transactionCount = %d", b.TransactionCount)
	}
}

func TestBalanceForNoExpenses(t *testing.T) {
	b := BalanceFor(core.Person{ID: "p1"}, nil)
	if !b.TotalOwed.IsZero() || !b.TotalOwing.IsZero() || !b.NetBalance.IsZero() {
		t.Fatalf("expected all-zero balance, got %+v", b)
	}
	if b.TransactionCount != 0 {
		t.Fatalf("transactionCount = %d", b.TransactionCount)
	}
}

func TestBalanceForExactDecimals(t *testing.T) {
	// Three 0.10 payments against 0.30 must settle exactly.
	b := BalanceFor(core.Person{ID: "p1"}, []core.Expense{
		expense("p1", "0.30", "0.30"),
	})
	if !b.TotalOwed.IsZero() || !b.TotalOwing.IsZero() {
		t.Fatalf("0.30 vs 0.30 should contribute nothing: owed=%s owing=%s", b.TotalOwed, b.TotalOwing)
	}
}

func TestBalancesForAllAndSum(t *testing.T) {
	people := []core.Person{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}}
	expenses := []core.Expense{
		expense("p1", "45.50", "20.00"),
		expense("p2", "32.00", "40.00"),
	}

	balances := BalancesForAll(people, expenses)
	if len(balances) != 3 {
		t.Fatalf("expected 3 balances, got %d", len(balances))
	}

	totals := SumBalances(balances)
	if !totals.TotalOwed.Equal(dec("25.50")) {
		t.Fatalf("totalOwed = %s", totals.TotalOwed)
	}
	if !totals.TotalOwing.Equal(dec("8.00")) {
		t.Fatalf("totalOwing = %s", totals.TotalOwing)
	}
	if !totals.NetBalance.Equal(dec("17.50")) {
		t.Fatalf("netBalance = %s", totals.NetBalance)
	}

	// Totals must equal the fold of the individual figures.
	owed, owing := decimal.Zero, decimal.Zero
	for _, b := range balances {
		owed = owed.Add(b.TotalOwed)
		owing = owing.Add(b.TotalOwing)
	}
	if !totals.TotalOwed.Equal(owed) || !totals.TotalOwing.Equal(owing) {
		t.Fatalf("totals drifted from per-person sums")
	}
}
