package worker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"splittracker/internal/core"
	"splittracker/internal/events"
	"splittracker/internal/store/memory"
)

func seed(t *testing.T, st *memory.Store, amount string) *core.Expense {
	t.Helper()
	ctx := context.Background()
	p, err := st.CreatePerson(ctx, core.NewPerson{Name: "A", Initials: "A", Color: "#fff"})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	e, err := st.CreateExpense(ctx, core.NewExpense{
		AmountPaidFor:   decimal.RequireFromString(amount),
		PaidForPersonID: p.ID,
		Category:        "food",
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return e
}

func pay(t *testing.T, st *memory.Store, expenseID, amount string) {
	t.Helper()
	ctx := context.Background()
	d := decimal.RequireFromString(amount)
	e, err := st.GetExpense(ctx, expenseID)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	newPaid := e.AmountPaid.Add(d)
	isPaid := newPaid.GreaterThanOrEqual(e.AmountPaidFor)
	if _, err := st.UpdateExpense(ctx, expenseID, core.ExpenseUpdate{AmountPaid: &newPaid, IsPaid: &isPaid}); err != nil {
		t.Fatalf("update expense: %v", err)
	}
	if _, err := st.CreatePayment(ctx, core.NewPayment{ExpenseID: expenseID, Amount: d, PaymentType: core.Partial}); err != nil {
		t.Fatalf("create payment: %v", err)
	}
}

func TestCheckExpenseConsistent(t *testing.T) {
	st := memory.New()
	e := seed(t, st, "45.50")
	pay(t, st, e.ID, "20.00")
	pay(t, st, e.ID, "25.50")

	r := NewReconciler(st, 5*time.Second)
	report, err := r.CheckExpense(context.Background(), e.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !report.Consistent() {
		t.Fatalf("expected consistent, got %+v", report)
	}
	if !report.DerivedAmountPaid.Equal(decimal.RequireFromString("45.50")) {
		t.Fatalf("derived = %s", report.DerivedAmountPaid)
	}
	if !report.DerivedIsPaid {
		t.Fatal("derived isPaid should be true")
	}
}

func TestCheckExpenseDetectsDrift(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	e := seed(t, st, "45.50")

	// Expense updated but the payment record never landed.
	paid := decimal.RequireFromString("20.00")
	isPaid := false
	if _, err := st.UpdateExpense(ctx, e.ID, core.ExpenseUpdate{AmountPaid: &paid, IsPaid: &isPaid}); err != nil {
		t.Fatalf("update: %v", err)
	}

	r := NewReconciler(st, 5*time.Second)
	report, err := r.CheckExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.Consistent() {
		t.Fatalf("expected drift, got %+v", report)
	}
	if !report.CachedAmountPaid.Equal(paid) || !report.DerivedAmountPaid.IsZero() {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestHandlePaymentAppliedSkipsVanishedExpense(t *testing.T) {
	r := NewReconciler(memory.New(), 5*time.Second)
	err := r.HandlePaymentApplied(context.Background(), &events.PaymentApplied{
		ExpenseID: "missing",
		PaymentID: "p1",
	})
	if err != nil {
		t.Fatalf("vanished expense should not error: %v", err)
	}
}

func TestHandlePaymentApplied(t *testing.T) {
	st := memory.New()
	e := seed(t, st, "45.50")
	pay(t, st, e.ID, "20.00")

	r := NewReconciler(st, 5*time.Second)
	err := r.HandlePaymentApplied(context.Background(), &events.PaymentApplied{
		ExpenseID:     e.ID,
		PaymentID:     "p1",
		Amount:        "20.00",
		NewAmountPaid: "20.00",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
}
