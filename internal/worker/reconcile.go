// Package worker contains the reconcile worker: it re-derives each
// expense's cumulative paid amount from its payment history and reports
// drift against the cached field.
//
// The cached amountPaid is maintained incrementally at payment time, not
// recomputed on read, so a crash between the expense update and the payment
// append can leave the two out of step. The worker detects that; it does
// not repair it.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"splittracker/internal/core"
	"splittracker/internal/events"
	"splittracker/internal/store"
)

type Reconciler struct {
	store   store.Store
	timeout time.Duration
}

func NewReconciler(st store.Store, timeout time.Duration) *Reconciler {
	return &Reconciler{store: st, timeout: timeout}
}

// HandlePaymentApplied processes one payment-applied event.
func (r *Reconciler) HandlePaymentApplied(ctx context.Context, msg *events.PaymentApplied) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	slog.InfoContext(ctx, "Reconciling expense",
		"expense_id", msg.ExpenseID,
		"payment_id", msg.PaymentID)

	report, err := r.CheckExpense(ctx, msg.ExpenseID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted person orphaned the expense between the event and
		// now; nothing to reconcile against.
		slog.WarnContext(ctx, "Expense vanished before reconciliation", "expense_id", msg.ExpenseID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("check expense: %w", err)
	}

	if report.Consistent() {
		slog.DebugContext(ctx, "Expense consistent",
			"expense_id", msg.ExpenseID,
			"amount_paid", core.FormatAmount(report.CachedAmountPaid))
		return nil
	}

	slog.WarnContext(ctx, "Expense drifted from payment history",
		"expense_id", msg.ExpenseID,
		"cached_amount_paid", core.FormatAmount(report.CachedAmountPaid),
		"derived_amount_paid", core.FormatAmount(report.DerivedAmountPaid),
		"cached_is_paid", report.CachedIsPaid,
		"derived_is_paid", report.DerivedIsPaid)
	return nil
}

// DriftReport compares an expense's cached figures with what its payment
// history derives.
type DriftReport struct {
	ExpenseID         string
	CachedAmountPaid  decimal.Decimal
	DerivedAmountPaid decimal.Decimal
	CachedIsPaid      bool
	DerivedIsPaid     bool
}

func (d DriftReport) Consistent() bool {
	return d.CachedAmountPaid.Equal(d.DerivedAmountPaid) && d.CachedIsPaid == d.DerivedIsPaid
}

// CheckExpense re-derives the paid state of one expense from its payments.
func (r *Reconciler) CheckExpense(ctx context.Context, expenseID string) (*DriftReport, error) {
	expense, err := r.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	payments, err := r.store.ListPayments(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	derived := decimal.Zero
	for _, p := range payments {
		derived = derived.Add(p.Amount)
	}

	return &DriftReport{
		ExpenseID:         expenseID,
		CachedAmountPaid:  expense.AmountPaid,
		DerivedAmountPaid: derived,
		CachedIsPaid:      expense.IsPaid,
		DerivedIsPaid:     derived.GreaterThanOrEqual(expense.AmountPaidFor),
	}, nil
}
