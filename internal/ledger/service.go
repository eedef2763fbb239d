package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"splittracker/internal/core"
	"splittracker/internal/events"
	"splittracker/internal/store"
)

// EventPublisher is the outbound port for ledger events. Publishing is
// best-effort: a broker failure is logged, never surfaced to the caller.
type EventPublisher interface {
	PublishPaymentApplied(ctx context.Context, msg *events.PaymentApplied) error
}

// Service orchestrates payment application and balance reads over a store.
type Service struct {
	store  store.Store
	events EventPublisher

	// Per-expense locks serialize concurrent payment applications so a
	// read-add-write cannot lose an increment. The map grows with the
	// number of distinct expenses paid against in this process.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(st store.Store, ev EventPublisher) *Service {
	return &Service{
		store:  st,
		events: ev,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *Service) lockExpense(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// PaymentInput carries a payment application request.
type PaymentInput struct {
	Amount      decimal.Decimal
	PaymentType core.PaymentType
	Notes       *string
}

// ApplyPayment applies a payment to an expense.
//
// The cumulative amountPaid only ever grows; isPaid never flips back to
// false; paidAt is stamped exactly once, on the application that first
// pushes amountPaid to or past amountPaidFor. There is no refund or undo.
//
// The expense update and the payment append are issued sequentially without
// a surrounding transaction. If the append fails after the update committed,
// the caller gets an error naming the partial failure.
func (s *Service) ApplyPayment(ctx context.Context, expenseID string, in PaymentInput) (*core.Expense, *core.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, core.ErrInvalidAmount
	}
	if in.PaymentType == "" {
		in.PaymentType = core.Full
	}
	if err := in.PaymentType.Validate(); err != nil {
		return nil, nil, err
	}

	l := s.lockExpense(expenseID)
	l.Lock()
	defer l.Unlock()

	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, fmt.Errorf("get expense: %w", err)
	}

	newAmountPaid := existing.AmountPaid.Add(in.Amount)
	isPaidNow := newAmountPaid.GreaterThanOrEqual(existing.AmountPaidFor)

	update := core.ExpenseUpdate{
		AmountPaid: &newAmountPaid,
		IsPaid:     &isPaidNow,
	}
	if isPaidNow && !existing.IsPaid {
		// First crossing of the paid threshold. Later overpayments
		// leave the stamp alone.
		now := time.Now().UTC()
		update.PaidAt = &now
	}

	updated, err := s.store.UpdateExpense(ctx, expenseID, update)
	if err != nil {
		return nil, nil, fmt.Errorf("update expense: %w", err)
	}

	payment, err := s.store.CreatePayment(ctx, core.NewPayment{
		ExpenseID:   expenseID,
		Amount:      in.Amount,
		PaymentType: in.PaymentType,
		Notes:       in.Notes,
	})
	if err != nil {
		// The expense update already committed; the payment history is
		// now behind the cached amountPaid until reconciled.
		return nil, nil, fmt.Errorf("payment applied but record append failed: %w", err)
	}

	s.publishPaymentApplied(ctx, updated, payment)

	return updated, payment, nil
}

func (s *Service) publishPaymentApplied(ctx context.Context, e *core.Expense, p *core.Payment) {
	if s.events == nil {
		return
	}
	msg := &events.PaymentApplied{
		ExpenseID:     e.ID,
		PaymentID:     p.ID,
		Amount:        core.FormatAmount(p.Amount),
		NewAmountPaid: core.FormatAmount(e.AmountPaid),
		IsPaid:        e.IsPaid,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.events.PublishPaymentApplied(ctx, msg); err != nil {
		// Don't fail the request; the payment is durably recorded.
		slog.ErrorContext(ctx, "Failed to publish payment applied event",
			"expense_id", e.ID, "payment_id", p.ID, "error", err)
	}
}

// ExpenseDetails returns an expense with its full payment history.
func (s *Service) ExpenseDetails(ctx context.Context, expenseID string) (*core.ExpenseWithPayments, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	payments, err := s.store.ListPayments(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	if payments == nil {
		payments = []core.Payment{}
	}
	return &core.ExpenseWithPayments{
		ExpenseWithPerson: *expense,
		Payments:          payments,
	}, nil
}

// PeopleWithBalances derives every person's balance from a snapshot of
// people and expenses. The snapshot is two sequential reads; without
// storage-level isolation the result may reflect a torn read across them,
// which is acceptable for this domain.
func (s *Service) PeopleWithBalances(ctx context.Context) ([]PersonBalance, error) {
	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	flat := make([]core.Expense, len(expenses))
	for i, e := range expenses {
		flat[i] = e.Expense
	}
	return BalancesForAll(people, flat), nil
}

// TotalBalances folds the per-person balances into ledger-wide totals.
func (s *Service) TotalBalances(ctx context.Context) (Totals, error) {
	balances, err := s.PeopleWithBalances(ctx)
	if err != nil {
		return Totals{}, err
	}
	return SumBalances(balances), nil
}
