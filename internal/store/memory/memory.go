// Package memory provides an in-process implementation of store.Store.
// It backs local development and tests; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"splittracker/internal/core"
	"splittracker/internal/store"
)

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)

type Store struct {
	mu       sync.Mutex
	people   map[string]core.Person
	expenses map[string]core.Expense
	payments map[string]core.Payment
}

func New() *Store {
	return &Store{
		people:   make(map[string]core.Person),
		expenses: make(map[string]core.Expense),
		payments: make(map[string]core.Payment),
	}
}

// NewSeeded returns a store pre-populated with the sample people and
// expenses used by the demo deployment.
func NewSeeded() *Store {
	s := New()
	ctx := context.Background()

	john, _ := s.CreatePerson(ctx, core.NewPerson{Name: "John Smith", Initials: "JS", Color: "#00D4AA"})
	emily, _ := s.CreatePerson(ctx, core.NewPerson{Name: "Emily Rodriguez", Initials: "EM", Color: "#FF6B6B"})
	_, _ = s.CreatePerson(ctx, core.NewPerson{Name: "Mike Johnson", Initials: "MJ", Color: "#F39C12"})

	gpay := "gpay"
	lunch := "Lunch at restaurant"
	movies := "Movie tickets"
	_, _ = s.CreateExpense(ctx, core.NewExpense{
		AmountPaidFor:   decimal.RequireFromString("45.50"),
		PaidForPersonID: john.ID,
		Category:        "food",
		PaymentMethod:   "upi",
		BankApp:         &gpay,
		Notes:           &lunch,
	})
	_, _ = s.CreateExpense(ctx, core.NewExpense{
		AmountPaidFor:   decimal.RequireFromString("32.00"),
		PaidForPersonID: emily.ID,
		Category:        "other",
		PaymentMethod:   "credit_card",
		Notes:           &movies,
		IsPaid:          true,
		AmountPaid:      decimal.RequireFromString("32.00"),
	})
	return s
}

func (s *Store) ListPeople(_ context.Context) ([]core.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Person, 0, len(s.people))
	for _, p := range s.people {
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) GetPerson(_ context.Context, id string) (*core.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &p, nil
}

func (s *Store) CreatePerson(_ context.Context, np core.NewPerson) (*core.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := core.Person{
		ID:       uuid.New().String(),
		Name:     np.Name,
		Initials: np.Initials,
		Color:    np.Color,
		Avatar:   np.Avatar,
	}
	s.people[p.ID] = p
	return &p, nil
}

func (s *Store) DeletePerson(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[id]; !ok {
		return false, nil
	}
	// Expenses referencing the person stay behind as orphans.
	delete(s.people, id)
	return true, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.ExpenseWithPerson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ExpenseWithPerson, 0, len(s.expenses))
	for _, e := range s.expenses {
		person, ok := s.people[e.PaidForPersonID]
		if !ok {
			continue // orphaned, drop from reads
		}
		out = append(out, core.ExpenseWithPerson{Expense: e, Person: person})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (*core.ExpenseWithPerson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	person, ok := s.people[e.PaidForPersonID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &core.ExpenseWithPerson{Expense: e, Person: person}, nil
}

func (s *Store) CreateExpense(_ context.Context, ne core.NewExpense) (*core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := core.Expense{
		ID:              uuid.New().String(),
		AmountPaidFor:   ne.AmountPaidFor,
		PaidForPersonID: ne.PaidForPersonID,
		Category:        ne.Category,
		PaymentMethod:   ne.PaymentMethod,
		BankApp:         ne.BankApp,
		Notes:           ne.Notes,
		IsPaid:          ne.IsPaid,
		AmountPaid:      ne.AmountPaid,
		CreatedAt:       time.Now().UTC(),
	}
	s.expenses[e.ID] = e
	return &e, nil
}

func (s *Store) UpdateExpense(_ context.Context, id string, u core.ExpenseUpdate) (*core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	u.Apply(&e)
	s.expenses[id] = e
	return &e, nil
}

func (s *Store) ListPayments(_ context.Context, expenseID string) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Payment
	for _, p := range s.payments {
		if p.ExpenseID == expenseID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreatePayment(_ context.Context, np core.NewPayment) (*core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := core.Payment{
		ID:          uuid.New().String(),
		ExpenseID:   np.ExpenseID,
		Amount:      np.Amount,
		PaymentType: np.PaymentType,
		Notes:       np.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	s.payments[p.ID] = p
	return &p, nil
}

func (s *Store) Close() error { return nil }
