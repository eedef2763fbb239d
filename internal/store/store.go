// Package store defines the persistence contract for the ledger.
//
// The interface is capability-shaped: an in-memory map, a SQLite file, and a
// MongoDB collection set all satisfy it, and the business layers never learn
// which one they are talking to. Every operation is atomic at the
// single-record level; the datastore is assumed single-writer with
// last-write-wins semantics, so no multi-record transactions are offered.
package store

import (
	"context"

	"splittracker/internal/core"
)

// Store is the persistence contract shared by all backends.
//
// Read results embed the referenced person; expenses whose person has been
// deleted are dropped from reads rather than surfaced as errors. That
// orphan-and-drop rule is longstanding observed behavior, kept as is.
type Store interface {
	// ListPeople returns every person, in no guaranteed order.
	ListPeople(ctx context.Context) ([]core.Person, error)

	// GetPerson returns the person with the given id, or ErrNotFound.
	GetPerson(ctx context.Context, id string) (*core.Person, error)

	// CreatePerson assigns an id and persists the person.
	CreatePerson(ctx context.Context, p core.NewPerson) (*core.Person, error)

	// DeletePerson removes the person record. It reports whether a
	// record existed. Expenses referencing the person are NOT deleted;
	// they become orphans and vanish from reads.
	DeletePerson(ctx context.Context, id string) (bool, error)

	// ListExpenses returns all non-orphaned expenses with their person,
	// ordered newest-createdAt-first.
	ListExpenses(ctx context.Context) ([]core.ExpenseWithPerson, error)

	// GetExpense returns one expense with its person. ErrNotFound covers
	// both unknown ids and orphaned expenses.
	GetExpense(ctx context.Context, id string) (*core.ExpenseWithPerson, error)

	// CreateExpense assigns an id, defaults amountPaid to zero and paidAt
	// to nil when unset, stamps createdAt, and persists the expense.
	CreateExpense(ctx context.Context, e core.NewExpense) (*core.Expense, error)

	// UpdateExpense merges the patch into the stored record and returns
	// the result, or ErrNotFound for an unknown id.
	UpdateExpense(ctx context.Context, id string, u core.ExpenseUpdate) (*core.Expense, error)

	// ListPayments returns all payments recorded against the expense,
	// in no guaranteed order.
	ListPayments(ctx context.Context, expenseID string) ([]core.Payment, error)

	// CreatePayment assigns an id, stamps createdAt, and persists the
	// payment.
	CreatePayment(ctx context.Context, p core.NewPayment) (*core.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}
