// Package sqlite provides a SQLite-backed implementation of store.Store
// using the pure Go driver (no CGO). Money columns hold decimal text.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"splittracker/internal/core"
	"splittracker/internal/store"
)

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// unavailable wraps a driver failure so callers can match the transient
// error class without knowing the backend.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, core.ErrUnavailable, err)
}

func (s *Store) ListPeople(ctx context.Context) ([]core.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, initials, color, avatar FROM people")
	if err != nil {
		return nil, unavailable("list people", err)
	}
	defer rows.Close()

	var out []core.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate people", err)
	}
	return out, nil
}

func (s *Store) GetPerson(ctx context.Context, id string) (*core.Person, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, initials, color, avatar FROM people WHERE id = ?", id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get person", err)
	}
	return &p, nil
}

func (s *Store) CreatePerson(ctx context.Context, np core.NewPerson) (*core.Person, error) {
	p := core.Person{
		ID:       uuid.New().String(),
		Name:     np.Name,
		Initials: np.Initials,
		Color:    np.Color,
		Avatar:   np.Avatar,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO people (id, name, initials, color, avatar) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Initials, p.Color, nullString(p.Avatar))
	if err != nil {
		return nil, unavailable("insert person", err)
	}
	return &p, nil
}

func (s *Store) DeletePerson(ctx context.Context, id string) (bool, error) {
	// Expenses referencing the person are left in place as orphans.
	res, err := s.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return false, unavailable("delete person", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("delete person", err)
	}
	return n > 0, nil
}

const expenseWithPersonCols = `
	e.id, e.amount_paid_for, e.paid_for_person_id, e.category,
	e.payment_method, e.bank_app, e.notes, e.is_paid, e.amount_paid,
	e.created_at, e.paid_at,
	p.id, p.name, p.initials, p.color, p.avatar`

func (s *Store) ListExpenses(ctx context.Context) ([]core.ExpenseWithPerson, error) {
	// The inner join drops orphaned expenses.
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+expenseWithPersonCols+`
		FROM expenses e
		JOIN people p ON p.id = e.paid_for_person_id
		ORDER BY e.created_at DESC`)
	if err != nil {
		return nil, unavailable("list expenses", err)
	}
	defer rows.Close()

	var out []core.ExpenseWithPerson
	for rows.Next() {
		ewp, err := scanExpenseWithPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, ewp)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate expenses", err)
	}
	return out, nil
}

func (s *Store) GetExpense(ctx context.Context, id string) (*core.ExpenseWithPerson, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+expenseWithPersonCols+`
		FROM expenses e
		JOIN people p ON p.id = e.paid_for_person_id
		WHERE e.id = ?`, id)
	ewp, err := scanExpenseWithPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get expense", err)
	}
	return &ewp, nil
}

func (s *Store) CreateExpense(ctx context.Context, ne core.NewExpense) (*core.Expense, error) {
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
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (
			id, amount_paid_for, paid_for_person_id, category,
			payment_method, bank_app, notes, is_paid, amount_paid,
			created_at, paid_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, core.FormatAmount(e.AmountPaidFor), e.PaidForPersonID,
		e.Category, e.PaymentMethod, e.BankApp, e.Notes, e.IsPaid,
		core.FormatAmount(e.AmountPaid), e.CreatedAt, nil)
	if err != nil {
		return nil, unavailable("insert expense", err)
	}
	return &e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, id string, u core.ExpenseUpdate) (*core.Expense, error) {
	// Read-modify-write inside a transaction: the patch is merged in Go
	// so all backends share the same merge semantics.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin update expense", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, amount_paid_for, paid_for_person_id, category,
			payment_method, bank_app, notes, is_paid, amount_paid,
			created_at, paid_at
		FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("read expense for update", err)
	}

	u.Apply(&e)

	_, err = tx.ExecContext(ctx, `
		UPDATE expenses SET
			category = ?, payment_method = ?, bank_app = ?, notes = ?,
			is_paid = ?, amount_paid = ?, paid_at = ?
		WHERE id = ?`,
		e.Category, e.PaymentMethod, e.BankApp, e.Notes,
		e.IsPaid, core.FormatAmount(e.AmountPaid), e.PaidAt, id)
	if err != nil {
		return nil, unavailable("update expense", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit update expense", err)
	}
	return &e, nil
}

func (s *Store) ListPayments(ctx context.Context, expenseID string) ([]core.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expense_id, amount, payment_type, notes, created_at
		FROM payments WHERE expense_id = ? ORDER BY created_at`, expenseID)
	if err != nil {
		return nil, unavailable("list payments", err)
	}
	defer rows.Close()

	var out []core.Payment
	for rows.Next() {
		var (
			p       core.Payment
			amount  string
			payType string
			notes   sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.ExpenseID, &amount, &payType, &notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse payment amount %q: %w", amount, err)
		}
		p.PaymentType = core.PaymentType(payType)
		if notes.Valid {
			p.Notes = &notes.String
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate payments", err)
	}
	return out, nil
}

func (s *Store) CreatePayment(ctx context.Context, np core.NewPayment) (*core.Payment, error) {
	p := core.Payment{
		ID:          uuid.New().String(),
		ExpenseID:   np.ExpenseID,
		Amount:      np.Amount,
		PaymentType: np.PaymentType,
		Notes:       np.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, expense_id, amount, payment_type, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.ExpenseID, core.FormatAmount(p.Amount), string(p.PaymentType),
		p.Notes, p.CreatedAt)
	if err != nil {
		return nil, unavailable("insert payment", err)
	}
	return &p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row scanner) (core.Person, error) {
	var (
		p      core.Person
		avatar sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Initials, &p.Color, &avatar); err != nil {
		return core.Person{}, err
	}
	p.Avatar = avatar.String
	return p, nil
}

func scanExpense(row scanner) (core.Expense, error) {
	var (
		e              core.Expense
		amountPaidFor  string
		bankApp, notes sql.NullString
		amountPaid     string
		paidAt         sql.NullTime
	)
	err := row.Scan(&e.ID, &amountPaidFor, &e.PaidForPersonID, &e.Category,
		&e.PaymentMethod, &bankApp, &notes, &e.IsPaid, &amountPaid,
		&e.CreatedAt, &paidAt)
	if err != nil {
		return core.Expense{}, err
	}
	if e.AmountPaidFor, err = decimal.NewFromString(amountPaidFor); err != nil {
		return core.Expense{}, fmt.Errorf("parse amount_paid_for %q: %w", amountPaidFor, err)
	}
	if e.AmountPaid, err = core.ParsePaidAmount(amountPaid); err != nil {
		return core.Expense{}, fmt.Errorf("parse amount_paid %q: %w", amountPaid, err)
	}
	if bankApp.Valid {
		e.BankApp = &bankApp.String
	}
	if notes.Valid {
		e.Notes = &notes.String
	}
	if paidAt.Valid {
		t := paidAt.Time
		e.PaidAt = &t
	}
	return e, nil
}

func scanExpenseWithPerson(row scanner) (core.ExpenseWithPerson, error) {
	var (
		e              core.Expense
		p              core.Person
		amountPaidFor  string
		bankApp, notes sql.NullString
		amountPaid     string
		paidAt         sql.NullTime
		avatar         sql.NullString
	)
	err := row.Scan(&e.ID, &amountPaidFor, &e.PaidForPersonID, &e.Category,
		&e.PaymentMethod, &bankApp, &notes, &e.IsPaid, &amountPaid,
		&e.CreatedAt, &paidAt,
		&p.ID, &p.Name, &p.Initials, &p.Color, &avatar)
	if err != nil {
		return core.ExpenseWithPerson{}, err
	}
	if e.AmountPaidFor, err = decimal.NewFromString(amountPaidFor); err != nil {
		return core.ExpenseWithPerson{}, fmt.Errorf("parse amount_paid_for %q: %w", amountPaidFor, err)
	}
	if e.AmountPaid, err = core.ParsePaidAmount(amountPaid); err != nil {
		return core.ExpenseWithPerson{}, fmt.Errorf("parse amount_paid %q: %w", amountPaid, err)
	}
	if bankApp.Valid {
		e.BankApp = &bankApp.String
	}
	if notes.Valid {
		e.Notes = &notes.String
	}
	if paidAt.Valid {
		t := paidAt.Time
		e.PaidAt = &t
	}
	p.Avatar = avatar.String
	return core.ExpenseWithPerson{Expense: e, Person: p}, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
