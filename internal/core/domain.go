package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Full    PaymentType = "full"
	Partial PaymentType = "partial"
	Custom  PaymentType = "custom"
)

type (
	// PaymentType tags how a payment was entered. It is informational
	// only and never drives the paid/unpaid transition.
	PaymentType string

	// Person is a ledger participant. Immutable after creation except
	// for deletion.
	Person struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Initials string `json:"initials"`
		Color    string `json:"color"`
		Avatar   string `json:"avatar,omitempty"`
	}

	// Expense is a money obligation attributed to one person.
	// AmountPaid caches the running sum of all payments applied;
	// IsPaid caches AmountPaid >= AmountPaidFor as of the last update.
	Expense struct {
		ID              string          `json:"id"`
		AmountPaidFor   decimal.Decimal `json:"amountPaidFor"`
		PaidForPersonID string          `json:"paidForPersonId"`
		Category        string          `json:"category"`
		PaymentMethod   string          `json:"paymentMethod"`
		BankApp         *string         `json:"bankApp"`
		Notes           *string         `json:"notes"`
		IsPaid          bool            `json:"isPaid"`
		AmountPaid      decimal.Decimal `json:"amountPaid"`
		CreatedAt       time.Time       `json:"createdAt"`
		PaidAt          *time.Time      `json:"paidAt"`
	}

	// Payment is one contribution recorded against an expense.
	Payment struct {
		ID          string          `json:"id"`
		ExpenseID   string          `json:"expenseId"`
		Amount      decimal.Decimal `json:"amount"`
		PaymentType PaymentType     `json:"paymentType"`
		Notes       *string         `json:"notes"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	// ExpenseWithPerson embeds the referenced person in an expense for
	// read results. Stores drop expenses whose person was deleted.
	ExpenseWithPerson struct {
		Expense
		Person Person `json:"person"`
	}

	// ExpenseWithPayments is an expense detail view with its payment
	// history attached.
	ExpenseWithPayments struct {
		ExpenseWithPerson
		Payments []Payment `json:"payments"`
	}
)

// NewPerson carries the fields a caller supplies when creating a person.
type NewPerson struct {
	Name     string `json:"name"`
	Initials string `json:"initials"`
	Color    string `json:"color"`
	Avatar   string `json:"avatar,omitempty"`
}

func (p NewPerson) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(p.Initials) == "" {
		return ErrEmptyInitials
	}
	if strings.TrimSpace(p.Color) == "" {
		return ErrEmptyColor
	}
	return nil
}

// NewExpense carries the caller-supplied fields for a new expense.
// AmountPaid and IsPaid may be pre-set (the original schema allows
// inserting an already-settled expense); stores default them otherwise.
type NewExpense struct {
	AmountPaidFor   decimal.Decimal `json:"amountPaidFor"`
	PaidForPersonID string          `json:"paidForPersonId"`
	Category        string          `json:"category"`
	PaymentMethod   string          `json:"paymentMethod"`
	BankApp         *string         `json:"bankApp"`
	Notes           *string         `json:"notes"`
	IsPaid          bool            `json:"isPaid"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
}

func (e NewExpense) Validate() error {
	if !e.AmountPaidFor.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.PaidForPersonID) == "" {
		return ErrEmptyPersonRef
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.AmountPaid.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// NewPayment carries the caller-supplied fields for a payment record.
type NewPayment struct {
	ExpenseID   string          `json:"expenseId"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentType PaymentType     `json:"paymentType"`
	Notes       *string         `json:"notes"`
}

func (p NewPayment) Validate() error {
	if strings.TrimSpace(p.ExpenseID) == "" {
		return ErrEmptyExpenseRef
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return p.PaymentType.Validate()
}

func (t PaymentType) Validate() error {
	switch t {
	case Full, Partial, Custom:
		return nil
	default:
		return ErrInvalidPayType
	}
}

// ExpenseUpdate is a partial patch merged into an existing expense.
// Nil fields are left untouched. BankApp and Notes use double pointers so
// a patch can distinguish "leave alone" (nil) from "clear" (*nil).
type ExpenseUpdate struct {
	AmountPaid    *decimal.Decimal
	IsPaid        *bool
	PaidAt        *time.Time
	Category      *string
	PaymentMethod *string
	BankApp       **string
	Notes         **string
}

// Apply merges the patch into e in place.
func (u ExpenseUpdate) Apply(e *Expense) {
	if u.AmountPaid != nil {
		e.AmountPaid = *u.AmountPaid
	}
	if u.IsPaid != nil {
		e.IsPaid = *u.IsPaid
	}
	if u.PaidAt != nil {
		e.PaidAt = u.PaidAt
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.PaymentMethod != nil {
		e.PaymentMethod = *u.PaymentMethod
	}
	if u.BankApp != nil {
		e.BankApp = *u.BankApp
	}
	if u.Notes != nil {
		e.Notes = *u.Notes
	}
}
