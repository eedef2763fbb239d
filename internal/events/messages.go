package events

import (
	"encoding/json"
	"time"
)

// PaymentApplied announces that a payment was applied to an expense.
// It carries only ids and the resulting cached figures; the reconcile
// worker re-reads the expense and its payment history from storage.
type PaymentApplied struct {
	ExpenseID     string    `json:"expenseId"`
	PaymentID     string    `json:"paymentId"`
	Amount        string    `json:"amount"`
	NewAmountPaid string    `json:"newAmountPaid"`
	IsPaid        bool      `json:"isPaid"`
	Timestamp     time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *PaymentApplied) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentAppliedFromJSON creates a message from JSON bytes
func PaymentAppliedFromJSON(data []byte) (*PaymentApplied, error) {
	var msg PaymentApplied
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
