package http

import (
	"encoding/json"
	"net/http"

	"splittracker/internal/core"
	"splittracker/internal/ledger"
)

// amountField accepts a money amount encoded as either a JSON string
// ("45.50") or a bare number (45.5). Clients are inconsistent about this;
// both forms parse into the same exact decimal.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	*a = amountField(b)
	return nil
}

type createExpenseRequest struct {
	AmountPaidFor   amountField `json:"amountPaidFor"`
	PaidForPersonID string      `json:"paidForPersonId"`
	Category        string      `json:"category"`
	PaymentMethod   string      `json:"paymentMethod"`
	BankApp         *string     `json:"bankApp"`
	Notes           *string     `json:"notes"`
	IsPaid          bool        `json:"isPaid"`
	AmountPaid      amountField `json:"amountPaid"`
}

type applyPaymentRequest struct {
	Amount      amountField `json:"amount"`
	PaymentType string      `json:"paymentType"`
	Notes       *string     `json:"notes"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to fetch expenses")
		return
	}
	if expenses == nil {
		expenses = []core.ExpenseWithPerson{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.store.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "Expense not found")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleExpenseDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.svc.ExpenseDetails(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch expense details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid expense data", Detail: err.Error()})
		return
	}

	amountPaidFor, err := core.ParseAmount(string(req.AmountPaidFor))
	if err != nil {
		writeError(w, r, err, "Invalid expense data")
		return
	}
	amountPaid, err := core.ParsePaidAmount(string(req.AmountPaid))
	if err != nil {
		writeError(w, r, err, "Invalid expense data")
		return
	}

	ne := core.NewExpense{
		AmountPaidFor:   amountPaidFor,
		PaidForPersonID: req.PaidForPersonID,
		Category:        req.Category,
		PaymentMethod:   req.PaymentMethod,
		BankApp:         req.BankApp,
		Notes:           req.Notes,
		IsPaid:          req.IsPaid,
		AmountPaid:      amountPaid,
	}
	if err := ne.Validate(); err != nil {
		writeError(w, r, err, "Invalid expense data")
		return
	}

	expense, err := s.store.CreateExpense(r.Context(), ne)
	if err != nil {
		writeError(w, r, err, "Failed to create expense")
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleApplyPayment(w http.ResponseWriter, r *http.Request) {
	var req applyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid payment amount", Detail: err.Error()})
		return
	}

	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid payment amount"})
		return
	}

	expense, _, err := s.svc.ApplyPayment(r.Context(), r.PathValue("id"), ledger.PaymentInput{
		Amount:      amount,
		PaymentType: core.PaymentType(req.PaymentType),
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, r, err, "Failed to update payment")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.store.ListPayments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch payments")
		return
	}
	if payments == nil {
		payments = []core.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleTotalBalances(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.TotalBalances(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to fetch balances")
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
