package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"splittracker/internal/core"
	"splittracker/internal/ledger"
	"splittracker/internal/store"
	"splittracker/internal/store/memory"
)

func newTestServer(st store.Store) *Server {
	svc := ledger.NewService(st, nil)
	return NewServer(":0", st, svc)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rr.Body.String())
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(memory.New())
	defer srv.Shutdown(context.Background())

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestPeopleEndpoints(t *testing.T) {
	srv := newTestServer(memory.New())
	defer srv.Shutdown(context.Background())

	// Empty list is a JSON array, not null.
	rr := doJSON(t, srv, http.MethodGet, "/api/people", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("empty list: status=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/people", `{"name":"John Smith","initials":"JS","color":"#00D4AA"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	person := decode[core.Person](t, rr)
	if person.ID == "" || person.Name != "John Smith" {
		t.Fatalf("unexpected person: %+v", person)
	}

	rr = doJSON(t, srv, http.MethodPost, "/api/people", `{"name":"","initials":"X","color":"#fff"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid person status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/api/people/"+person.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodDelete, "/api/people/"+person.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", rr.Code)
	}
}

func createTestExpense(t *testing.T, srv *Server, amount string) core.Expense {
	t.Helper()
	rr := doJSON(t, srv, http.MethodPost, "/api/people", `{"name":"John Smith","initials":"JS","color":"#00D4AA"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create person status=%d", rr.Code)
	}
	person := decode[core.Person](t, rr)

	body := fmt.Sprintf(`{"amountPaidFor":%q,"paidForPersonId":%q,"category":"food","paymentMethod":"upi","bankApp":"gpay"}`, amount, person.ID)
	rr = doJSON(t, srv, http.MethodPost, "/api/expenses", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expense status=%d body=%s", rr.Code, rr.Body.String())
	}
	return decode[core.Expense](t, rr)
}

func TestCreateExpense(t *testing.T) {
	srv := newTestServer(memory.New())
	defer srv.Shutdown(context.Background())

	e := createTestExpense(t, srv, "45.50")
	if !e.AmountPaidFor.Equal(decimal.RequireFromString("45.50")) {
		t.Fatalf("amountPaidFor = %s", e.AmountPaidFor)
	}
	if e.IsPaid || !e.AmountPaid.IsZero() || e.PaidAt != nil {
		t.Fatalf("fresh expense should be unpaid: %+v", e)
	}

	rr := doJSON(t, srv, http.MethodGet, "/api/expenses", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	list := decode[[]core.ExpenseWithPerson](t, rr)
	if len(list) != 1 || list[0].Person.Name != "John Smith" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestCreateExpenseAcceptsNumericAmount(t *testing.T) {
	srv := newTestServer(memory.New())
	defer srv.Shutdown(context.Background())

	rr := doJSON(t, srv, http.MethodPost, "/api/people", `{"name":"A","initials":"A","color":"#fff"}`)
	person := decode[core.Person](t, rr)

	body := fmt.Sprintf(`{"amountPaidFor":45.5,"paidForPersonId":%q,"category":"food"}`, person.ID)
	rr = doJSON(t, srv, http.MethodPost, "/api/expenses", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("numeric amount status=%d body=%s", rr.Code, rr.Body.String())
	}
	e := decode[core.Expense](t, rr)
	if !e.AmountPaidFor.Equal(decimal.RequireFromString("45.5")) {
		t.Fatalf("amountPaidFor = %s", e.AmountPaidFor)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	srv := newTestServer(memory.New())
	defer srv.Shutdown(context.Background())

	cases := []struct {
		name string
		body string
	}{
		{"zero amount", `{"amountPaidFor":"0","paidForPersonId":"p1","category":"food"}`},
		{"negative amount", `{"amountPaidFor":"-5","paidForPersonId":"p1","category":"food"}`},
		{"bad amount", `{"amountPaidFor":"abc","paidForPersonId":"p1","category":"food"}`},
		{"missing person", `{"amountPaidFor":"5","category":"food"}`},
		{"missing category", `{"amountPaidFor":"5","paidForPersonId":"p1"}`},
		{"malformed json", `{"amountPaidFor":`},
	}
	for _, tc := range cases {
		rr := doJSON(t, srv, http.MethodPost, "/api/expenses", tc.body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d body=%s", tc.name, rr.Code, rr.Body.String())
		}
	}
}

func TestGetExpenseNotFound(t *testing.T) {
	srv := newTestServer(memory.New())
	defer srv.Shutdown(context.Background())

	rr := doJSON(t, srv, http.MethodGet, "/api/expenses/missing", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
	body := decode[errorBody](t, rr)
	if body.Message != "Expense not found" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestApplyPaymentEndpoint(t *testing.T) {
	srv := newTestServer(memory.New())
	defer srv.Shutdown(context.Background())
	e := createTestExpense(t, srv, "45.50")

	rr := doJSON(t, srv, http.MethodPatch, "/api/expenses/"+e.ID+"/pay", `{"amount":"20.00","paymentType":"partial"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("partial status=%d body=%s", rr.Code, rr.Body.String())
	}
	updated := decode[core.Expense](t, rr)
	if !updated.AmountPaid.Equal(decimal.RequireFromString("20.00")) || updated.IsPaid {
		t.Fatalf("after partial: %+v", updated)
	}

	rr = doJSON(t, srv, http.MethodPatch, "/api/expenses/"+e.ID+"/pay", `{"amount":"25.50","paymentType":"partial"}`)
	updated = decode[core.Expense](t, rr)
	if !updated.IsPaid || updated.PaidAt == nil {
		t.Fatalf("after settling: %+v", updated)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/expenses/"+e.ID+"/payments", "")
	payments := decode[[]core.Payment](t, rr)
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/expenses/"+e.ID+"/details", "")
	details := decode[core.ExpenseWithPayments](t, rr)
	if len(details.Payments) != 2 || details.Person.Name != "John Smith" {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestApplyPaymentErrors(t *testing.T) {
	srv := newTestServer(memory.New())
	defer srv.Shutdown(context.Background())
	e := createTestExpense(t, srv, "45.50")

	for _, body := range []string{
		`{"amount":"0"}`,
		`{"amount":"-5"}`,
		`{"amount":"abc"}`,
		`{"amount":`,
	} {
		rr := doJSON(t, srv, http.MethodPatch, "/api/expenses/"+e.ID+"/pay", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", body, rr.Code)
		}
		resp := decode[errorBody](t, rr)
		if resp.Message != "Invalid payment amount" {
			t.Fatalf("%s: message = %q", body, resp.Message)
		}
	}

	rr := doJSON(t, srv, http.MethodPatch, "/api/expenses/missing/pay", `{"amount":"5"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown expense status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPatch, "/api/expenses/"+e.ID+"/pay", `{"amount":"5","paymentType":"refund"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad type status=%d", rr.Code)
	}
}

func TestBalanceEndpoints(t *testing.T) {
	srv := newTestServer(memory.New())
	defer srv.Shutdown(context.Background())
	e := createTestExpense(t, srv, "45.50")

	doJSON(t, srv, http.MethodPatch, "/api/expenses/"+e.ID+"/pay", `{"amount":"20.00","paymentType":"partial"}`)

	rr := doJSON(t, srv, http.MethodGet, "/api/people/balances", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("people balances status=%d", rr.Code)
	}
	balances := decode[[]ledger.PersonBalance](t, rr)
	if len(balances) != 1 {
		t.Fatalf("expected 1 balance, got %d", len(balances))
	}
	if !balances[0].TotalOwed.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("totalOwed = %s", balances[0].TotalOwed)
	}
	if balances[0].TransactionCount != 1 {
		t.Fatalf("transactionCount = %d", balances[0].TransactionCount)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/balances", "")
	totals := decode[ledger.Totals](t, rr)
	if !totals.NetBalance.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("netBalance = %s", totals.NetBalance)
	}
}

func TestOrphanedExpenseHiddenFromAPI(t *testing.T) {
	srv := newTestServer(memory.New())
	defer srv.Shutdown(context.Background())
	e := createTestExpense(t, srv, "45.50")

	rr := doJSON(t, srv, http.MethodDelete, "/api/people/"+e.PaidForPersonID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete person status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/expenses", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("orphan leaked: %s", rr.Body.String())
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/expenses/"+e.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("orphan get status=%d", rr.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(memory.New())
	defer srv.Shutdown(context.Background())

	rr := doJSON(t, srv, http.MethodGet, "/api/people", "")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 60; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Fatal("61st request should be blocked")
	}
	// Other clients are unaffected.
	if !rl.allow("5.6.7.8") {
		t.Fatal("other client should be allowed")
	}
}
