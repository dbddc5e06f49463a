package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spbu-ds-practicum-2025/ledger-service/internal/domain"
	"github.com/spbu-ds-practicum-2025/ledger-service/internal/httpapi"
)

// mockLedgerService is a mock implementation for unit testing
type mockLedgerService struct {
	submitTransactionFunc func(ctx context.Context, accountID, amount int64, kind domain.TransactionKind, description string) (*domain.TransactionResult, error)
	getStatementFunc      func(ctx context.Context, accountID int64) (*domain.Statement, error)
}

func (m *mockLedgerService) SubmitTransaction(ctx context.Context, accountID, amount int64, kind domain.TransactionKind, description string) (*domain.TransactionResult, error) {
	if m.submitTransactionFunc != nil {
		return m.submitTransactionFunc(ctx, accountID, amount, kind, description)
	}
	return &domain.TransactionResult{Limit: 1000, Balance: 0}, nil
}

func (m *mockLedgerService) GetStatement(ctx context.Context, accountID int64) (*domain.Statement, error) {
	if m.getStatementFunc != nil {
		return m.getStatementFunc(ctx, accountID)
	}
	return &domain.Statement{}, nil
}

func newTestRouter(service httpapi.LedgerService) http.Handler {
	return httpapi.NewRouter(httpapi.NewHandler(service, nil), nil)
}

func TestSubmitTransaction_Success(t *testing.T) {
	service := &mockLedgerService{
		submitTransactionFunc: func(ctx context.Context, accountID, amount int64, kind domain.TransactionKind, description string) (*domain.TransactionResult, error) {
			if accountID != 1 {
				t.Errorf("expected account id 1, got %d", accountID)
			}
			if amount != 500 {
				t.Errorf("expected amount 500, got %d", amount)
			}
			if kind != domain.TransactionKindCredit {
				t.Errorf("expected kind credit, got %s", kind)
			}
			if description != "dep" {
				t.Errorf("expected description dep, got %s", description)
			}
			return &domain.TransactionResult{Limit: 1000, Balance: 500}, nil
		},
	}
	router := newTestRouter(service)

	body := `{"amount": 500, "kind": "credit", "description": "dep"}`
	req := httptest.NewRequest(http.MethodPost, "/accounts/1/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d. Body: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		Limit   int64 `json:"limit"`
		Balance int64 `json:"balance"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Limit != 1000 || resp.Balance != 500 {
		t.Errorf("expected {limit:1000, balance:500}, got %+v", resp)
	}
}

func TestSubmitTransaction_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"validation error", domain.ErrInvalidDescription, http.StatusUnprocessableEntity},
		{"limit exceeded", domain.ErrLimitExceeded, http.StatusUnprocessableEntity},
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"storage failure", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockLedgerService{
				submitTransactionFunc: func(ctx context.Context, accountID, amount int64, kind domain.TransactionKind, description string) (*domain.TransactionResult, error) {
					return nil, tt.serviceErr
				},
			}
			router := newTestRouter(service)

			body := `{"amount": 100, "kind": "debit", "description": "x"}`
			req := httptest.NewRequest(http.MethodPost, "/accounts/1/transactions", strings.NewReader(body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d. Body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestSubmitTransaction_RejectsNonIntegerAmount(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"fractional amount", `{"amount": 100.5, "kind": "credit", "description": "dep"}`},
		{"string amount", `{"amount": "abc", "kind": "credit", "description": "dep"}`},
		{"missing amount", `{"kind": "credit", "description": "dep"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			service := &mockLedgerService{
				submitTransactionFunc: func(ctx context.Context, accountID, amount int64, kind domain.TransactionKind, description string) (*domain.TransactionResult, error) {
					called = true
					return &domain.TransactionResult{}, nil
				},
			}
			router := newTestRouter(service)

			req := httptest.NewRequest(http.MethodPost, "/accounts/1/transactions", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnprocessableEntity {
				t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
			}
			if called {
				t.Error("service must not be invoked for a non-integer amount")
			}
		})
	}
}

func TestSubmitTransaction_MalformedBody(t *testing.T) {
	router := newTestRouter(&mockLedgerService{})

	req := httptest.NewRequest(http.MethodPost, "/accounts/1/transactions", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestSubmitTransaction_NonNumericAccountID(t *testing.T) {
	called := false
	service := &mockLedgerService{
		submitTransactionFunc: func(ctx context.Context, accountID, amount int64, kind domain.TransactionKind, description string) (*domain.TransactionResult, error) {
			called = true
			return &domain.TransactionResult{}, nil
		},
	}
	router := newTestRouter(service)

	body := `{"amount": 100, "kind": "credit", "description": "dep"}`
	req := httptest.NewRequest(http.MethodPost, "/accounts/abc/transactions", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	if called {
		t.Error("service must not be invoked for a non-numeric account id")
	}
}

func TestGetStatement_Success(t *testing.T) {
	asOf := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	committedAt := asOf.Add(-time.Minute)

	service := &mockLedgerService{
		getStatementFunc: func(ctx context.Context, accountID int64) (*domain.Statement, error) {
			return &domain.Statement{
				Balance:     500,
				Limit:       1000,
				GeneratedAt: asOf,
				LastTransactions: []domain.Transaction{
					{
						ID:          uuid.New(),
						AccountID:   accountID,
						Amount:      500,
						Kind:        domain.TransactionKindCredit,
						Description: "dep",
						CreatedAt:   committedAt,
					},
				},
			}, nil
		},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/accounts/1/statement", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d. Body: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		Balance struct {
			Total int64  `json:"total"`
			AsOf  string `json:"asOf"`
			Limit int64  `json:"limit"`
		} `json:"balance"`
		LastTransactions []struct {
			Amount      int64  `json:"amount"`
			Kind        string `json:"kind"`
			Description string `json:"description"`
			CommittedAt string `json:"committedAt"`
		} `json:"lastTransactions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Balance.Total != 500 || resp.Balance.Limit != 1000 {
		t.Errorf("unexpected balance block: %+v", resp.Balance)
	}
	if resp.Balance.AsOf != asOf.Format(time.RFC3339Nano) {
		t.Errorf("unexpected asOf: %s", resp.Balance.AsOf)
	}
	if len(resp.LastTransactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(resp.LastTransactions))
	}
	tx := resp.LastTransactions[0]
	if tx.Amount != 500 || tx.Kind != "credit" || tx.Description != "dep" {
		t.Errorf("unexpected transaction: %+v", tx)
	}
}

func TestGetStatement_NotFound(t *testing.T) {
	service := &mockLedgerService{
		getStatementFunc: func(ctx context.Context, accountID int64) (*domain.Statement, error) {
			return nil, domain.ErrAccountNotFound
		},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/accounts/99/statement", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&mockLedgerService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}
