package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spbu-ds-practicum-2025/ledger-service/internal/domain"
)

// LedgerService is the part of the domain service the HTTP layer depends on.
// Declared here so handlers can be tested against a mock.
type LedgerService interface {
	SubmitTransaction(ctx context.Context, accountID, amount int64, kind domain.TransactionKind, description string) (*domain.TransactionResult, error)
	GetStatement(ctx context.Context, accountID int64) (*domain.Statement, error)
}

// Handler decodes inbound requests into primitive arguments, invokes the
// ledger service, and encodes the result or error back to the caller.
type Handler struct {
	service LedgerService
	logger  *zap.Logger
}

// NewHandler creates a new Handler with the given ledger service.
func NewHandler(service LedgerService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// transactionRequest is the submit-transaction request body. Amount is kept
// as json.Number so that fractional values can be rejected instead of being
// silently truncated.
type transactionRequest struct {
	Amount      json.Number `json:"amount"`
	Kind        string      `json:"kind"`
	Description string      `json:"description"`
}

type transactionResponse struct {
	Limit   int64 `json:"limit"`
	Balance int64 `json:"balance"`
}

type statementBalance struct {
	Total int64  `json:"total"`
	AsOf  string `json:"asOf"`
	Limit int64  `json:"limit"`
}

type statementEntry struct {
	Amount      int64  `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	CommittedAt string `json:"committedAt"`
}

type statementResponse struct {
	Balance          statementBalance `json:"balance"`
	LastTransactions []statementEntry `json:"lastTransactions"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SubmitTransaction handles POST /accounts/{accountID}/transactions.
func (h *Handler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Malformed JSON is a bad request; a well-formed body carrying a
		// wrong-typed field is an unprocessable value.
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			sendErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to parse request body")
			return
		}
		sendErrorResponse(w, http.StatusUnprocessableEntity, "UNPROCESSABLE", "invalid request field")
		return
	}

	// A fractional or non-numeric amount never reaches the domain.
	amount, err := strconv.ParseInt(req.Amount.String(), 10, 64)
	if err != nil {
		sendErrorResponse(w, http.StatusUnprocessableEntity, "UNPROCESSABLE", "amount must be a positive integer")
		return
	}

	result, err := h.service.SubmitTransaction(r.Context(), accountID, amount, domain.TransactionKind(req.Kind), req.Description)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, transactionResponse{
		Limit:   result.Limit,
		Balance: result.Balance,
	})
}

// GetStatement handles GET /accounts/{accountID}/statement.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	accountID, ok := parseAccountID(w, r)
	if !ok {
		return
	}

	statement, err := h.service.GetStatement(r.Context(), accountID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	entries := make([]statementEntry, 0, len(statement.LastTransactions))
	for _, tx := range statement.LastTransactions {
		entries = append(entries, statementEntry{
			Amount:      tx.Amount,
			Kind:        string(tx.Kind),
			Description: tx.Description,
			CommittedAt: tx.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	sendJSON(w, http.StatusOK, statementResponse{
		Balance: statementBalance{
			Total: statement.Balance,
			AsOf:  statement.GeneratedAt.UTC().Format(time.RFC3339Nano),
			Limit: statement.Limit,
		},
		LastTransactions: entries,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseAccountID extracts the account id path parameter. A non-numeric id
// is reported the same way as an unknown account.
func parseAccountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil || id <= 0 {
		sendErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "account not found")
		return 0, false
	}
	return id, true
}

// handleServiceError maps domain errors to HTTP status codes. Validation
// failures and limit breaches share the unprocessable class; unknown
// accounts are distinct; anything else is an internal failure the caller
// may retry.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrLimitExceeded):
		sendErrorResponse(w, http.StatusUnprocessableEntity, "UNPROCESSABLE", err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		sendErrorResponse(w, http.StatusNotFound, "NOT_FOUND", "account not found")
	default:
		h.logger.Error("request failed", zap.Error(err))
		sendErrorResponse(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func sendErrorResponse(w http.ResponseWriter, status int, code, message string) {
	sendJSON(w, status, errorResponse{Code: code, Message: message})
}
