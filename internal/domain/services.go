package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrAccountNotFound is returned when an account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrLimitExceeded is returned when applying the transaction would push
	// the balance below -limit. Externally it is reported in the same
	// unprocessable class as validation failures; the distinction exists
	// only inside the service.
	ErrLimitExceeded = errors.New("transaction would exceed the account credit limit")
)

// LedgerService handles the business logic for submitting transactions and
// building statements. It coordinates between repositories and ensures
// transactional consistency: a committed balance update and its ledger entry
// are inseparable.
type LedgerService struct {
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	txManager       TransactionManager
	// Optional event publisher to emit domain events (e.g. transaction committed)
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewLedgerService creates a new instance of LedgerService.
// Pass nil for eventPublisher if no events should be emitted.
func NewLedgerService(
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	txManager TransactionManager,
	eventPublisher EventPublisher,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
		eventPublisher:  eventPublisher,
		logger:          logger,
	}
}

// SubmitTransaction applies a credit or debit to an account atomically:
//
//  1. Validate the submission; invalid input is rejected before any lock
//     is taken or any storage is touched.
//  2. Lock the account row to serialize against other in-flight
//     submissions for the same account.
//  3. Compute the new balance and enforce balance >= -limit.
//  4. Write the new balance and append the ledger entry in the same
//     database transaction — both are committed or neither is.
//
// The lock scope covers both the balance read and the balance write, so two
// concurrent submissions can never compute their deltas from a stale
// balance. Submissions are not deduplicated: retrying after a transient
// failure creates a new logical transaction.
func (s *LedgerService) SubmitTransaction(
	ctx context.Context,
	accountID int64,
	amount int64,
	kind TransactionKind,
	description string,
) (*TransactionResult, error) {
	if err := ValidateTransaction(amount, kind, description); err != nil {
		return nil, err
	}

	var (
		result    *TransactionResult
		committed *Transaction
	)
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.accountRepo.Lock(txCtx, accountID)
		if err != nil {
			return fmt.Errorf("failed to lock account: %w", err)
		}

		entry := NewTransaction(accountID, amount, kind, description)

		newBalance := account.Balance + entry.Delta()
		if newBalance < -account.Limit {
			return ErrLimitExceeded
		}

		if err := s.accountRepo.UpdateBalance(txCtx, accountID, newBalance); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}
		if err := s.transactionRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}

		committed = entry
		result = &TransactionResult{Limit: account.Limit, Balance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// After successful commit, publish the event best-effort. A transient
	// broker failure must not make an already-committed transaction appear
	// to fail; production systems wanting stronger guarantees should use a
	// durable outbox.
	if s.eventPublisher != nil {
		go func(tx *Transaction, balance int64) {
			if err := s.eventPublisher.PublishTransactionCommitted(context.Background(), tx, balance); err != nil {
				s.logger.Warn("failed to publish transaction committed event",
					zap.String("transaction_id", tx.ID.String()),
					zap.Int64("account_id", tx.AccountID),
					zap.Error(err))
			}
		}(committed, result.Balance)
	}

	return result, nil
}

// GetStatement assembles a point-in-time statement for the account: current
// balance and limit plus the most recent ledger entries, newest first. It
// reads committed state without taking the account lock, so statements never
// block writers.
func (s *LedgerService) GetStatement(ctx context.Context, accountID int64) (*Statement, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := s.transactionRepo.ListRecent(ctx, accountID, StatementEntryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions: %w", err)
	}

	return &Statement{
		Balance:          account.Balance,
		Limit:            account.Limit,
		GeneratedAt:      time.Now().UTC(),
		LastTransactions: entries,
	}, nil
}
