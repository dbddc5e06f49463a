package domain

import (
	"context"
)

// AccountRepository defines the interface for account data access operations.
// This follows the Repository pattern to abstract data persistence logic.
type AccountRepository interface {
	// GetByID retrieves an account by its identifier.
	// Returns ErrAccountNotFound if no such account exists.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// Lock acquires a database lock on the account row for the duration of
	// the surrounding transaction and returns the row as it stands under
	// that lock. This is the serialization point for concurrent submissions
	// against the same account; submissions against different accounts
	// never contend. Must be called within a transaction context.
	Lock(ctx context.Context, id int64) (*Account, error)

	// UpdateBalance persists a new balance for the account.
	// Returns ErrAccountNotFound if no row was updated.
	UpdateBalance(ctx context.Context, id int64, balance int64) error
}

// TransactionRepository defines the interface for ledger entry access.
type TransactionRepository interface {
	// Create appends a new ledger entry. Entries are immutable once written.
	Create(ctx context.Context, tx *Transaction) error

	// ListRecent returns up to limit entries for the account, newest first.
	// Ties on the commit timestamp are broken by insertion order, most
	// recent insert first.
	ListRecent(ctx context.Context, accountID int64, limit int) ([]Transaction, error)
}

// TransactionManager defines the interface for managing database
// transactions. This abstraction allows the service layer to work with
// atomic units of work without being coupled to a specific database
// implementation.
type TransactionManager interface {
	// WithTransaction executes the given function within a database
	// transaction. If the function returns an error, the transaction is
	// rolled back. Otherwise, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher publishes domain events to external systems (e.g. RabbitMQ).
type EventPublisher interface {
	PublishTransactionCommitted(ctx context.Context, tx *Transaction, newBalance int64) error
}
