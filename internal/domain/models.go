package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a ledger account with a fixed credit limit.
// Accounts are provisioned out-of-band before the service starts;
// the service only ever reads them and updates the balance.
type Account struct {
	ID      int64 // Unique identifier of the account
	Limit   int64 // Credit limit in minor units, immutable, non-negative
	Balance int64 // Current balance in minor units, may be negative down to -Limit
}

// TransactionKind is the direction of a transaction.
type TransactionKind string

const (
	// TransactionKindCredit increases the account balance
	TransactionKindCredit TransactionKind = "credit"

	// TransactionKindDebit decreases the account balance
	TransactionKindDebit TransactionKind = "debit"
)

// Transaction is a single immutable ledger entry. Entries are append-only:
// once committed they are never updated or deleted.
type Transaction struct {
	ID          uuid.UUID       // Unique identifier of the entry
	AccountID   int64           // Account this entry belongs to
	Amount      int64           // Positive amount in minor units
	Kind        TransactionKind // credit or debit
	Description string          // Free-form description, 1..10 characters
	CreatedAt   time.Time       // Commit timestamp, assigned by the processor
}

// TransactionResult is returned to the caller after a successful submission.
type TransactionResult struct {
	Limit   int64 // The account's credit limit
	Balance int64 // The balance after the transaction was applied
}

// Statement is a point-in-time view of an account: current balance and
// limit plus the most recent transactions, newest first.
type Statement struct {
	Balance          int64         // Balance at the moment of the read
	Limit            int64         // The account's credit limit
	GeneratedAt      time.Time     // When the statement was assembled, not stored
	LastTransactions []Transaction // At most StatementEntryLimit entries, newest first
}

// StatementEntryLimit is the maximum number of entries in a statement.
const StatementEntryLimit = 10

// NewTransaction creates a ledger entry for the given account. The commit
// timestamp is assigned here, immediately before the entry is persisted.
func NewTransaction(accountID, amount int64, kind TransactionKind, description string) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// Delta returns the signed effect of the transaction on the balance.
func (t *Transaction) Delta() int64 {
	if t.Kind == TransactionKindCredit {
		return t.Amount
	}
	return -t.Amount
}
