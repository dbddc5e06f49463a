package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spbu-ds-practicum-2025/ledger-service/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using
// PostgreSQL. The transactions table is append-only; rows are never updated
// or deleted.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{
		pool: pool,
	}
}

// Create appends a new ledger entry. The seq column is assigned by the
// database and records insertion order.
func (r *TransactionRepository) Create(ctx context.Context, entry *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, amount, kind, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var err error

	// Use transaction if available, otherwise use pool
	if tx := getTx(ctx); tx != nil {
		_, err = tx.Exec(ctx, query,
			entry.ID,
			entry.AccountID,
			entry.Amount,
			string(entry.Kind),
			entry.Description,
			entry.CreatedAt,
		)
	} else {
		_, err = r.pool.Exec(ctx, query,
			entry.ID,
			entry.AccountID,
			entry.Amount,
			string(entry.Kind),
			entry.Description,
			entry.CreatedAt,
		)
	}

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// ListRecent returns up to limit entries for the account, newest first.
// Ordering is by commit timestamp with the insertion-order seq column as
// the tie-breaker, so the most recent insert always wins.
func (r *TransactionRepository) ListRecent(ctx context.Context, accountID int64, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT id, account_id, amount, kind, description, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2
	`

	var rows pgx.Rows
	var err error
	if tx := getTx(ctx); tx != nil {
		rows, err = tx.Query(ctx, query, accountID, limit)
	} else {
		rows, err = r.pool.Query(ctx, query, accountID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		var entry domain.Transaction
		var kind string
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Amount,
			&kind,
			&entry.Description,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		entry.Kind = domain.TransactionKind(kind)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	return entries, nil
}
