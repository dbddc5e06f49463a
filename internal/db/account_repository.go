package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spbu-ds-practicum-2025/ledger-service/internal/domain"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		pool: pool,
	}
}

// GetByID retrieves an account by its identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	query := `
		SELECT id, credit_limit, balance
		FROM accounts
		WHERE id = $1
	`

	var account domain.Account

	// Use transaction if available, otherwise use pool
	var row pgx.Row
	if tx := getTx(ctx); tx != nil {
		row = tx.QueryRow(ctx, query, id)
	} else {
		row = r.pool.QueryRow(ctx, query, id)
	}

	err := row.Scan(&account.ID, &account.Limit, &account.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

// Lock acquires a pessimistic lock on the account row for the duration of
// the transaction and returns the row as it stands under that lock.
// This method MUST be called within a transaction context.
// Uses SELECT ... FOR UPDATE to lock the row.
func (r *AccountRepository) Lock(ctx context.Context, id int64) (*domain.Account, error) {
	query := `
		SELECT id, credit_limit, balance
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	tx := getTx(ctx)
	if tx == nil {
		return nil, errors.New("account lock requires a transaction context")
	}

	var account domain.Account
	err := tx.QueryRow(ctx, query, id).Scan(&account.ID, &account.Limit, &account.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	return &account, nil
}

// UpdateBalance persists a new balance for the account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, id int64, balance int64) error {
	query := `
		UPDATE accounts
		SET balance = $2
		WHERE id = $1
	`

	var err error
	var rowsAffected int64

	// Use transaction if available, otherwise use pool
	if tx := getTx(ctx); tx != nil {
		result, execErr := tx.Exec(ctx, query, id, balance)
		err = execErr
		rowsAffected = result.RowsAffected()
	} else {
		result, execErr := r.pool.Exec(ctx, query, id, balance)
		err = execErr
		rowsAffected = result.RowsAffected()
	}

	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}
