package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dailyspend/internal/domain/transaction"
)

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Upsert inserts or replaces a transaction by its external ID, so re-fetched
// pages converge instead of duplicating.
func (r *TransactionRepository) Upsert(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, account_id, date, description, amount, pending)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
			SET account_id = EXCLUDED.account_id,
			    date = EXCLUDED.date,
			    description = EXCLUDED.description,
			    amount = EXCLUDED.amount,
			    pending = EXCLUDED.pending,
			    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		tx.ID, tx.UserID, tx.AccountID, tx.Date, tx.Description, tx.Amount, tx.Pending,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `
		SELECT id, user_id, account_id, date, description, amount, pending, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`

	var tx transaction.Transaction
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &tx.Date, &tx.Description, &tx.Amount,
		&tx.Pending, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return &tx, nil
}

func (r *TransactionRepository) ListByUserBetween(ctx context.Context, userID int64, start, end time.Time) ([]transaction.Transaction, error) {
	query := `
		SELECT id, user_id, account_id, date, description, amount, pending, created_at, updated_at
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []transaction.Transaction
	for rows.Next() {
		var tx transaction.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.AccountID, &tx.Date, &tx.Description, &tx.Amount,
			&tx.Pending, &tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
