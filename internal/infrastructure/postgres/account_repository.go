package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dailyspend/internal/domain/account"
)

type SelectionRepository struct {
	db *DB
}

func NewSelectionRepository(db *DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

func (r *SelectionRepository) GetByUserID(ctx context.Context, userID int64) (*account.Selection, error) {
	query := `
		SELECT user_id, spend_account_id, coverage_account_id, created_at, updated_at
		FROM account_selections
		WHERE user_id = $1
	`

	var s account.Selection
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.SpendAccountID, &s.CoverageAccountID, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrNoAccountSelected
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account selection: %w", err)
	}
	return &s, nil
}

func (r *SelectionRepository) Upsert(ctx context.Context, s *account.Selection) error {
	query := `
		INSERT INTO account_selections (user_id, spend_account_id, coverage_account_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
			SET spend_account_id = EXCLUDED.spend_account_id,
			    coverage_account_id = EXCLUDED.coverage_account_id,
			    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, s.UserID, s.SpendAccountID, s.CoverageAccountID).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert account selection: %w", err)
	}
	return nil
}

type SnapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Append inserts a new snapshot row. Balances are a time series, never
// updated in place.
func (r *SnapshotRepository) Append(ctx context.Context, snap *account.BalanceSnapshot) error {
	query := `
		INSERT INTO balance_snapshots (user_id, account_id, available, current, captured_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		snap.UserID, snap.AccountID, snap.Available, snap.Current, snap.CapturedAt,
	).Scan(&snap.ID)
	if err != nil {
		return fmt.Errorf("failed to append balance snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) Latest(ctx context.Context, userID int64, accountID string) (*account.BalanceSnapshot, error) {
	query := `
		SELECT id, user_id, account_id, available, current, captured_at
		FROM balance_snapshots
		WHERE user_id = $1 AND account_id = $2
		ORDER BY captured_at DESC
		LIMIT 1
	`

	var snap account.BalanceSnapshot
	err := r.db.QueryRowContext(ctx, query, userID, accountID).Scan(
		&snap.ID, &snap.UserID, &snap.AccountID, &snap.Available, &snap.Current, &snap.CapturedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest balance snapshot: %w", err)
	}
	return &snap, nil
}
