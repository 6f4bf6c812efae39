package postgres

import (
	"context"
	"fmt"

	"dailyspend/internal/domain/item"
)

type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, user_id, institution_name, access_credential, status, sync_cursor, last_error_code, last_webhook_at, created_at, updated_at`

func (r *ItemRepository) ListByUserID(ctx context.Context, userID int64) ([]item.LinkedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM linked_items WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []item.LinkedItem
	for rows.Next() {
		var it item.LinkedItem
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.InstitutionName, &it.AccessCredential, &it.Status,
			&it.SyncCursor, &it.LastErrorCode, &it.LastWebhookAt, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*item.LinkedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM linked_items WHERE id = $1`

	var it item.LinkedItem
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&it.ID, &it.UserID, &it.InstitutionName, &it.AccessCredential, &it.Status,
		&it.SyncCursor, &it.LastErrorCode, &it.LastWebhookAt, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return &it, nil
}

// Upsert inserts the item or, when the external ID already exists, refreshes
// its credential and resets it to active. Re-linking an expired item flows
// through here.
func (r *ItemRepository) Upsert(ctx context.Context, it *item.LinkedItem) error {
	query := `
		INSERT INTO linked_items (id, user_id, institution_name, access_credential, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
			SET institution_name = EXCLUDED.institution_name,
			    access_credential = EXCLUDED.access_credential,
			    status = EXCLUDED.status,
			    last_error_code = NULL,
			    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	if it.Status == "" {
		it.Status = item.StatusActive
	}
	err := r.db.QueryRowContext(ctx, query,
		it.ID, it.UserID, it.InstitutionName, it.AccessCredential, it.Status,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

func (r *ItemRepository) UpdateStatus(ctx context.Context, id, status, errorCode string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE linked_items
		 SET status = $2, last_error_code = NULLIF($3, ''), updated_at = NOW()
		 WHERE id = $1`,
		id, status, errorCode,
	)
	if err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
	}
	return nil
}

func (r *ItemRepository) UpdateCursor(ctx context.Context, id string, cursor *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE linked_items SET sync_cursor = $2, updated_at = NOW() WHERE id = $1`,
		id, cursor,
	)
	if err != nil {
		return fmt.Errorf("failed to update item cursor: %w", err)
	}
	return nil
}

func (r *ItemRepository) TouchWebhook(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE linked_items SET last_webhook_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch item webhook time: %w", err)
	}
	return nil
}
