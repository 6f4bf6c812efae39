package postgres

import (
	"context"
	"fmt"

	"dailyspend/internal/domain/notification"
)

type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

const deviceColumns = `id, user_id, token, platform, created_at, updated_at`

// Upsert registers a device token. A token already registered to another
// user is reassigned to the registering one.
func (r *DeviceRepository) Upsert(ctx context.Context, d *notification.Device) error {
	query := `
		INSERT INTO devices (user_id, token, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE
			SET user_id = EXCLUDED.user_id,
			    platform = EXCLUDED.platform,
			    updated_at = NOW()
		RETURNING ` + deviceColumns

	err := r.db.QueryRowContext(ctx, query, d.UserID, d.Token, d.Platform).Scan(
		&d.ID, &d.UserID, &d.Token, &d.Platform, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}
	return nil
}

func (r *DeviceRepository) ListByUserID(ctx context.Context, userID int64) ([]notification.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE user_id = $1 ORDER BY updated_at DESC`
	return r.list(ctx, query, userID)
}

func (r *DeviceRepository) ListAll(ctx context.Context) ([]notification.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices ORDER BY user_id`
	return r.list(ctx, query)
}

func (r *DeviceRepository) list(ctx context.Context, query string, args ...any) ([]notification.Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []notification.Device
	for rows.Next() {
		var d notification.Device
		if err := rows.Scan(&d.ID, &d.UserID, &d.Token, &d.Platform, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (r *DeviceRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	return nil
}
