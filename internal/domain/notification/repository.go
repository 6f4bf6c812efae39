package notification

import "context"

// Repository defines device data access operations.
type Repository interface {
	// Upsert registers the device, keyed by token.
	Upsert(ctx context.Context, d *Device) error
	ListByUserID(ctx context.Context, userID int64) ([]Device, error)
	ListAll(ctx context.Context) ([]Device, error)
	DeleteByToken(ctx context.Context, token string) error
}
