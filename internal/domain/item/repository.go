package item

import "context"

// Repository defines linked item data access operations.
type Repository interface {
	ListByUserID(ctx context.Context, userID int64) ([]LinkedItem, error)
	GetByID(ctx context.Context, id string) (*LinkedItem, error)
	// Upsert inserts the item or refreshes its credential and institution
	// name when the external ID already exists, resetting status to active.
	Upsert(ctx context.Context, it *LinkedItem) error
	// UpdateStatus sets the lifecycle status and records the provider error
	// code that triggered the change. errorCode may be empty.
	UpdateStatus(ctx context.Context, id, status, errorCode string) error
	// UpdateCursor persists the pagination cursor. A nil cursor clears it,
	// marking the item's backfill as complete up to the sync window.
	UpdateCursor(ctx context.Context, id string, cursor *string) error
	TouchWebhook(ctx context.Context, id string) error
}
