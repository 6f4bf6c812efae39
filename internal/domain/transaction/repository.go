package transaction

import (
	"context"
	"time"
)

// Repository defines transaction data access operations.
type Repository interface {
	// Upsert inserts or replaces by external ID.
	Upsert(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
	// ListByUserBetween returns the user's transactions with
	// start <= date < end, ordered by date then ID.
	ListByUserBetween(ctx context.Context, userID int64, start, end time.Time) ([]Transaction, error)
}
