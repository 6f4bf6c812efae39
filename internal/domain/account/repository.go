package account

import "context"

// SelectionRepository defines account selection data access operations.
type SelectionRepository interface {
	// GetByUserID returns ErrNoAccountSelected when the user has no selection.
	GetByUserID(ctx context.Context, userID int64) (*Selection, error)
	Upsert(ctx context.Context, s *Selection) error
}

// SnapshotRepository stores append-only balance observations.
type SnapshotRepository interface {
	Append(ctx context.Context, snap *BalanceSnapshot) error
	// Latest returns nil, nil when no snapshot exists for the account yet.
	Latest(ctx context.Context, userID int64, accountID string) (*BalanceSnapshot, error)
}
