package report

import (
	"context"
	"time"
)

// Repository defines daily report data access operations.
type Repository interface {
	// GetByUserAndDay returns nil, nil when no report exists for the key yet.
	GetByUserAndDay(ctx context.Context, userID int64, dateKey string) (*DailyReport, error)
	// UpsertTotals writes the recomputed aggregate, preserving MarkedPaidAt
	// and PushSentAt on conflict, and returns the stored row.
	UpsertTotals(ctx context.Context, r *DailyReport) (*DailyReport, error)
	// SetMarkedPaid stamps the paid time, overwriting any earlier stamp for
	// the same day, and returns the stored row.
	SetMarkedPaid(ctx context.Context, userID int64, dateKey string, at time.Time) (*DailyReport, error)
	// SetPushSent stamps the push time only when it is not already set.
	// The boolean reports whether this call won the stamp.
	SetPushSent(ctx context.Context, userID int64, dateKey string, at time.Time) (bool, error)
}
