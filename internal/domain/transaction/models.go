package transaction

import "time"

// Transaction is a stored transaction keyed by the provider's external ID.
// Re-syncing the same ID updates the row in place, so reruns of a sync are
// idempotent.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	AccountID   string    `json:"account_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"` // positive = spend
	Pending     bool      `json:"pending"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
