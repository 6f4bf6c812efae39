package account

import (
	"errors"
	"time"
)

// ErrNoAccountSelected is returned when a user has not chosen a spend account.
var ErrNoAccountSelected = errors.New("no account selected")

// Selection is the pair of provider accounts a user tracks: the spend
// account whose transactions feed daily reports, and an optional coverage
// account whose balance is compared against spend. One row per user;
// re-selecting replaces it.
type Selection struct {
	UserID            int64     `json:"user_id"`
	SpendAccountID    string    `json:"spend_account_id"`
	CoverageAccountID *string   `json:"coverage_account_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BalanceSnapshot is one point-in-time balance observation for an account.
// Snapshots are append-only; the current balance is the latest row.
type BalanceSnapshot struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	AccountID  string    `json:"account_id"`
	Available  *float64  `json:"available"`
	Current    *float64  `json:"current"`
	CapturedAt time.Time `json:"captured_at"`
}
