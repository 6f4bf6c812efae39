package provider

import (
	"fmt"
	"strconv"
	"time"
)

// Account represents an account exposed by a linked item.
type Account struct {
	ID           string `json:"id"`
	ItemID       string `json:"itemId"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Subtype      string `json:"subtype"`
	Mask         string `json:"mask"`
	CurrencyCode string `json:"currencyCode"`
}

// Transaction represents a transaction from the provider API.
type Transaction struct {
	ID           string `json:"id"`
	AccountID    string `json:"accountId"`
	Description  string `json:"description"`
	AmountString string `json:"amount"` // API returns amount as string
	DateString   string `json:"date"`   // RFC3339 or "2006-01-02"
	Status       string `json:"status"` // "PENDING" or "POSTED"
}

// GetAmount returns the amount as a float64.
func (t *Transaction) GetAmount() (float64, error) {
	if t.AmountString == "" {
		return 0, nil
	}
	amount, err := strconv.ParseFloat(t.AmountString, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", t.AmountString, err)
	}
	return amount, nil
}

// GetDate parses and returns the transaction date. Date-only values are
// parsed as midnight UTC.
func (t *Transaction) GetDate() (*time.Time, error) {
	if t.DateString == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, t.DateString)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", t.DateString)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date '%s': %w", t.DateString, err)
		}
	}
	return &parsed, nil
}

// Pending reports whether the transaction has not yet posted.
func (t *Transaction) Pending() bool {
	return t.Status == "PENDING"
}

// Balance is a point-in-time balance for one account.
type Balance struct {
	AccountID string   `json:"accountId"`
	Available *float64 `json:"available"`
	Current   *float64 `json:"current"`
}

// TransactionQuery restricts a paginated transaction listing.
type TransactionQuery struct {
	StartDate  string // "2006-01-02"
	EndDate    string // "2006-01-02"
	AccountIDs []string
	Cursor     string // empty for the first page
}

// TransactionPage is one page of a cursor-paginated listing.
type TransactionPage struct {
	Transactions []Transaction
	NextCursor   string
	HasMore      bool
}

// accountsResponse is the wire shape of the account listing.
type accountsResponse struct {
	Success bool      `json:"success"`
	Data    []Account `json:"data"`
}

type transactionsResponse struct {
	Success    bool          `json:"success"`
	Data       []Transaction `json:"data"`
	NextCursor string        `json:"nextCursor"`
	HasMore    bool          `json:"hasMore"`
}

type balancesResponse struct {
	Success bool      `json:"success"`
	Data    []Balance `json:"data"`
}

// errorResponse is the provider's error envelope.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"` // machine-readable code, e.g. ITEM_LOGIN_REQUIRED
	Message string `json:"message"`
}
