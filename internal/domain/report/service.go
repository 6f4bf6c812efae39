// Package report computes timezone-correct daily spend summaries.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dailyspend/internal/domain/account"
	"dailyspend/internal/domain/transaction"
	"dailyspend/internal/domain/user"
)

// Service aggregates ledger transactions into daily reports and handles the
// mark-paid flow.
type Service struct {
	users        user.Repository
	transactions transaction.Repository
	reports      Repository
	selections   account.SelectionRepository
	now          func() time.Time
}

// NewService creates a report service.
func NewService(users user.Repository, transactions transaction.Repository, reports Repository, selections account.SelectionRepository) *Service {
	return &Service{
		users:        users,
		transactions: transactions,
		reports:      reports,
		selections:   selections,
		now:          time.Now,
	}
}

// ComputeReport recomputes and upserts the daily report for the given date
// key. It never touches the marked-paid or push-sent stamps, so it is safe
// to call from any job at any time.
func (s *Service) ComputeReport(ctx context.Context, userID int64, dateKey string) (*DailyReport, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	loc := Location(u)

	start, _, err := BoundsForDateKey(dateKey, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date key %q: %w", dateKey, err)
	}

	txs, err := s.DayTransactions(ctx, userID, dateKey)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for i := range txs {
		total = total.Add(decimal.NewFromFloat(txs[i].Amount))
	}
	totalF, _ := total.Float64()

	stored, err := s.reports.UpsertTotals(ctx, &DailyReport{
		UserID:         userID,
		Day:            start,
		DateKey:        dateKey,
		Total:          totalF,
		Count:          len(txs),
		LastComputedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily report: %w", err)
	}
	return stored, nil
}

// MarkPaid recomputes today's totals and stamps the marked-paid time.
// Calling it again later the same day recomputes and re-stamps; it is an
// idempotent re-affirmation, not a one-time lock. dateKey may be empty to
// mean "today" in the user's timezone.
func (s *Service) MarkPaid(ctx context.Context, userID int64, dateKey string) (*DailyReport, error) {
	if _, err := s.selections.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}

	if dateKey == "" {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
		}
		dateKey = DateKeyAt(s.now(), Location(u))
	}

	if _, err := s.ComputeReport(ctx, userID, dateKey); err != nil {
		return nil, err
	}

	stored, err := s.reports.SetMarkedPaid(ctx, userID, dateKey, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to mark paid: %w", err)
	}
	return stored, nil
}

// DayTransactions returns the user's transactions belonging to the given
// calendar day. The stored-date range query is only a coarse pre-filter;
// each row is re-checked against its own date key, because date-only
// provider timestamps can sit outside the local day's UTC window.
func (s *Service) DayTransactions(ctx context.Context, userID int64, dateKey string) ([]transaction.Transaction, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	loc := Location(u)

	start, end, err := BoundsForDateKey(dateKey, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date key %q: %w", dateKey, err)
	}

	candidates, err := s.transactions.ListByUserBetween(ctx, userID, start.Add(-24*time.Hour), end.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	matched := make([]transaction.Transaction, 0, len(candidates))
	for _, tx := range candidates {
		if TransactionDateKey(tx.Date, loc) == dateKey {
			matched = append(matched, tx)
		}
	}
	return matched, nil
}

// Location resolves the user's timezone, defaulting to UTC when the user has
// not configured one or the stored name is invalid.
func Location(u *user.User) *time.Location {
	if u.Timezone == nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(*u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
