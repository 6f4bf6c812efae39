package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dailyspend/internal/domain/account"
)

// BalanceSyncService appends point-in-time balance snapshots for a user's
// selected accounts.
type BalanceSyncService struct {
	resolver   *Resolver
	selections account.SelectionRepository
	snapshots  account.SnapshotRepository
	now        func() time.Time
}

// NewBalanceSyncService creates a balance sync service.
func NewBalanceSyncService(resolver *Resolver, selections account.SelectionRepository, snapshots account.SnapshotRepository) *BalanceSyncService {
	return &BalanceSyncService{
		resolver:   resolver,
		selections: selections,
		snapshots:  snapshots,
		now:        time.Now,
	}
}

// SyncUser snapshots balances for whichever of the user's spend and coverage
// accounts are selected. Credentials are resolved per account because the
// two accounts may live in different linked items, and one account's failure
// never blocks the other.
func (s *BalanceSyncService) SyncUser(ctx context.Context, userID int64) error {
	sel, err := s.selections.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrNoAccountSelected) {
			log.Printf("User %d: no account selected, skipping balance sync", userID)
			return nil
		}
		return fmt.Errorf("failed to load selection for user %d: %w", userID, err)
	}

	accountIDs := []string{sel.SpendAccountID}
	if sel.CoverageAccountID != nil {
		accountIDs = append(accountIDs, *sel.CoverageAccountID)
	}

	for _, accountID := range accountIDs {
		if err := s.SyncAccount(ctx, userID, accountID); err != nil {
			log.Printf("User %d: balance sync failed for account %s: %v", userID, accountID, err)
		}
	}
	return nil
}

// SyncAccount fetches the current balance for one account and appends a
// snapshot.
func (s *BalanceSyncService) SyncAccount(ctx context.Context, userID int64, accountID string) error {
	_, token, err := s.resolver.ResolveCredential(ctx, userID, accountID)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return fmt.Errorf("no usable credential for account %s: %w", accountID, err)
		}
		return err
	}

	balances, err := s.resolver.client.GetBalances(ctx, token, []string{accountID})
	if err != nil {
		return fmt.Errorf("failed to fetch balances for account %s: %w", accountID, err)
	}

	capturedAt := s.now().UTC()
	for i := range balances {
		b := &balances[i]
		if b.AccountID != accountID {
			continue
		}
		snap := &account.BalanceSnapshot{
			UserID:     userID,
			AccountID:  b.AccountID,
			Available:  b.Available,
			Current:    b.Current,
			CapturedAt: capturedAt,
		}
		if err := s.snapshots.Append(ctx, snap); err != nil {
			return fmt.Errorf("failed to append balance snapshot: %w", err)
		}
	}
	return nil
}
