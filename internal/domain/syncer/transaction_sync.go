package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dailyspend/internal/domain/account"
	"dailyspend/internal/domain/item"
	"dailyspend/internal/domain/transaction"
	"dailyspend/internal/infrastructure/provider"
)

// TransactionSyncService ingests provider transactions for a user's spend
// account into the ledger, one cursor-ordered page at a time.
type TransactionSyncService struct {
	resolver     *Resolver
	client       provider.ClientInterface
	items        item.Repository
	selections   account.SelectionRepository
	transactions transaction.Repository
	balances     *BalanceSyncService
	guard        *InFlight
	windowDays   int
	now          func() time.Time
}

// NewTransactionSyncService creates a transaction sync service. windowDays
// bounds the trailing fetch window for cursor-less (fresh) syncs.
func NewTransactionSyncService(
	resolver *Resolver,
	client provider.ClientInterface,
	items item.Repository,
	selections account.SelectionRepository,
	transactions transaction.Repository,
	balances *BalanceSyncService,
	guard *InFlight,
	windowDays int,
) *TransactionSyncService {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &TransactionSyncService{
		resolver:     resolver,
		client:       client,
		items:        items,
		selections:   selections,
		transactions: transactions,
		balances:     balances,
		guard:        guard,
		windowDays:   windowDays,
		now:          time.Now,
	}
}

// SyncUser pulls the trailing window of spend-account transactions for one
// user. A user without a selection or without a resolvable credential is a
// logged no-op, not a failure. Each page's cursor is persisted before the
// next page is fetched, so a crash re-fetches at most one page.
func (s *TransactionSyncService) SyncUser(ctx context.Context, userID int64) error {
	sel, err := s.selections.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrNoAccountSelected) {
			log.Printf("User %d: no spend account selected, skipping sync", userID)
			return nil
		}
		return fmt.Errorf("failed to load selection for user %d: %w", userID, err)
	}

	it, token, err := s.resolver.ResolveCredential(ctx, userID, sel.SpendAccountID)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			log.Printf("User %d: no usable credential for account %s, skipping sync", userID, sel.SpendAccountID)
			return nil
		}
		return err
	}

	if !s.guard.TryAcquire(userID, it.ID) {
		log.Printf("User %d: sync already running for item %s, skipping tick", userID, it.ID)
		return nil
	}
	defer s.guard.Release(userID, it.ID)

	if err := s.paginate(ctx, userID, sel.SpendAccountID, it, token); err != nil {
		return err
	}

	// Coverage balance rides along on transaction sync. Its failure never
	// fails the sync itself.
	if sel.CoverageAccountID != nil {
		if err := s.balances.SyncAccount(ctx, userID, *sel.CoverageAccountID); err != nil {
			log.Printf("User %d: coverage balance fetch failed: %v", userID, err)
		}
	}
	return nil
}

func (s *TransactionSyncService) paginate(ctx context.Context, userID int64, accountID string, it *item.LinkedItem, token string) error {
	now := s.now().UTC()
	query := provider.TransactionQuery{
		StartDate:  now.AddDate(0, 0, -s.windowDays).Format("2006-01-02"),
		EndDate:    now.Format("2006-01-02"),
		AccountIDs: []string{accountID},
	}
	if it.SyncCursor != nil {
		query.Cursor = *it.SyncCursor
	}

	for {
		page, err := s.client.ListTransactions(ctx, token, query)
		if err != nil {
			if provider.IsCredentialExpired(err) {
				// The cursor saved so far stays valid for when the user
				// re-links, so it is deliberately not cleared here.
				code := provider.ErrorCode(err)
				log.Printf("Item %s: credential expired mid-sync (%s)", it.ID, code)
				if uerr := s.items.UpdateStatus(ctx, it.ID, item.StatusExpired, code); uerr != nil {
					log.Printf("Item %s: failed to mark expired: %v", it.ID, uerr)
				}
				return fmt.Errorf("credential expired for item %s: %w", it.ID, err)
			}
			return fmt.Errorf("failed to list transactions for item %s: %w", it.ID, err)
		}

		for i := range page.Transactions {
			if err := s.upsertTransaction(ctx, userID, &page.Transactions[i]); err != nil {
				log.Printf("User %d: skipping transaction %s: %v", userID, page.Transactions[i].ID, err)
			}
		}

		if page.NextCursor != "" {
			cursor := page.NextCursor
			if err := s.items.UpdateCursor(ctx, it.ID, &cursor); err != nil {
				return fmt.Errorf("failed to persist cursor for item %s: %w", it.ID, err)
			}
			if page.HasMore {
				query.Cursor = cursor
				continue
			}
			return nil
		}

		if page.HasMore {
			return fmt.Errorf("item %s: provider reported more pages without a cursor", it.ID)
		}

		// Pagination finished with no further cursor: clear the stored one
		// so the next run starts a fresh incremental baseline.
		if err := s.items.UpdateCursor(ctx, it.ID, nil); err != nil {
			return fmt.Errorf("failed to clear cursor for item %s: %w", it.ID, err)
		}
		return nil
	}
}

func (s *TransactionSyncService) upsertTransaction(ctx context.Context, userID int64, ptx *provider.Transaction) error {
	amount, err := ptx.GetAmount()
	if err != nil {
		return err
	}
	date, err := ptx.GetDate()
	if err != nil {
		return err
	}
	if date == nil {
		return fmt.Errorf("transaction %s has no date", ptx.ID)
	}

	return s.transactions.Upsert(ctx, &transaction.Transaction{
		ID:          ptx.ID,
		UserID:      userID,
		AccountID:   ptx.AccountID,
		Date:        *date,
		Description: ptx.Description,
		Amount:      amount,
		Pending:     ptx.Pending(),
	})
}
