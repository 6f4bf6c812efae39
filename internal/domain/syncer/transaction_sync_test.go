package syncer

import (
	"context"
	"strings"
	"testing"

	"dailyspend/internal/domain/account"
	"dailyspend/internal/domain/item"
	"dailyspend/internal/infrastructure/provider"
)

// pagedProvider serves a fixed sequence of transaction pages keyed by cursor,
// recording every cursor it was asked for.
type pagedProvider struct {
	pages   map[string]*provider.TransactionPage
	fetched []string
}

func (p *pagedProvider) client(spendAccount string) *mockProviderClient {
	return &mockProviderClient{
		listAccounts: func(ctx context.Context, token string) ([]provider.Account, error) {
			return []provider.Account{{ID: spendAccount}}, nil
		},
		listTransactions: func(ctx context.Context, token string, q provider.TransactionQuery) (*provider.TransactionPage, error) {
			p.fetched = append(p.fetched, q.Cursor)
			page, ok := p.pages[q.Cursor]
			if !ok {
				return &provider.TransactionPage{}, nil
			}
			return page, nil
		},
		getBalances: func(ctx context.Context, token string, ids []string) ([]provider.Balance, error) {
			return nil, nil
		},
	}
}

func twoPages() map[string]*provider.TransactionPage {
	return map[string]*provider.TransactionPage{
		"": {
			Transactions: []provider.Transaction{
				{ID: "t1", AccountID: "acc-spend", AmountString: "10.50", DateString: "2025-06-10", Status: "POSTED"},
				{ID: "t2", AccountID: "acc-spend", AmountString: "25.75", DateString: "2025-06-10", Status: "POSTED"},
			},
			NextCursor: "cursor-1",
			HasMore:    true,
		},
		"cursor-1": {
			Transactions: []provider.Transaction{
				{ID: "t3", AccountID: "acc-spend", AmountString: "4.00", DateString: "2025-06-11", Status: "PENDING"},
			},
			NextCursor: "",
			HasMore:    false,
		},
	}
}

func newSyncFixture(t *testing.T, pages map[string]*provider.TransactionPage) (*TransactionSyncService, *mockItemRepo, *mockTxRepo, *pagedProvider) {
	t.Helper()
	vault := newTestVault(t)
	items := &mockItemRepo{items: []item.LinkedItem{
		activeItem(t, vault, "item-1", 1, "token-1"),
	}}
	selections := &mockSelectionRepo{selections: map[int64]*account.Selection{
		1: {UserID: 1, SpendAccountID: "acc-spend"},
	}}
	txRepo := newMockTxRepo()
	prov := &pagedProvider{pages: pages}
	client := prov.client("acc-spend")
	resolver := NewResolver(items, client, vault)
	balances := NewBalanceSyncService(resolver, selections, &mockSnapshotRepo{})
	svc := NewTransactionSyncService(resolver, client, items, selections, txRepo, balances, NewInFlight(), 30)
	return svc, items, txRepo, prov
}

func TestSyncUser_IngestsAllPages(t *testing.T) {
	svc, items, txRepo, prov := newSyncFixture(t, twoPages())

	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("SyncUser() error = %v", err)
	}

	if len(txRepo.rows) != 3 {
		t.Errorf("stored %d transactions, want 3", len(txRepo.rows))
	}
	if got := txRepo.rows["t1"].Amount; got != 10.50 {
		t.Errorf("t1 amount = %v, want 10.50", got)
	}
	if !txRepo.rows["t3"].Pending {
		t.Error("t3 should be stored as pending")
	}
	if len(prov.fetched) != 2 || prov.fetched[1] != "cursor-1" {
		t.Errorf("fetched cursors = %v, want second fetch to resume from cursor-1", prov.fetched)
	}
	// cursor-1 persisted after page one, then cleared when pagination ended.
	want := []string{"item-1/cursor-1", "item-1/<nil>"}
	if len(items.cursorWrites) != 2 || items.cursorWrites[0] != want[0] || items.cursorWrites[1] != want[1] {
		t.Errorf("cursor writes = %v, want %v", items.cursorWrites, want)
	}
}

func TestSyncUser_RerunIsIdempotent(t *testing.T) {
	svc, _, txRepo, _ := newSyncFixture(t, twoPages())

	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("first SyncUser() error = %v", err)
	}
	first := len(txRepo.rows)

	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("second SyncUser() error = %v", err)
	}
	if len(txRepo.rows) != first {
		t.Errorf("second run changed row count: %d -> %d", first, len(txRepo.rows))
	}
	if txRepo.rows["t1"].Amount != 10.50 || txRepo.rows["t2"].Amount != 25.75 {
		t.Error("second run changed stored values")
	}
}

func TestSyncUser_ResumesFromPersistedCursor(t *testing.T) {
	// Simulate a run interrupted after persisting cursor-1: the item starts
	// with that cursor and only the remaining page should be fetched.
	svc, items, txRepo, prov := newSyncFixture(t, twoPages())
	cursor := "cursor-1"
	items.items[0].SyncCursor = &cursor

	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("SyncUser() error = %v", err)
	}
	if len(prov.fetched) != 1 || prov.fetched[0] != "cursor-1" {
		t.Errorf("fetched cursors = %v, want exactly [cursor-1]", prov.fetched)
	}
	if _, ok := txRepo.rows["t3"]; !ok {
		t.Error("resumed run must ingest the remaining page")
	}
	if _, ok := txRepo.rows["t1"]; ok {
		t.Error("resumed run must not re-fetch completed pages")
	}
}

func TestSyncUser_CredentialExpiredMidSync(t *testing.T) {
	pages := twoPages()
	svc, items, txRepo, prov := newSyncFixture(t, pages)
	delete(prov.pages, "cursor-1")
	client := prov.client("acc-spend")
	inner := client.listTransactions
	client.listTransactions = func(ctx context.Context, token string, q provider.TransactionQuery) (*provider.TransactionPage, error) {
		if q.Cursor == "cursor-1" {
			prov.fetched = append(prov.fetched, q.Cursor)
			return nil, &provider.APIError{StatusCode: 400, Code: "ITEM_LOGIN_REQUIRED"}
		}
		return inner(ctx, token, q)
	}
	svc.client = client

	err := svc.SyncUser(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "credential expired") {
		t.Fatalf("SyncUser() error = %v, want credential expired", err)
	}

	if items.items[0].Status != item.StatusExpired {
		t.Errorf("item status = %s, want expired", items.items[0].Status)
	}
	// Page one landed before the failure and its cursor survives for the
	// next run after the user re-links.
	if len(txRepo.rows) != 2 {
		t.Errorf("stored %d transactions, want the 2 from page one", len(txRepo.rows))
	}
	if items.items[0].SyncCursor == nil || *items.items[0].SyncCursor != "cursor-1" {
		t.Error("persisted cursor must survive credential expiry")
	}
}

func TestSyncUser_NoSelectionIsNoOp(t *testing.T) {
	svc, _, txRepo, prov := newSyncFixture(t, twoPages())
	svc.selections = &mockSelectionRepo{selections: map[int64]*account.Selection{}}

	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("SyncUser() error = %v, want nil for unselected user", err)
	}
	if len(txRepo.rows) != 0 || len(prov.fetched) != 0 {
		t.Error("unselected user must not trigger provider calls")
	}
}

func TestSyncUser_GuardSkipsOverlappingRun(t *testing.T) {
	svc, _, _, prov := newSyncFixture(t, twoPages())
	svc.guard.TryAcquire(1, "item-1")

	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("SyncUser() error = %v, want nil when skipped", err)
	}
	if len(prov.fetched) != 0 {
		t.Error("overlapping run must not fetch pages")
	}
}

func TestSyncUser_CoverageBalanceBestEffort(t *testing.T) {
	vault := newTestVault(t)
	items := &mockItemRepo{items: []item.LinkedItem{
		activeItem(t, vault, "item-1", 1, "token-1"),
	}}
	coverage := "acc-coverage"
	selections := &mockSelectionRepo{selections: map[int64]*account.Selection{
		1: {UserID: 1, SpendAccountID: "acc-spend", CoverageAccountID: &coverage},
	}}
	snapshots := &mockSnapshotRepo{}
	available := 1200.00
	client := &mockProviderClient{
		listAccounts: func(ctx context.Context, token string) ([]provider.Account, error) {
			return []provider.Account{{ID: "acc-spend"}, {ID: "acc-coverage"}}, nil
		},
		listTransactions: func(ctx context.Context, token string, q provider.TransactionQuery) (*provider.TransactionPage, error) {
			return &provider.TransactionPage{}, nil
		},
		getBalances: func(ctx context.Context, token string, ids []string) ([]provider.Balance, error) {
			return []provider.Balance{{AccountID: "acc-coverage", Available: &available}}, nil
		},
	}
	resolver := NewResolver(items, client, vault)
	balances := NewBalanceSyncService(resolver, selections, snapshots)
	svc := NewTransactionSyncService(resolver, client, items, selections, newMockTxRepo(), balances, NewInFlight(), 30)

	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("SyncUser() error = %v", err)
	}
	if len(snapshots.appended) != 1 || snapshots.appended[0].AccountID != "acc-coverage" {
		t.Errorf("snapshots = %v, want one coverage snapshot", snapshots.appended)
	}
}
