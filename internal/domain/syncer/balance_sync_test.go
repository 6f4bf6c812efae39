package syncer

import (
	"context"
	"testing"

	"dailyspend/internal/domain/account"
	"dailyspend/internal/domain/item"
	"dailyspend/internal/infrastructure/provider"
)

func TestBalanceSyncUser_SnapshotsBothAccounts(t *testing.T) {
	vault := newTestVault(t)
	items := &mockItemRepo{items: []item.LinkedItem{
		activeItem(t, vault, "item-1", 1, "token-1"),
	}}
	coverage := "acc-coverage"
	selections := &mockSelectionRepo{selections: map[int64]*account.Selection{
		1: {UserID: 1, SpendAccountID: "acc-spend", CoverageAccountID: &coverage},
	}}
	snapshots := &mockSnapshotRepo{}
	current := 350.00
	client := &mockProviderClient{
		listAccounts: func(ctx context.Context, token string) ([]provider.Account, error) {
			return []provider.Account{{ID: "acc-spend"}, {ID: "acc-coverage"}}, nil
		},
		getBalances: func(ctx context.Context, token string, ids []string) ([]provider.Balance, error) {
			return []provider.Balance{{AccountID: ids[0], Current: &current}}, nil
		},
	}

	svc := NewBalanceSyncService(NewResolver(items, client, vault), selections, snapshots)
	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("SyncUser() error = %v", err)
	}

	if len(snapshots.appended) != 2 {
		t.Fatalf("appended %d snapshots, want 2", len(snapshots.appended))
	}
	if snapshots.appended[0].AccountID != "acc-spend" || snapshots.appended[1].AccountID != "acc-coverage" {
		t.Errorf("snapshot accounts = %s, %s", snapshots.appended[0].AccountID, snapshots.appended[1].AccountID)
	}
}

func TestBalanceSyncUser_AppendsHistory(t *testing.T) {
	vault := newTestVault(t)
	items := &mockItemRepo{items: []item.LinkedItem{
		activeItem(t, vault, "item-1", 1, "token-1"),
	}}
	selections := &mockSelectionRepo{selections: map[int64]*account.Selection{
		1: {UserID: 1, SpendAccountID: "acc-spend"},
	}}
	snapshots := &mockSnapshotRepo{}
	current := 100.00
	client := &mockProviderClient{
		listAccounts: func(ctx context.Context, token string) ([]provider.Account, error) {
			return []provider.Account{{ID: "acc-spend"}}, nil
		},
		getBalances: func(ctx context.Context, token string, ids []string) ([]provider.Balance, error) {
			return []provider.Balance{{AccountID: "acc-spend", Current: &current}}, nil
		},
	}

	svc := NewBalanceSyncService(NewResolver(items, client, vault), selections, snapshots)
	for i := 0; i < 3; i++ {
		if err := svc.SyncUser(context.Background(), 1); err != nil {
			t.Fatalf("SyncUser() run %d error = %v", i, err)
		}
	}

	// Append-only time series: three runs leave three rows, no upsert.
	if len(snapshots.appended) != 3 {
		t.Errorf("appended %d snapshots, want 3", len(snapshots.appended))
	}
}

func TestBalanceSyncUser_PerAccountIsolation(t *testing.T) {
	vault := newTestVault(t)
	items := &mockItemRepo{items: []item.LinkedItem{
		activeItem(t, vault, "item-1", 1, "token-1"),
	}}
	coverage := "acc-coverage"
	selections := &mockSelectionRepo{selections: map[int64]*account.Selection{
		1: {UserID: 1, SpendAccountID: "acc-spend", CoverageAccountID: &coverage},
	}}
	snapshots := &mockSnapshotRepo{}
	current := 42.00
	client := &mockProviderClient{
		listAccounts: func(ctx context.Context, token string) ([]provider.Account, error) {
			return []provider.Account{{ID: "acc-spend"}, {ID: "acc-coverage"}}, nil
		},
		getBalances: func(ctx context.Context, token string, ids []string) ([]provider.Balance, error) {
			if ids[0] == "acc-spend" {
				return nil, &provider.APIError{StatusCode: 500, Code: "INTERNAL_SERVER_ERROR"}
			}
			return []provider.Balance{{AccountID: "acc-coverage", Current: &current}}, nil
		},
	}

	svc := NewBalanceSyncService(NewResolver(items, client, vault), selections, snapshots)
	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("SyncUser() error = %v", err)
	}

	if len(snapshots.appended) != 1 || snapshots.appended[0].AccountID != "acc-coverage" {
		t.Errorf("snapshots = %v, want only the coverage snapshot", snapshots.appended)
	}
}

func TestBalanceSyncUser_NoSelectionIsNoOp(t *testing.T) {
	vault := newTestVault(t)
	svc := NewBalanceSyncService(
		NewResolver(&mockItemRepo{}, &mockProviderClient{}, vault),
		&mockSelectionRepo{selections: map[int64]*account.Selection{}},
		&mockSnapshotRepo{},
	)

	if err := svc.SyncUser(context.Background(), 1); err != nil {
		t.Fatalf("SyncUser() error = %v, want nil for unselected user", err)
	}
}
