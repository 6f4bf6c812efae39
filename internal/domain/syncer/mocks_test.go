package syncer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dailyspend/internal/domain/account"
	"dailyspend/internal/domain/item"
	"dailyspend/internal/domain/transaction"
	"dailyspend/internal/infrastructure/crypto"
	"dailyspend/internal/infrastructure/provider"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestVault(t *testing.T) *crypto.Encryptor {
	t.Helper()
	enc, err := crypto.NewEncryptor(testKeyHex)
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}
	return enc
}

func encryptToken(t *testing.T, vault *crypto.Encryptor, token string) string {
	t.Helper()
	record, err := vault.Encrypt(token)
	if err != nil {
		t.Fatalf("failed to encrypt token: %v", err)
	}
	return record
}

type mockProviderClient struct {
	listAccounts     func(ctx context.Context, token string) ([]provider.Account, error)
	listTransactions func(ctx context.Context, token string, q provider.TransactionQuery) (*provider.TransactionPage, error)
	getBalances      func(ctx context.Context, token string, ids []string) ([]provider.Balance, error)
}

func (m *mockProviderClient) ListAccounts(ctx context.Context, token string) ([]provider.Account, error) {
	return m.listAccounts(ctx, token)
}

func (m *mockProviderClient) ListTransactions(ctx context.Context, token string, q provider.TransactionQuery) (*provider.TransactionPage, error) {
	return m.listTransactions(ctx, token, q)
}

func (m *mockProviderClient) GetBalances(ctx context.Context, token string, ids []string) ([]provider.Balance, error) {
	return m.getBalances(ctx, token, ids)
}

type mockItemRepo struct {
	items []item.LinkedItem

	statusUpdates []string // "id/status/code"
	cursorWrites  []string // "id/cursor" or "id/<nil>"
}

func (m *mockItemRepo) ListByUserID(ctx context.Context, userID int64) ([]item.LinkedItem, error) {
	var out []item.LinkedItem
	for _, it := range m.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockItemRepo) GetByID(ctx context.Context, id string) (*item.LinkedItem, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			cp := m.items[i]
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("item %s not found", id)
}

func (m *mockItemRepo) Upsert(ctx context.Context, it *item.LinkedItem) error {
	for i := range m.items {
		if m.items[i].ID == it.ID {
			m.items[i] = *it
			return nil
		}
	}
	m.items = append(m.items, *it)
	return nil
}

func (m *mockItemRepo) UpdateStatus(ctx context.Context, id, status, errorCode string) error {
	m.statusUpdates = append(m.statusUpdates, fmt.Sprintf("%s/%s/%s", id, status, errorCode))
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			if errorCode != "" {
				code := errorCode
				m.items[i].LastErrorCode = &code
			}
		}
	}
	return nil
}

func (m *mockItemRepo) UpdateCursor(ctx context.Context, id string, cursor *string) error {
	if cursor == nil {
		m.cursorWrites = append(m.cursorWrites, id+"/<nil>")
	} else {
		m.cursorWrites = append(m.cursorWrites, id+"/"+*cursor)
	}
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].SyncCursor = cursor
		}
	}
	return nil
}

func (m *mockItemRepo) TouchWebhook(ctx context.Context, id string) error { return nil }

type mockSelectionRepo struct {
	selections map[int64]*account.Selection
}

func (m *mockSelectionRepo) GetByUserID(ctx context.Context, userID int64) (*account.Selection, error) {
	sel, ok := m.selections[userID]
	if !ok {
		return nil, account.ErrNoAccountSelected
	}
	return sel, nil
}

func (m *mockSelectionRepo) Upsert(ctx context.Context, s *account.Selection) error {
	m.selections[s.UserID] = s
	return nil
}

type mockTxRepo struct {
	rows map[string]transaction.Transaction
}

func newMockTxRepo() *mockTxRepo {
	return &mockTxRepo{rows: make(map[string]transaction.Transaction)}
}

func (m *mockTxRepo) Upsert(ctx context.Context, tx *transaction.Transaction) error {
	m.rows[tx.ID] = *tx
	return nil
}

func (m *mockTxRepo) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	tx, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (m *mockTxRepo) ListByUserBetween(ctx context.Context, userID int64, start, end time.Time) ([]transaction.Transaction, error) {
	var out []transaction.Transaction
	for _, tx := range m.rows {
		if tx.UserID == userID && !tx.Date.Before(start) && tx.Date.Before(end) {
			out = append(out, tx)
		}
	}
	return out, nil
}

type mockSnapshotRepo struct {
	appended []account.BalanceSnapshot
}

func (m *mockSnapshotRepo) Append(ctx context.Context, snap *account.BalanceSnapshot) error {
	m.appended = append(m.appended, *snap)
	return nil
}

func (m *mockSnapshotRepo) Latest(ctx context.Context, userID int64, accountID string) (*account.BalanceSnapshot, error) {
	for i := len(m.appended) - 1; i >= 0; i-- {
		if m.appended[i].UserID == userID && m.appended[i].AccountID == accountID {
			cp := m.appended[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func activeItem(t *testing.T, vault *crypto.Encryptor, id string, userID int64, token string) item.LinkedItem {
	t.Helper()
	return item.LinkedItem{
		ID:               id,
		UserID:           userID,
		InstitutionName:  "Test Bank",
		AccessCredential: encryptToken(t, vault, token),
		Status:           item.StatusActive,
	}
}
