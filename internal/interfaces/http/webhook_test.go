package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailyspend/internal/domain/item"
)

type mockItemRepo struct {
	items         map[string]*item.LinkedItem
	statusUpdates []string
	touched       []string
}

func (m *mockItemRepo) ListByUserID(ctx context.Context, userID int64) ([]item.LinkedItem, error) {
	return nil, nil
}

func (m *mockItemRepo) GetByID(ctx context.Context, id string) (*item.LinkedItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s not found", id)
	}
	return it, nil
}

func (m *mockItemRepo) Upsert(ctx context.Context, it *item.LinkedItem) error {
	if m.items == nil {
		m.items = make(map[string]*item.LinkedItem)
	}
	m.items[it.ID] = it
	return nil
}

func (m *mockItemRepo) UpdateStatus(ctx context.Context, id, status, errorCode string) error {
	m.statusUpdates = append(m.statusUpdates, fmt.Sprintf("%s/%s/%s", id, status, errorCode))
	if it, ok := m.items[id]; ok {
		it.Status = status
	}
	return nil
}

func (m *mockItemRepo) UpdateCursor(ctx context.Context, id string, cursor *string) error {
	return nil
}

func (m *mockItemRepo) TouchWebhook(ctx context.Context, id string) error {
	m.touched = append(m.touched, id)
	return nil
}

const webhookSecret = "test-webhook-secret"

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(t *testing.T, h *WebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/provider", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rr := httptest.NewRecorder()
	h.HandleProviderWebhook(rr, req)
	return rr
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	items := &mockItemRepo{items: map[string]*item.LinkedItem{
		"item-1": {ID: "item-1", UserID: 1, Status: item.StatusActive},
	}}
	h := NewWebhookHandler(webhookSecret, items, nil)

	body := []byte(`{"type":"ITEM_LOGIN_REQUIRED","itemId":"item-1"}`)

	rr := postWebhook(t, h, body, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = postWebhook(t, h, body, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Rejected events must leave item state untouched.
	assert.Empty(t, items.statusUpdates)
	assert.Empty(t, items.touched)
}

func TestWebhook_ExpiryEventFlipsItem(t *testing.T) {
	items := &mockItemRepo{items: map[string]*item.LinkedItem{
		"item-1": {ID: "item-1", UserID: 1, Status: item.StatusActive},
	}}
	h := NewWebhookHandler(webhookSecret, items, nil)

	body := []byte(`{"type":"ITEM_LOGIN_REQUIRED","itemId":"item-1","errorCode":"ITEM_LOGIN_REQUIRED"}`)
	rr := postWebhook(t, h, body, sign(body))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, items.statusUpdates, 1)
	assert.Equal(t, "item-1/expired/ITEM_LOGIN_REQUIRED", items.statusUpdates[0])
	assert.Equal(t, []string{"item-1"}, items.touched)
}

func TestWebhook_TransactionsUpdatedEnqueuesSync(t *testing.T) {
	items := &mockItemRepo{items: map[string]*item.LinkedItem{
		"item-1": {ID: "item-1", UserID: 7, Status: item.StatusActive},
	}}
	var enqueued []int64
	h := NewWebhookHandler(webhookSecret, items, func(userID int64) {
		enqueued = append(enqueued, userID)
	})

	body := []byte(`{"type":"TRANSACTIONS_UPDATED","itemId":"item-1"}`)
	rr := postWebhook(t, h, body, sign(body))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int64{7}, enqueued)
	assert.Empty(t, items.statusUpdates)
}

func TestWebhook_UnknownItemAcknowledged(t *testing.T) {
	h := NewWebhookHandler(webhookSecret, &mockItemRepo{}, nil)

	body := []byte(`{"type":"TRANSACTIONS_UPDATED","itemId":"ghost"}`)
	rr := postWebhook(t, h, body, sign(body))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWebhook_UnknownEventTypeIgnored(t *testing.T) {
	items := &mockItemRepo{items: map[string]*item.LinkedItem{
		"item-1": {ID: "item-1", UserID: 1, Status: item.StatusActive},
	}}
	h := NewWebhookHandler(webhookSecret, items, nil)

	body := []byte(`{"type":"SOMETHING_NEW","itemId":"item-1"}`)
	rr := postWebhook(t, h, body, sign(body))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, items.statusUpdates)
	assert.Equal(t, []string{"item-1"}, items.touched)
}
