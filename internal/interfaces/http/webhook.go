package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"dailyspend/internal/domain/item"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Provider-Signature"

// WebhookHandler processes asynchronous item/transaction events from the
// provider. Unverifiable payloads are rejected and never processed.
type WebhookHandler struct {
	secret []byte
	items  item.Repository
	// enqueueSync schedules a transaction sync for the item's owner.
	enqueueSync func(userID int64)
}

func NewWebhookHandler(secret string, items item.Repository, enqueueSync func(userID int64)) *WebhookHandler {
	return &WebhookHandler{secret: []byte(secret), items: items, enqueueSync: enqueueSync}
}

type webhookEvent struct {
	Type      string `json:"type"`
	ItemID    string `json:"itemId"`
	ErrorCode string `json:"errorCode"`
}

// HandleProviderWebhook verifies and applies one provider event.
func (h *WebhookHandler) HandleProviderWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if !h.verify(body, r.Header.Get(SignatureHeader)) {
		log.Printf("Webhook rejected: bad signature from %s", r.RemoteAddr)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if event.ItemID == "" {
		http.Error(w, "Missing item ID", http.StatusBadRequest)
		return
	}

	it, err := h.items.GetByID(r.Context(), event.ItemID)
	if err != nil {
		// Unknown items are acknowledged so the provider stops retrying.
		log.Printf("Webhook for unknown item %s: %v", event.ItemID, err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.items.TouchWebhook(r.Context(), it.ID); err != nil {
		log.Printf("Failed to record webhook time for item %s: %v", it.ID, err)
	}

	switch event.Type {
	case "ITEM_LOGIN_REQUIRED", "ERROR":
		code := event.ErrorCode
		if code == "" {
			code = event.Type
		}
		if err := h.items.UpdateStatus(r.Context(), it.ID, item.StatusExpired, code); err != nil {
			log.Printf("Failed to expire item %s from webhook: %v", it.ID, err)
			http.Error(w, "Failed to process event", http.StatusInternalServerError)
			return
		}
		log.Printf("Item %s expired via webhook (%s)", it.ID, code)

	case "TRANSACTIONS_UPDATED":
		if h.enqueueSync != nil {
			h.enqueueSync(it.UserID)
		}

	default:
		log.Printf("Webhook: ignoring event type %q for item %s", event.Type, it.ID)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) verify(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
