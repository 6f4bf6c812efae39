package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"dailyspend/internal/domain/item"
	"dailyspend/internal/infrastructure/crypto"
)

// SyncTrigger runs one user's sync or an entire job family on demand.
type SyncTrigger interface {
	TriggerFamily(name string) error
}

// AdminHandler exposes manual operations: per-user sync triggers and item
// linking after a credential exchange.
type AdminHandler struct {
	trigger  SyncTrigger
	syncUser func(ctx context.Context, userID int64) error
	items    item.Repository
	vault    *crypto.Encryptor
}

func NewAdminHandler(trigger SyncTrigger, syncUser func(ctx context.Context, userID int64) error, items item.Repository, vault *crypto.Encryptor) *AdminHandler {
	return &AdminHandler{trigger: trigger, syncUser: syncUser, items: items, vault: vault}
}

type adminSyncRequest struct {
	UserID int64  `json:"userId"`
	Family string `json:"family"`
}

// HandleSync triggers a sync: with a user ID, that user's transaction sync
// runs inline; with a family name, the whole family's batch is scheduled.
func (h *AdminHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req adminSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch {
	case req.UserID > 0:
		if err := h.syncUser(r.Context(), req.UserID); err != nil {
			log.Printf("Admin sync failed for user %d: %v", req.UserID, err)
			http.Error(w, "Sync failed", http.StatusInternalServerError)
			return
		}
	case req.Family != "":
		if err := h.trigger.TriggerFamily(req.Family); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "userId or family is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "triggered"})
}

type linkItemRequest struct {
	UserID          int64  `json:"userId"`
	ItemID          string `json:"itemId"`
	InstitutionName string `json:"institutionName"`
	AccessToken     string `json:"accessToken"`
}

// HandleLinkItem stores a newly exchanged provider credential, encrypted at
// rest. Re-linking an existing item refreshes its credential and reactivates
// it.
func (h *AdminHandler) HandleLinkItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req linkItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID <= 0 || req.ItemID == "" || req.AccessToken == "" {
		http.Error(w, "userId, itemId and accessToken are required", http.StatusBadRequest)
		return
	}

	encrypted, err := h.vault.Encrypt(req.AccessToken)
	if err != nil {
		log.Printf("Failed to encrypt credential for item %s: %v", req.ItemID, err)
		http.Error(w, "Failed to store credential", http.StatusInternalServerError)
		return
	}

	it := &item.LinkedItem{
		ID:               req.ItemID,
		UserID:           req.UserID,
		InstitutionName:  req.InstitutionName,
		AccessCredential: encrypted,
		Status:           item.StatusActive,
	}
	if err := h.items.Upsert(r.Context(), it); err != nil {
		log.Printf("Failed to upsert item %s: %v", req.ItemID, err)
		http.Error(w, "Failed to store item", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, it)
}
