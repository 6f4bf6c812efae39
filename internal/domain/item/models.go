package item

import "time"

// Item lifecycle statuses.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
	StatusRevoked = "revoked"
	StatusError   = "error"
)

// LinkedItem is one connection to the data provider. AccessCredential holds
// the encrypted access token in nonce:tag:ciphertext record form; plaintext
// never reaches storage.
type LinkedItem struct {
	ID               string     `json:"id"`
	UserID           int64      `json:"user_id"`
	InstitutionName  string     `json:"institution_name"`
	AccessCredential string     `json:"-"`
	Status           string     `json:"status"`
	SyncCursor       *string    `json:"-"`
	LastErrorCode    *string    `json:"last_error_code,omitempty"`
	LastWebhookAt    *time.Time `json:"last_webhook_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Usable reports whether the item's credential may still be used for API
// calls. Expired and revoked items are skipped until the user re-links.
func (i *LinkedItem) Usable() bool {
	return i.Status == StatusActive || i.Status == StatusError
}
