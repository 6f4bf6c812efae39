package notification

import "time"

// Device is one registered push endpoint. Tokens are unique across users;
// re-registering a token moves it to the registering user.
type Device struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"-"`
	Platform  string    `json:"platform,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
