package user

import (
	"time"
)

// User holds identity plus the reporting/notification settings configured
// during setup. Timezone and NotifyTime stay nil until the user picks them.
type User struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Timezone   *string    `json:"timezone,omitempty"`    // IANA name, e.g. "America/New_York"
	NotifyTime *string    `json:"notify_time,omitempty"` // "HH:MM" in the user's local time
	GoalLabel  *string    `json:"goal_label,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// UpdateSettingsParams carries the fields a user may change during setup.
// Nil pointers leave the stored value untouched.
type UpdateSettingsParams struct {
	Timezone   *string
	NotifyTime *string
	GoalLabel  *string
}
