package report

import "time"

// DailyReport is the aggregated spend for one user and one calendar day.
// Day is the UTC instant the local day starts at; DateKey is the calendar
// date in the user's timezone. PushSentAt is the only dedup guard for
// notification delivery.
type DailyReport struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	Day            time.Time  `json:"day"`
	DateKey        string     `json:"date_key"`
	Total          float64    `json:"total"`
	Count          int        `json:"count"`
	LastComputedAt time.Time  `json:"last_computed_at"`
	MarkedPaidAt   *time.Time `json:"marked_paid_at,omitempty"`
	PushSentAt     *time.Time `json:"push_sent_at,omitempty"`
}

// Paid reports whether the user already marked the day settled.
func (r *DailyReport) Paid() bool {
	return r.MarkedPaidAt != nil
}
