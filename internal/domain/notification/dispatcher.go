package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"dailyspend/internal/domain/report"
	"dailyspend/internal/domain/user"
	"dailyspend/internal/shared/messages"
)

// Dispatcher decides, per user per tick, whether the daily report push
// should go out now. The pushSentAt stamp on the report row is the sole
// at-most-once-per-day guarantee; the time-window match only narrows when
// a send is attempted.
type Dispatcher struct {
	users    user.Repository
	reports  report.Repository
	reporter *report.Service
	devices  Repository
	delivery *DeliveryService
	text     messages.MessageText
	now      func() time.Time
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(
	users user.Repository,
	reports report.Repository,
	reporter *report.Service,
	devices Repository,
	delivery *DeliveryService,
	text messages.MessageText,
) *Dispatcher {
	return &Dispatcher{
		users:    users,
		reports:  reports,
		reporter: reporter,
		devices:  devices,
		delivery: delivery,
		text:     text,
		now:      time.Now,
	}
}

// Tick evaluates every notifiable user once. Per-user failures are logged
// and never abort the rest of the batch.
func (d *Dispatcher) Tick(ctx context.Context) error {
	users, err := d.users.ListNotifiable(ctx)
	if err != nil {
		return fmt.Errorf("failed to list notifiable users: %w", err)
	}

	for i := range users {
		if err := d.DispatchUser(ctx, &users[i]); err != nil {
			log.Printf("User %d: notification dispatch failed: %v", users[i].ID, err)
		}
	}
	return nil
}

// DispatchUser runs the scheduling decision for one user and sends the
// daily report push when it is due.
func (d *Dispatcher) DispatchUser(ctx context.Context, u *user.User) error {
	if u.Timezone == nil || u.NotifyTime == nil {
		return nil
	}
	loc, err := time.LoadLocation(*u.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", *u.Timezone, err)
	}

	now := d.now()
	if !withinWindow(now.In(loc), *u.NotifyTime) {
		return nil
	}

	dateKey := report.DateKeyAt(now, loc)
	rep, err := d.reports.GetByUserAndDay(ctx, u.ID, dateKey)
	if err != nil {
		return fmt.Errorf("failed to load daily report: %w", err)
	}
	if rep == nil {
		// Normally the aggregator has already run; compute inline so a
		// late first sync still gets its report out.
		rep, err = d.reporter.ComputeReport(ctx, u.ID, dateKey)
		if err != nil {
			return fmt.Errorf("fallback report computation failed: %w", err)
		}
	}

	if rep.PushSentAt != nil {
		return nil
	}
	if rep.Total == 0 && rep.Count == 0 {
		return nil
	}

	devices, err := d.devices.ListByUserID(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	if len(devices) == 0 {
		return nil
	}

	body := fmt.Sprintf(d.text.Body, rep.Total, rep.Count)
	data := map[string]string{
		"type":     "daily_report",
		"date_key": rep.DateKey,
	}

	delivered := false
	for i := range devices {
		if d.delivery.Deliver(ctx, devices[i].Token, d.text.Title, body, data) {
			delivered = true
		}
	}
	if !delivered {
		return fmt.Errorf("delivery failed for all %d device(s)", len(devices))
	}

	if _, err := d.reports.SetPushSent(ctx, u.ID, dateKey, now.UTC()); err != nil {
		return fmt.Errorf("failed to stamp push sent: %w", err)
	}
	return nil
}

// withinWindow reports whether the local clock currently reads the user's
// configured HH:MM, with one-minute granularity to absorb tick jitter.
func withinWindow(localNow time.Time, notifyTime string) bool {
	target, err := time.Parse("15:04", notifyTime)
	if err != nil {
		return false
	}
	return localNow.Hour() == target.Hour() && localNow.Minute() == target.Minute()
}
