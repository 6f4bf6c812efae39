package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dailyspend/internal/domain/report"
)

type ReportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, user_id, day, date_key, total, count, last_computed_at, marked_paid_at, push_sent_at`

func (r *ReportRepository) GetByUserAndDay(ctx context.Context, userID int64, dateKey string) (*report.DailyReport, error) {
	query := `SELECT ` + reportColumns + ` FROM daily_reports WHERE user_id = $1 AND date_key = $2`

	var rep report.DailyReport
	err := r.db.QueryRowContext(ctx, query, userID, dateKey).Scan(
		&rep.ID, &rep.UserID, &rep.Day, &rep.DateKey, &rep.Total, &rep.Count,
		&rep.LastComputedAt, &rep.MarkedPaidAt, &rep.PushSentAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily report: %w", err)
	}
	return &rep, nil
}

// UpsertTotals writes recomputed totals, keyed by the (user, day) unique
// constraint. The marked-paid and push-sent stamps are deliberately left
// alone so aggregation can rerun at any time.
func (r *ReportRepository) UpsertTotals(ctx context.Context, rep *report.DailyReport) (*report.DailyReport, error) {
	query := `
		INSERT INTO daily_reports (user_id, day, date_key, total, count, last_computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, day) DO UPDATE
			SET total = EXCLUDED.total,
			    count = EXCLUDED.count,
			    last_computed_at = EXCLUDED.last_computed_at
		RETURNING ` + reportColumns

	var stored report.DailyReport
	err := r.db.QueryRowContext(ctx, query,
		rep.UserID, rep.Day, rep.DateKey, rep.Total, rep.Count, rep.LastComputedAt,
	).Scan(
		&stored.ID, &stored.UserID, &stored.Day, &stored.DateKey, &stored.Total, &stored.Count,
		&stored.LastComputedAt, &stored.MarkedPaidAt, &stored.PushSentAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily report: %w", err)
	}
	return &stored, nil
}

func (r *ReportRepository) SetMarkedPaid(ctx context.Context, userID int64, dateKey string, at time.Time) (*report.DailyReport, error) {
	query := `
		UPDATE daily_reports
		SET marked_paid_at = $3
		WHERE user_id = $1 AND date_key = $2
		RETURNING ` + reportColumns

	var stored report.DailyReport
	err := r.db.QueryRowContext(ctx, query, userID, dateKey, at).Scan(
		&stored.ID, &stored.UserID, &stored.Day, &stored.DateKey, &stored.Total, &stored.Count,
		&stored.LastComputedAt, &stored.MarkedPaidAt, &stored.PushSentAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark daily report paid: %w", err)
	}
	return &stored, nil
}

// SetPushSent stamps the push time only when no stamp exists yet. The
// boolean reports whether this caller won the stamp; concurrent dispatch
// ticks for the same user resolve here, on the row, not in process memory.
func (r *ReportRepository) SetPushSent(ctx context.Context, userID int64, dateKey string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE daily_reports
		 SET push_sent_at = $3
		 WHERE user_id = $1 AND date_key = $2 AND push_sent_at IS NULL`,
		userID, dateKey, at,
	)
	if err != nil {
		return false, fmt.Errorf("failed to stamp push sent: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return affected > 0, nil
}
