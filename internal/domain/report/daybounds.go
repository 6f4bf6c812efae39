package report

import "time"

const dateKeyLayout = "2006-01-02"

// TransactionDateKey returns the calendar date a transaction belongs to, as
// "2006-01-02". Instants at exactly midnight UTC came from date-only provider
// values and keep their UTC date regardless of the user's timezone; anything
// with a real time of day is bucketed by the user's local calendar.
func TransactionDateKey(date time.Time, loc *time.Location) string {
	utc := date.UTC()
	if utc.Hour() == 0 && utc.Minute() == 0 && utc.Second() == 0 && utc.Nanosecond() == 0 {
		return utc.Format(dateKeyLayout)
	}
	return date.In(loc).Format(dateKeyLayout)
}

// DateKeyAt returns the date key for an instant in the user's timezone.
// Used to decide which calendar day "now" falls on.
func DateKeyAt(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(dateKeyLayout)
}

// BoundsForDateKey returns the half-open UTC interval [start, end) covering
// the local calendar day named by key. DST transitions are handled by the
// location itself, so a 23- or 25-hour day comes out naturally.
func BoundsForDateKey(key string, loc *time.Location) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(dateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := d
	end := d.AddDate(0, 0, 1)
	return start.UTC(), end.UTC(), nil
}
