package report

import (
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("failed to load location %s: %v", name, err)
	}
	return loc
}

func TestTransactionDateKey_LocalEvenings(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	late := time.Date(2025, 3, 10, 23, 30, 0, 0, ny)
	early := time.Date(2025, 3, 11, 0, 15, 0, 0, ny)

	lateKey := TransactionDateKey(late, ny)
	earlyKey := TransactionDateKey(early, ny)

	if lateKey != "2025-03-10" {
		t.Errorf("late evening key = %s, want 2025-03-10", lateKey)
	}
	if earlyKey != "2025-03-11" {
		t.Errorf("after midnight key = %s, want 2025-03-11", earlyKey)
	}
	if lateKey == earlyKey {
		t.Error("transactions on different local days must get distinct keys")
	}
}

func TestTransactionDateKey_DateOnlyKeepsUTCDate(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	// A date-only provider value parses to midnight UTC. Reinterpreted in
	// New York that instant is 19:00 or 20:00 the previous evening, which
	// would shift the transaction a day back. The UTC date wins.
	dateOnly := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if got := TransactionDateKey(dateOnly, ny); got != "2025-03-11" {
		t.Errorf("date-only key = %s, want 2025-03-11", got)
	}

	// The same wall-clock value with any time component follows local time.
	timed := time.Date(2025, 3, 11, 0, 0, 1, 0, time.UTC)
	if got := TransactionDateKey(timed, ny); got != "2025-03-10" {
		t.Errorf("timed key = %s, want 2025-03-10", got)
	}
}

func TestBoundsForDateKey(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	start, end, err := BoundsForDateKey("2025-01-09", ny)
	if err != nil {
		t.Fatalf("BoundsForDateKey() error = %v", err)
	}
	wantStart := time.Date(2025, 1, 9, 5, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Errorf("day length = %v, want 24h", got)
	}
}

func TestBoundsForDateKey_DSTSpringForward(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	// March 9 2025 has no 02:00-03:00 hour in New York.
	start, end, err := BoundsForDateKey("2025-03-09", ny)
	if err != nil {
		t.Fatalf("BoundsForDateKey() error = %v", err)
	}
	if got := end.Sub(start); got != 23*time.Hour {
		t.Errorf("spring-forward day length = %v, want 23h", got)
	}
}

func TestBoundsForDateKey_Invalid(t *testing.T) {
	if _, _, err := BoundsForDateKey("not-a-date", time.UTC); err == nil {
		t.Error("expected error for malformed date key")
	}
}

func TestDateKeyAt(t *testing.T) {
	ny := mustLoad(t, "America/New_York")

	// 03:00 UTC on June 2 is still June 1 in New York.
	instant := time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC)
	if got := DateKeyAt(instant, ny); got != "2025-06-01" {
		t.Errorf("DateKeyAt() = %s, want 2025-06-01", got)
	}
	if got := DateKeyAt(instant, time.UTC); got != "2025-06-02" {
		t.Errorf("DateKeyAt() = %s, want 2025-06-02", got)
	}
}
