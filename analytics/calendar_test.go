package analytics

import (
	"math"
	"testing"
	"time"
)

const hoursTolerance = 1e-9

func TestSplitByDaySingleBucket(t *testing.T) {
	t.Parallel()

	s := NewSplitter(0)
	start := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	shares := s.SplitByDay(start, start.Add(4*time.Hour))

	if len(shares) != 1 {
		t.Fatalf("expected 1 share, got %d", len(shares))
	}
	if shares[0].Day != "2025-01-15" {
		t.Errorf("expected day 2025-01-15, got %s", shares[0].Day)
	}
	if math.Abs(shares[0].Hours-4.0) > hoursTolerance {
		t.Errorf("expected 4.0 hours, got %f", shares[0].Hours)
	}
}

func TestSplitByDayAcrossMidnight(t *testing.T) {
	t.Parallel()

	s := NewSplitter(0)
	start := time.Date(2025, 1, 15, 22, 0, 0, 0, time.UTC)
	shares := s.SplitByDay(start, start.Add(5*time.Hour))

	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}
	if shares[0].Day != "2025-01-15" || math.Abs(shares[0].Hours-2.0) > hoursTolerance {
		t.Errorf("share 0 wrong: %s %f", shares[0].Day, shares[0].Hours)
	}
	if shares[1].Day != "2025-01-16" || math.Abs(shares[1].Hours-3.0) > hoursTolerance {
		t.Errorf("share 1 wrong: %s %f", shares[1].Day, shares[1].Hours)
	}
}

// With a +1h offset, 23:00Z-02:00Z falls entirely after local midnight and
// belongs to the following local day.
func TestSplitByDayFixedOffsetShiftsBoundary(t *testing.T) {
	t.Parallel()

	s := NewSplitter(1)
	start := time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 2, 2, 0, 0, 0, time.UTC)
	shares := s.SplitByDay(start, end)

	if len(shares) != 1 {
		t.Fatalf("expected 1 share, got %d", len(shares))
	}
	if shares[0].Day != "2025-01-02" {
		t.Errorf("expected local day 2025-01-02, got %s", shares[0].Day)
	}
	if math.Abs(shares[0].Hours-3.0) > hoursTolerance {
		t.Errorf("expected 3.0 hours, got %f", shares[0].Hours)
	}
}

func TestSplitByDayManyBucketsConserveDuration(t *testing.T) {
	t.Parallel()

	s := NewSplitter(2)
	start := time.Date(2025, 1, 10, 7, 30, 0, 0, time.UTC)
	end := start.Add(100 * time.Hour)
	shares := s.SplitByDay(start, end)

	if len(shares) != 5 {
		t.Fatalf("expected 5 day buckets, got %d", len(shares))
	}
	var total float64
	for _, share := range shares {
		if share.Hours <= 0 {
			t.Errorf("bucket %s has non-positive hours %f", share.Day, share.Hours)
		}
		total += share.Hours
	}
	if math.Abs(total-100.0) > hoursTolerance {
		t.Errorf("hours not conserved: got %f", total)
	}
}

func TestSplitByDayZeroLengthInterval(t *testing.T) {
	t.Parallel()

	s := NewSplitter(1)
	at := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	if shares := s.SplitByDay(at, at); len(shares) != 0 {
		t.Errorf("zero-length interval: expected no shares, got %d", len(shares))
	}
	if shares := s.SplitByHour(at, at); len(shares) != 0 {
		t.Errorf("zero-length interval: expected no hour shares, got %d", len(shares))
	}
	if shares := s.SplitByMonth(at, at); len(shares) != 0 {
		t.Errorf("zero-length interval: expected no month shares, got %d", len(shares))
	}
}

func TestSplitByHourPartialBuckets(t *testing.T) {
	t.Parallel()

	s := NewSplitter(0)
	start := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	shares := s.SplitByHour(start, start.Add(time.Hour))

	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}
	if shares[0].Hour != 9 || math.Abs(shares[0].Hours-0.5) > hoursTolerance {
		t.Errorf("share 0 wrong: hour %d, %f", shares[0].Hour, shares[0].Hours)
	}
	if shares[1].Hour != 10 || math.Abs(shares[1].Hours-0.5) > hoursTolerance {
		t.Errorf("share 1 wrong: hour %d, %f", shares[1].Hour, shares[1].Hours)
	}
}

func TestSplitByHourAppliesOffset(t *testing.T) {
	t.Parallel()

	s := NewSplitter(2)
	start := time.Date(2025, 1, 15, 22, 0, 0, 0, time.UTC) // 00:00 local
	shares := s.SplitByHour(start, start.Add(time.Hour))

	if len(shares) != 1 {
		t.Fatalf("expected 1 share, got %d", len(shares))
	}
	if shares[0].Hour != 0 {
		t.Errorf("expected local hour 0, got %d", shares[0].Hour)
	}
}

func TestSplitByMonthAcrossBoundary(t *testing.T) {
	t.Parallel()

	s := NewSplitter(0)
	start := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	shares := s.SplitByMonth(start, end)

	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}
	if shares[0].Month != "2025-01" || shares[0].MonthOfYear != 1 {
		t.Errorf("share 0 wrong: %s (%d)", shares[0].Month, shares[0].MonthOfYear)
	}
	if shares[1].Month != "2025-02" || shares[1].MonthOfYear != 2 {
		t.Errorf("share 1 wrong: %s (%d)", shares[1].Month, shares[1].MonthOfYear)
	}
	if math.Abs(shares[0].Hours-12.0) > hoursTolerance || math.Abs(shares[1].Hours-12.0) > hoursTolerance {
		t.Errorf("expected 12h each side, got %f / %f", shares[0].Hours, shares[1].Hours)
	}
}

func TestDayKeysInRange(t *testing.T) {
	t.Parallel()

	keys, err := DayKeysInRange("2025-02-27", "2025-03-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %s, got %s", i, want[i], keys[i])
		}
	}
}

func TestDayKeysInRangeRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := DayKeysInRange("not-a-date", "2025-03-02"); err == nil {
		t.Error("expected error for malformed from date")
	}
	if _, err := DayKeysInRange("2025-03-02", "2025-03-01"); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestMonthKeysInRange(t *testing.T) {
	t.Parallel()

	keys, err := MonthKeysInRange("2024-11-15", "2025-01-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2024-11", "2024-12", "2025-01"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %s, got %s", i, want[i], keys[i])
		}
	}
}

func TestRangeBounds(t *testing.T) {
	t.Parallel()

	s := NewSplitter(1)
	start, end, err := s.RangeBounds("2025-01-01", "2025-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStart := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, start)
	}
	wantEnd := time.Date(2025, 1, 1, 22, 59, 59, 999000000, time.UTC)
	if !end.Equal(wantEnd) {
		t.Errorf("expected end %v, got %v", wantEnd, end)
	}
}
