package analytics

import (
	"testing"
	"time"

	"github.com/FlapTrack/flaptrack-go/models"
)

func mkEvent(id string, ts time.Time, dir models.Direction) models.PresenceEvent {
	return models.PresenceEvent{ID: id, Timestamp: ts, Direction: dir, Confidence: 0.9}
}

func TestBuildPeriodsAlternatingDirections(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Hour)
	t3 := t2.Add(3 * time.Hour)

	periods := BuildPeriods([]models.PresenceEvent{
		mkEvent("a", t1, models.DirectionIn),
		mkEvent("b", t2, models.DirectionOut),
		mkEvent("c", t3, models.DirectionIn),
	})

	if len(periods) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(periods))
	}
	if periods[0].State != models.StateInside {
		t.Errorf("period 0: expected inside, got %s", periods[0].State)
	}
	if periods[1].State != models.StateOutside {
		t.Errorf("period 1: expected outside, got %s", periods[1].State)
	}
	if !periods[0].Start.Equal(t1) || !periods[0].End.Equal(t2) {
		t.Errorf("period 0 bounds wrong: %v - %v", periods[0].Start, periods[0].End)
	}
	if periods[0].DurationHours != 2.0 {
		t.Errorf("period 0 duration: expected 2.0, got %f", periods[0].DurationHours)
	}
	if periods[1].DurationHours != 3.0 {
		t.Errorf("period 1 duration: expected 3.0, got %f", periods[1].DurationHours)
	}
}

func TestBuildPeriodsRepeatedDirectionIsUnknown(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	cases := []struct {
		name string
		dir  models.Direction
	}{
		{"repeated in", models.DirectionIn},
		{"repeated out", models.DirectionOut},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			periods := BuildPeriods([]models.PresenceEvent{
				mkEvent("a", t1, tc.dir),
				mkEvent("b", t2, tc.dir),
			})
			if len(periods) != 1 {
				t.Fatalf("expected 1 period, got %d", len(periods))
			}
			if periods[0].State != models.StateUnknown {
				t.Errorf("expected unknown, got %s", periods[0].State)
			}
		})
	}
}

func TestBuildPeriodsFewerThanTwoEvents(t *testing.T) {
	t.Parallel()

	if got := BuildPeriods(nil); len(got) != 0 {
		t.Errorf("empty input: expected 0 periods, got %d", len(got))
	}

	single := []models.PresenceEvent{
		mkEvent("a", time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), models.DirectionIn),
	}
	if got := BuildPeriods(single); len(got) != 0 {
		t.Errorf("single event: expected 0 periods, got %d", len(got))
	}
}

func TestBuildPeriodsSameTimestampZeroDuration(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	periods := BuildPeriods([]models.PresenceEvent{
		mkEvent("a", ts, models.DirectionIn),
		mkEvent("b", ts, models.DirectionOut),
	})
	if len(periods) != 1 {
		t.Fatalf("expected 1 period, got %d", len(periods))
	}
	if periods[0].DurationHours != 0 {
		t.Errorf("expected zero duration, got %f", periods[0].DurationHours)
	}
}

func TestFilterValidDropsInvalidOnly(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	events := []models.PresenceEvent{
		mkEvent("a", t1, models.DirectionIn),
		mkEvent("b", t1.Add(time.Hour), models.DirectionInvalid),
		mkEvent("c", t1.Add(2*time.Hour), models.DirectionOut),
	}

	valid := FilterValid(events)
	if len(valid) != 2 {
		t.Fatalf("expected 2 valid events, got %d", len(valid))
	}
	if valid[0].ID != "a" || valid[1].ID != "c" {
		t.Errorf("wrong events kept: %s, %s", valid[0].ID, valid[1].ID)
	}
}
