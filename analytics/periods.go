package analytics

import (
	"github.com/FlapTrack/flaptrack-go/models"
)

// FilterValid returns the events usable for period reconstruction and
// entry/exit counting, preserving order. Events with the invalid direction
// sentinel are kept out here but remain in the display and prey views.
func FilterValid(events []models.PresenceEvent) []models.PresenceEvent {
	valid := make([]models.PresenceEvent, 0, len(events))
	for _, ev := range events {
		if ev.IsValid() {
			valid = append(valid, ev)
		}
	}
	return valid
}

// BuildPeriods converts an ordered valid-event sequence of length N into N-1
// presence periods, one per adjacent pair. A pure stateless scan: no lookahead
// past the immediate neighbor, no smoothing, no outlier rejection. Repeated
// same-direction events produce unknown periods; that is signal, not an error.
func BuildPeriods(validEvents []models.PresenceEvent) []models.Period {
	periods := make([]models.Period, 0)
	if len(validEvents) < 2 {
		return periods
	}

	for i := 0; i+1 < len(validEvents); i++ {
		first := validEvents[i]
		second := validEvents[i+1]

		state := models.StateUnknown
		switch {
		case first.Direction == models.DirectionIn && second.Direction == models.DirectionOut:
			state = models.StateInside
		case first.Direction == models.DirectionOut && second.Direction == models.DirectionIn:
			state = models.StateOutside
		}

		periods = append(periods, models.Period{
			Start:         first.Timestamp,
			End:           second.Timestamp,
			State:         state,
			DurationHours: second.Timestamp.Sub(first.Timestamp).Hours(),
		})
	}

	return periods
}
