// Package models defines the canonical event and period records for FlapTrack.
package models

import "time"

// Direction classifies a flap event as an entry, an exit, or unreadable.
type Direction string

const (
	DirectionIn      Direction = "in"
	DirectionOut     Direction = "out"
	DirectionInvalid Direction = "invalid"
)

// PresenceState is the inferred state between two consecutive valid events.
type PresenceState string

const (
	StateInside  PresenceState = "inside"
	StateOutside PresenceState = "outside"
	StateUnknown PresenceState = "unknown"
)

// PresenceEvent is one observed pass through the flap. Events are immutable
// once stored; only a rescan pass may overwrite Direction, Confidence, Prey
// and RawText for an existing ID, never ID or Timestamp.
type PresenceEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"` // UTC
	Direction Direction `json:"direction"`
	// Classifier confidence in [0,1]; advisory only, never used in aggregation
	Confidence float64 `json:"confidence"`
	// Prey is the secondary observation, orthogonal to direction
	Prey     bool   `json:"prey"`
	RawText  string `json:"rawText,omitempty"`
	ImageRef string `json:"imageRef,omitempty"`
}

// IsValid reports whether the event carries a usable direction.
func (e PresenceEvent) IsValid() bool {
	return e.Direction == DirectionIn || e.Direction == DirectionOut
}

// Period is the closed interval between two consecutive valid events with the
// presence state inferred from their directions. Periods are recomputed from
// the event snapshot on every report request and never persisted.
type Period struct {
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	State         PresenceState `json:"state"`
	DurationHours float64       `json:"durationHours"`
}
