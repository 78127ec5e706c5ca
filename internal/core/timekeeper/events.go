package timekeeper

import "time"

// State represents the current phase of the timer.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateResting   State = "resting"
)

// Label returns the human readable phase name.
func (state State) Label() string {
	switch state {
	case StateRecording:
		return "Recording"
	case StateResting:
		return "Resting"
	default:
		return "Ready"
	}
}

// EventType defines the type of Keeper event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
)

// Event represents a Keeper update for observers.
type Event struct {
	Type      EventType
	State     State
	Previous  State
	Remaining time.Duration
	Progress  float64
	At        time.Time
}

// Status is a point-in-time view of the timer.
type Status struct {
	State         State
	Remaining     time.Duration
	PhaseDuration time.Duration
	// Progress is Remaining / PhaseDuration, zero while idle.
	Progress float64
}
