package mission

import "time"

// State is the mission state machine state. Exactly one state is active at a
// time; the control loop is the sole writer.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateArming
	StateTakingOff
	StateOffboardStarting
	StateExecuting
	StateReturning
	StateLanding
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateArming:
		return "arming"
	case StateTakingOff:
		return "taking_off"
	case StateOffboardStarting:
		return "offboard_starting"
	case StateExecuting:
		return "executing"
	case StateReturning:
		return "returning"
	case StateLanding:
		return "landing"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends the mission.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

// Transition records one state change and the reason it happened.
type Transition struct {
	From   State
	To     State
	Reason string
	At     time.Time
}
