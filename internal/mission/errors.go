package mission

import "errors"

var (
	// ErrWaypointTimeout is returned when a waypoint is not reached within
	// its per-waypoint budget and the abort-on-timeout policy is active.
	ErrWaypointTimeout = errors.New("waypoint not reached within timeout")

	// ErrTelemetryLoss is returned when no telemetry frame arrives within the
	// configured staleness window.
	ErrTelemetryLoss = errors.New("telemetry stream stale")

	// ErrLowBattery is returned when the battery drops below the configured
	// floor.
	ErrLowBattery = errors.New("battery below safety floor")

	// ErrSafetyAbort wraps the safety condition that forced the mission to
	// return before the sequence was complete.
	ErrSafetyAbort = errors.New("mission aborted by safety trigger")
)

// SafetyReason identifies the safety condition detected by the telemetry
// monitor.
type SafetyReason int

const (
	SafetyNone SafetyReason = iota
	SafetyLowBattery
	SafetyTelemetryLoss
)

func (r SafetyReason) String() string {
	switch r {
	case SafetyLowBattery:
		return "low battery"
	case SafetyTelemetryLoss:
		return "telemetry loss"
	default:
		return "none"
	}
}

// Err returns the sentinel error for the reason, nil for SafetyNone.
func (r SafetyReason) Err() error {
	switch r {
	case SafetyLowBattery:
		return ErrLowBattery
	case SafetyTelemetryLoss:
		return ErrTelemetryLoss
	default:
		return nil
	}
}
