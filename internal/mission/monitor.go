package mission

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink"
)

const (
	// DefaultBatteryFloor is the charge fraction below which the mission
	// returns.
	DefaultBatteryFloor = 0.2

	// DefaultStaleAfter is the telemetry-loss window.
	DefaultStaleAfter = 2 * time.Second
)

// WithClock overrides the monitor's time source. Tests use it to control the
// staleness window.
func WithClock(now func() time.Time) func(*Monitor) {
	return func(m *Monitor) {
		m.now = now
	}
}

// Monitor consumes the flight link telemetry stream and derives the arrival
// and safety predicates the control loop polls every tick.
//
// The ingest goroutine is the single writer of the latest-frame slot; any
// number of readers see the most recent value without blocking.
type Monitor struct {
	batteryFloor float64
	staleAfter   time.Duration
	now          func() time.Time

	frame      atomic.Pointer[flightlink.Frame]
	receivedAt atomic.Int64 // unix nanos of last ingest
}

// NewMonitor creates a Monitor. Non-positive batteryFloor or staleAfter fall
// back to defaults.
func NewMonitor(batteryFloor float64, staleAfter time.Duration, options ...func(*Monitor)) *Monitor {
	if batteryFloor <= 0 {
		batteryFloor = DefaultBatteryFloor
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	m := Monitor{
		batteryFloor: batteryFloor,
		staleAfter:   staleAfter,
		now:          time.Now,
	}

	for _, option := range options {
		option(&m)
	}

	return &m
}

// Run consumes frames until the channel closes or ctx is done. It is meant to
// run as a goroutine alongside the control loop.
func (m *Monitor) Run(ctx context.Context, frames <-chan flightlink.Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			m.Ingest(f)
		}
	}
}

// Ingest overwrites the latest-frame slot. Single writer.
func (m *Monitor) Ingest(f flightlink.Frame) {
	m.frame.Store(&f)
	m.receivedAt.Store(m.now().UnixNano())
}

// Latest returns the most recent telemetry frame. ok is false before the
// first frame arrives.
func (m *Monitor) Latest() (f flightlink.Frame, ok bool) {
	p := m.frame.Load()
	if p == nil {
		return flightlink.Frame{}, false
	}
	return *p, true
}

// Arrived reports whether the vehicle is within the waypoint's tolerance,
// boundary inclusive. It is false before the first telemetry frame.
func (m *Monitor) Arrived(wp Waypoint) bool {
	f, ok := m.Latest()
	if !ok {
		return false
	}
	return f.Position.DistanceTo(wp.Position) <= wp.Tolerance
}

// SafetyCondition evaluates the safety predicates against the latest frame.
// It never blocks. Telemetry loss takes precedence over battery state since a
// stale frame cannot prove the battery is healthy.
func (m *Monitor) SafetyCondition() SafetyReason {
	p := m.frame.Load()
	if p == nil {
		return SafetyNone // CONNECTING handles the no-telemetry-yet case
	}

	if m.now().Sub(time.Unix(0, m.receivedAt.Load())) > m.staleAfter {
		return SafetyTelemetryLoss
	}
	if p.Battery < m.batteryFloor {
		return SafetyLowBattery
	}
	return SafetyNone
}
