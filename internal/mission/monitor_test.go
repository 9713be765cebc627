package mission

import (
	"testing"
	"time"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink"
)

func TestMonitorLatest(t *testing.T) {
	m := NewMonitor(0.2, time.Second)

	if _, ok := m.Latest(); ok {
		t.Fatal("Latest reported a frame before any ingest")
	}

	want := flightlink.Frame{
		Position: flightlink.NED{North: 1, East: 2, Down: -3},
		Battery:  0.9,
		Armed:    true,
	}
	m.Ingest(want)

	got, ok := m.Latest()
	if !ok {
		t.Fatal("Latest reported no frame after ingest")
	}
	if got != want {
		t.Errorf("Latest returned %+v, want %+v", got, want)
	}

	// Newer frames overwrite, no history is retained.
	next := want
	next.Position.Down = -4
	m.Ingest(next)

	if got, _ := m.Latest(); got != next {
		t.Errorf("Latest returned %+v after overwrite, want %+v", got, next)
	}
}

func TestMonitorArrived(t *testing.T) {
	wp := Waypoint{
		Position:  flightlink.NED{North: 0, East: 0, Down: -2},
		Tolerance: 0.3,
	}

	tests := []struct {
		name     string
		position flightlink.NED
		arrived  bool
	}{
		{"at the waypoint", flightlink.NED{Down: -2}, true},
		{"inside tolerance", flightlink.NED{East: 0.2, Down: -2}, true},
		{"exactly on the boundary", flightlink.NED{East: 0.3, Down: -2}, true},
		{"just beyond the boundary", flightlink.NED{East: 0.3 + 1e-9, Down: -2}, false},
		{"far away", flightlink.NED{East: 5, Down: -2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor(0.2, time.Second)
			m.Ingest(flightlink.Frame{Position: tt.position, Battery: 1})

			if got := m.Arrived(wp); got != tt.arrived {
				t.Errorf("Arrived = %v, want %v (distance %g, tolerance %g)",
					got, tt.arrived, tt.position.DistanceTo(wp.Position), wp.Tolerance)
			}
		})
	}
}

func TestMonitorArrivedWithoutTelemetry(t *testing.T) {
	m := NewMonitor(0.2, time.Second)
	if m.Arrived(Waypoint{Tolerance: 100}) {
		t.Error("Arrived must be false before the first telemetry frame")
	}
}

func TestMonitorSafetyCondition(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }

	m := NewMonitor(0.2, 2*time.Second, WithClock(clock))

	if got := m.SafetyCondition(); got != SafetyNone {
		t.Errorf("SafetyCondition before telemetry = %v, want none", got)
	}

	m.Ingest(flightlink.Frame{Battery: 0.9})
	if got := m.SafetyCondition(); got != SafetyNone {
		t.Errorf("SafetyCondition with healthy frame = %v, want none", got)
	}

	m.Ingest(flightlink.Frame{Battery: 0.1})
	if got := m.SafetyCondition(); got != SafetyLowBattery {
		t.Errorf("SafetyCondition with drained battery = %v, want low battery", got)
	}

	// Staleness takes precedence: a stale frame proves nothing about battery.
	m.Ingest(flightlink.Frame{Battery: 0.9})
	now = now.Add(3 * time.Second)
	if got := m.SafetyCondition(); got != SafetyTelemetryLoss {
		t.Errorf("SafetyCondition with stale stream = %v, want telemetry loss", got)
	}
}

func TestSafetyReasonErr(t *testing.T) {
	if SafetyNone.Err() != nil {
		t.Error("SafetyNone.Err() must be nil")
	}
	if SafetyLowBattery.Err() != ErrLowBattery {
		t.Error("SafetyLowBattery.Err() must be ErrLowBattery")
	}
	if SafetyTelemetryLoss.Err() != ErrTelemetryLoss {
		t.Error("SafetyTelemetryLoss.Err() must be ErrTelemetryLoss")
	}
}
