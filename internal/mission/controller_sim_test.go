package mission

import (
	"context"
	"testing"
	"time"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink/sim"
)

// End-to-end mission over the simulated link, wired the way the painter
// binary wires it. The sim enforces the offboard protocol and flies real
// kinematics, so this covers the full CONNECTING..COMPLETED path against a
// link that owns its own lifecycle.
func TestMissionOverSimulatedLink(t *testing.T) {
	link := sim.New(sim.Config{
		TickInterval: time.Millisecond,
		MaxSpeed:     5,
	})
	monitor := NewMonitor(0.2, time.Hour)
	seq := testSequence(t)

	c := NewController(link, monitor, seq, Config{
		TickInterval:    time.Millisecond,
		ConnectTimeout:  2 * time.Second,
		CommandTimeout:  time.Second,
		TakeoffAltitude: 1,
		TakeoffTimeout:  15 * time.Second,
		DwellTime:       10 * time.Millisecond,
		WaypointTimeout: 15 * time.Second,
		HoverTime:       0,
		ReturnTimeout:   15 * time.Second,
		LandTimeout:     15 * time.Second,
	})

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v (final state %s)", err, c.State())
	}

	if got := c.State(); got != StateCompleted {
		t.Errorf("final state %s, want completed", got)
	}

	visited, skipped, total := c.Progress()
	if visited != total || skipped != 0 {
		t.Errorf("visited %d, skipped %d of %d waypoints, want all visited", visited, skipped, total)
	}
}
