package mission

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink"
	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/wall"
)

func paintWall(width, height float64) *wall.Config {
	return &wall.Config{
		Dimensions: wall.Dimensions{Width: width, Height: height, Thickness: 0.2},
	}
}

func TestGenerateVerticalStripeCount(t *testing.T) {
	tests := []struct {
		name    string
		width   float64
		spacing float64
		stripes int
	}{
		{"15m wall at 0.4m spacing", 15, 0.4, 38},
		{"exact multiple", 2, 0.5, 4},
		{"just over a multiple", 2.1, 0.5, 5},
		{"single stripe", 0.4, 0.4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := Generate(paintWall(tt.width, 5), flightlink.NED{}, PatternVertical, PlanOptions{
				StripeSpacing: tt.spacing,
			})
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			if want := int(math.Ceil(tt.width / tt.spacing)); seq.StripeCount != want || seq.StripeCount != tt.stripes {
				t.Errorf("expected %d stripes, got %d", tt.stripes, seq.StripeCount)
			}
			if got := len(seq.Waypoints); got != 2*seq.StripeCount-1 {
				t.Errorf("expected %d waypoints (one sweep per stripe plus shifts), got %d", 2*seq.StripeCount-1, got)
			}
		})
	}
}

func TestGenerateHorizontalStripeCount(t *testing.T) {
	seq, err := Generate(paintWall(15, 5), flightlink.NED{}, PatternHorizontal, PlanOptions{StripeSpacing: 0.4})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if seq.StripeCount != 13 {
		t.Errorf("expected 13 stripes for height=5 spacing=0.4, got %d", seq.StripeCount)
	}
	if got := len(seq.Waypoints); got != 25 {
		t.Errorf("expected 25 waypoints (2 per stripe minus the final shift), got %d", got)
	}
}

func TestGenerateCoverageBands(t *testing.T) {
	// Bands must union to exactly [0, extent]: contiguous, starting at zero,
	// final band clamped to end exactly at the extent.
	tests := []struct {
		name    string
		width   float64
		spacing float64
	}{
		{"non-multiple", 15, 0.4},
		{"exact multiple", 12, 0.4},
		{"coarse", 5, 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := Generate(paintWall(tt.width, 5), flightlink.NED{}, PatternVertical, PlanOptions{
				StripeSpacing: tt.spacing,
			})
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			bands := seq.Bands(tt.width)
			if len(bands) != seq.StripeCount {
				t.Fatalf("expected %d bands, got %d", seq.StripeCount, len(bands))
			}

			if bands[0].Start != 0 {
				t.Errorf("first band starts at %g, want 0", bands[0].Start)
			}
			for i := 1; i < len(bands); i++ {
				if bands[i].Start != bands[i-1].End {
					t.Errorf("gap between band %d (end %g) and band %d (start %g)",
						i-1, bands[i-1].End, i, bands[i].Start)
				}
			}

			last := bands[len(bands)-1]
			if last.End != tt.width {
				t.Errorf("last band ends at %g, want exactly %g", last.End, tt.width)
			}
			if last.Start > tt.width {
				t.Errorf("last band starts beyond the wall: %g > %g", last.Start, tt.width)
			}
		})
	}
}

func TestGenerateVerticalWaypointBounds(t *testing.T) {
	const width, height = 15.0, 5.0

	origin := flightlink.NED{North: -1.6, East: -0.5}
	seq, err := Generate(paintWall(width, height), origin, PatternVertical, PlanOptions{StripeSpacing: 0.4})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i, wp := range seq.Waypoints {
		sweep := wp.Position.East - origin.East
		if sweep < 0 || sweep > width {
			t.Errorf("waypoint %d: sweep axis coordinate %g outside [0, %g]", i, sweep, width)
		}

		alt := origin.Down - wp.Position.Down
		if alt < DefaultGroundClearance-1e-9 || alt > height+1e-9 {
			t.Errorf("waypoint %d: height %g outside [%g, %g]", i, alt, DefaultGroundClearance, height)
		}

		if wp.Position.North != origin.North {
			t.Errorf("waypoint %d: drifted off the wall standoff plane: %g", i, wp.Position.North)
		}
	}
}

func TestGenerateVerticalSerpentine(t *testing.T) {
	seq, err := Generate(paintWall(2, 5), flightlink.NED{}, PatternVertical, PlanOptions{StripeSpacing: 0.5})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// 4 stripes: ascend, shift, descend, shift, ascend, shift, descend.
	wantPhases := []Phase{PhaseAscend, PhaseLateral, PhaseDescend, PhaseLateral, PhaseAscend, PhaseLateral, PhaseDescend}
	if len(seq.Waypoints) != len(wantPhases) {
		t.Fatalf("expected %d waypoints, got %d", len(wantPhases), len(seq.Waypoints))
	}

	for i, wp := range seq.Waypoints {
		if wp.Phase != wantPhases[i] {
			t.Errorf("waypoint %d: phase %s, want %s", i, wp.Phase, wantPhases[i])
		}
	}

	// Consecutive stripes chain: each lateral shift stays at the height the
	// previous sweep ended on.
	for i := 1; i < len(seq.Waypoints); i += 2 {
		if seq.Waypoints[i].Position.Down != seq.Waypoints[i-1].Position.Down {
			t.Errorf("shift %d changes height mid-stripe: %g != %g",
				i, seq.Waypoints[i].Position.Down, seq.Waypoints[i-1].Position.Down)
		}
	}
}

func TestGenerateHorizontalAlternatesDirection(t *testing.T) {
	const width = 3.0

	seq, err := Generate(paintWall(width, 2), flightlink.NED{}, PatternHorizontal, PlanOptions{StripeSpacing: 0.5})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var sweeps []Waypoint
	for _, wp := range seq.Waypoints {
		if wp.Phase == PhaseLateral {
			sweeps = append(sweeps, wp)
		}
	}
	if len(sweeps) != seq.StripeCount {
		t.Fatalf("expected %d lateral sweeps, got %d", seq.StripeCount, len(sweeps))
	}

	for i, wp := range sweeps {
		want := width // even stripes sweep to the right edge
		if i%2 != 0 {
			want = 0 // odd stripes sweep back to the left edge
		}
		if wp.Position.East != want {
			t.Errorf("sweep %d ends at east %g, want %g", i, wp.Position.East, want)
		}
	}
}

func TestGenerateSpeedsAndTolerance(t *testing.T) {
	seq, err := Generate(paintWall(15, 5), flightlink.NED{}, PatternVertical, PlanOptions{StripeSpacing: 0.4})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i, wp := range seq.Waypoints {
		if wp.Tolerance != DefaultTolerance {
			t.Errorf("waypoint %d: tolerance %g, want %g", i, wp.Tolerance, DefaultTolerance)
		}

		switch wp.Phase {
		case PhaseAscend, PhaseDescend:
			if wp.TargetSpeed != 1.2 {
				t.Errorf("waypoint %d: painting speed %g, want 1.2", i, wp.TargetSpeed)
			}
		case PhaseLateral:
			if wp.TargetSpeed != 0.8 {
				t.Errorf("waypoint %d: shift speed %g, want 0.8", i, wp.TargetSpeed)
			}
		}
	}
}

func TestGenerateToleranceOverride(t *testing.T) {
	seq, err := Generate(paintWall(15, 5), flightlink.NED{}, PatternVertical, PlanOptions{
		StripeSpacing: 0.4,
		Tolerance:     0.1,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i, wp := range seq.Waypoints {
		if wp.Tolerance != 0.1 {
			t.Errorf("waypoint %d: tolerance %g, want 0.1", i, wp.Tolerance)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	for _, pattern := range []Pattern{PatternVertical, PatternHorizontal} {
		a, err := Generate(paintWall(15, 5), flightlink.NED{North: 1, East: 2, Down: -0.5}, pattern, PlanOptions{StripeSpacing: 0.4})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		b, err := Generate(paintWall(15, 5), flightlink.NED{North: 1, East: 2, Down: -0.5}, pattern, PlanOptions{StripeSpacing: 0.4})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: identical inputs produced different sequences", pattern)
		}
	}
}

func TestGenerateInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		wall    *wall.Config
		pattern Pattern
		opts    PlanOptions
	}{
		{"zero width", paintWall(0, 5), PatternVertical, PlanOptions{}},
		{"negative height", paintWall(15, -5), PatternVertical, PlanOptions{}},
		{"spacing exceeds extent", paintWall(15, 5), PatternVertical, PlanOptions{StripeSpacing: 6}},
		{"unknown pattern", paintWall(15, 5), Pattern("diagonal"), PlanOptions{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.wall, flightlink.NED{}, tt.pattern, tt.opts)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var cfgErr *wall.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected *wall.ConfigError, got %T: %v", err, err)
			}
		})
	}
}
