package mission

import (
	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink"
)

// Phase classifies the movement a waypoint completes.
type Phase int

const (
	// PhaseAscend is a vertical painting pass from bottom to top.
	PhaseAscend Phase = iota

	// PhaseDescend is a vertical painting pass from top to bottom.
	PhaseDescend

	// PhaseLateral is a sideways pass or stripe-to-stripe shift.
	PhaseLateral
)

func (p Phase) String() string {
	switch p {
	case PhaseAscend:
		return "ascend"
	case PhaseDescend:
		return "descend"
	case PhaseLateral:
		return "lateral"
	default:
		return "unknown"
	}
}

// Pattern selects the coverage pattern over the wall.
type Pattern string

const (
	// PatternVertical paints up/down stripes, shifting sideways between them.
	PatternVertical Pattern = "vertical"

	// PatternHorizontal paints left/right stripes, shifting up between them.
	PatternHorizontal Pattern = "horizontal"
)

// Valid reports whether p names a known pattern.
func (p Pattern) Valid() bool {
	return p == PatternVertical || p == PatternHorizontal
}

// Waypoint is one target of the coverage sequence. Immutable once generated.
type Waypoint struct {
	Position    flightlink.NED
	TargetSpeed float64 // m/s
	Phase       Phase
	Stripe      int     // 0-indexed stripe this waypoint belongs to
	Tolerance   float64 // arrival radius, meters
}

// Band is the extent one stripe covers, projected onto the sweep axis.
type Band struct {
	Start float64
	End   float64
}

// Sequence is the ordered waypoint list for one mission, read-only after
// planning.
type Sequence struct {
	Waypoints     []Waypoint
	Pattern       Pattern
	StripeSpacing float64
	StripeCount   int
}

// Bands returns the per-stripe coverage bands on the sweep axis. The final
// band is clamped to the sweep extent so the union is exactly [0, extent].
func (s *Sequence) Bands(extent float64) []Band {
	bands := make([]Band, s.StripeCount)
	for i := range bands {
		bands[i] = Band{
			Start: float64(i) * s.StripeSpacing,
			End:   min(float64(i+1)*s.StripeSpacing, extent),
		}
	}
	return bands
}

// PathLength returns the total distance of the planned path, meters.
func (s *Sequence) PathLength() float64 {
	var total float64
	for i := 1; i < len(s.Waypoints); i++ {
		total += s.Waypoints[i].Position.DistanceTo(s.Waypoints[i-1].Position)
	}
	return total
}
