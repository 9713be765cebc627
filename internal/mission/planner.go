package mission

import (
	"math"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink"
	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/wall"
)

const (
	// DefaultStripeSpacing is the spray swath width, meters.
	DefaultStripeSpacing = 0.4

	// DefaultTolerance is the arrival radius around each waypoint, meters.
	DefaultTolerance = 0.3

	// DefaultGroundClearance is the lowest painting height above ground.
	DefaultGroundClearance = 0.5
)

// Speeds selects traversal speeds per movement class, m/s.
type Speeds struct {
	Vertical    float64
	Lateral     float64
	Positioning float64
}

// DefaultSpeeds returns the speed preset for a pattern: the painting
// direction runs fast, the positioning direction runs slow for precision.
func DefaultSpeeds(p Pattern) Speeds {
	if p == PatternHorizontal {
		return Speeds{Vertical: 0.8, Lateral: 1.2, Positioning: 1.5}
	}
	return Speeds{Vertical: 1.2, Lateral: 0.8, Positioning: 1.5}
}

// PlanOptions tunes the planner. Zero values fall back to defaults.
type PlanOptions struct {
	StripeSpacing   float64
	Tolerance       float64
	GroundClearance float64
	Speeds          Speeds
}

func (o *PlanOptions) setDefaults(p Pattern) {
	if o.StripeSpacing <= 0 {
		o.StripeSpacing = DefaultStripeSpacing
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.GroundClearance <= 0 {
		o.GroundClearance = DefaultGroundClearance
	}
	if o.Speeds == (Speeds{}) {
		o.Speeds = DefaultSpeeds(p)
	}
}

// Generate converts a wall geometry and pattern selection into the ordered
// waypoint sequence covering the full wall rectangle. The origin is the NED
// position of the wall's bottom-left corner at painting standoff, normally
// the vehicle spawn position.
//
// Generate is deterministic and has no side effects.
func Generate(w *wall.Config, origin flightlink.NED, pattern Pattern, opts PlanOptions) (*Sequence, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if !pattern.Valid() {
		return nil, &wall.ConfigError{Field: "pattern", Msg: "must be vertical or horizontal"}
	}

	opts.setDefaults(pattern)

	width, height := w.Dimensions.Width, w.Dimensions.Height
	if opts.StripeSpacing > math.Min(width, height) {
		return nil, &wall.ConfigError{Field: "stripeSpacing", Msg: "exceeds smallest wall extent"}
	}

	switch pattern {
	case PatternVertical:
		return planVertical(width, height, origin, opts), nil
	default:
		return planHorizontal(width, height, origin, opts), nil
	}
}

// planVertical sweeps up/down stripes along the wall width. Stripe i paints
// the vertical line at i*spacing, alternating direction so consecutive
// stripes chain, then shifts sideways to the next stripe. The last stripe's
// band is clamped to end exactly at the wall width; it has no trailing shift.
func planVertical(width, height float64, origin flightlink.NED, opts PlanOptions) *Sequence {
	spacing := opts.StripeSpacing
	stripes := int(math.Ceil(width / spacing))

	bottomZ := origin.Down - opts.GroundClearance
	topZ := origin.Down - height

	waypoints := make([]Waypoint, 0, 2*stripes-1)
	for i := 0; i < stripes; i++ {
		y := origin.East + float64(i)*spacing

		sweep := Waypoint{
			Position:    flightlink.NED{North: origin.North, East: y, Down: topZ},
			TargetSpeed: opts.Speeds.Vertical,
			Phase:       PhaseAscend,
			Stripe:      i,
			Tolerance:   opts.Tolerance,
		}
		if i%2 != 0 {
			sweep.Position.Down = bottomZ
			sweep.Phase = PhaseDescend
		}
		waypoints = append(waypoints, sweep)

		if i == stripes-1 {
			break // final stripe omits the trailing lateral shift
		}

		nextY := origin.East + math.Min(float64(i+1)*spacing, width)
		waypoints = append(waypoints, Waypoint{
			Position:    flightlink.NED{North: origin.North, East: nextY, Down: sweep.Position.Down},
			TargetSpeed: opts.Speeds.Lateral,
			Phase:       PhaseLateral,
			Stripe:      i,
			Tolerance:   opts.Tolerance,
		})
	}

	return &Sequence{
		Waypoints:     waypoints,
		Pattern:       PatternVertical,
		StripeSpacing: spacing,
		StripeCount:   stripes,
	}
}

// planHorizontal sweeps left/right stripes along the wall height. Stripe i
// paints the horizontal line at its stripe height, direction alternating by
// parity, then shifts up by the spacing, clamped so no stripe rises above the
// wall. The final stripe omits the trailing shift.
func planHorizontal(width, height float64, origin flightlink.NED, opts PlanOptions) *Sequence {
	spacing := opts.StripeSpacing
	stripes := int(math.Ceil(height / spacing))

	leftY := origin.East
	rightY := origin.East + width

	stripeZ := func(i int) float64 {
		return origin.Down - math.Min(opts.GroundClearance+float64(i)*spacing, height)
	}

	waypoints := make([]Waypoint, 0, 2*stripes-1)
	for i := 0; i < stripes; i++ {
		z := stripeZ(i)

		sweep := Waypoint{
			Position:    flightlink.NED{North: origin.North, East: rightY, Down: z},
			TargetSpeed: opts.Speeds.Lateral,
			Phase:       PhaseLateral,
			Stripe:      i,
			Tolerance:   opts.Tolerance,
		}
		if i%2 != 0 {
			sweep.Position.East = leftY
		}
		waypoints = append(waypoints, sweep)

		if i == stripes-1 {
			break // final stripe omits the trailing vertical shift
		}

		waypoints = append(waypoints, Waypoint{
			Position:    flightlink.NED{North: origin.North, East: sweep.Position.East, Down: stripeZ(i + 1)},
			TargetSpeed: opts.Speeds.Vertical,
			Phase:       PhaseAscend,
			Stripe:      i,
			Tolerance:   opts.Tolerance,
		})
	}

	return &Sequence{
		Waypoints:     waypoints,
		Pattern:       PatternHorizontal,
		StripeSpacing: spacing,
		StripeCount:   stripes,
	}
}
