package mission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink"
)

const (
	defaultTickInterval   = 100 * time.Millisecond // offboard keep-alive rate
	defaultConnectTimeout = 10 * time.Second
	defaultCommandTimeout = 5 * time.Second
	defaultCommandRetries = 3
	defaultTakeoffAlt     = 2.0
	defaultTakeoffTimeout = 30 * time.Second
	defaultDwellTime      = time.Second
	defaultPrimeSetpoints = 10
	defaultWaypointBudget = 30 * time.Second
	defaultHoverTime      = 1500 * time.Millisecond
	defaultReturnTimeout  = 60 * time.Second
	defaultLandTimeout    = 30 * time.Second
	defaultPositioning    = 1.5

	// slowdownRadius is the distance at which the approach starts braking.
	slowdownRadius = 2.0
	// minSlowdown floors the braking factor so the vehicle keeps closing in.
	minSlowdown = 0.3
	// componentCap limits each velocity component to a fraction of the
	// commanded speed to prevent overshoot on axis-aligned moves.
	componentCap = 0.8
)

// Config tunes the mission control loop. Zero values fall back to defaults;
// AbortOnTimeout false keeps the skip-and-continue waypoint policy.
type Config struct {
	Endpoint string

	// TickInterval is the control loop period and the setpoint keep-alive
	// rate.
	TickInterval time.Duration

	ConnectTimeout time.Duration
	CommandTimeout time.Duration

	// ArmRetries and OffboardRetries are the command retry budgets. A
	// rejection beyond the budget aborts the mission.
	ArmRetries      int
	OffboardRetries int

	TakeoffAltitude float64
	TakeoffTimeout  time.Duration

	// DwellTime is how long the altitude must hold within tolerance before
	// takeoff counts as complete.
	DwellTime time.Duration

	// PrimeSetpoints is the number of setpoints streamed at the current
	// position before the offboard mode switch is requested.
	PrimeSetpoints int

	WaypointTimeout time.Duration

	// AbortOnTimeout aborts the mission when a waypoint times out instead of
	// skipping it.
	AbortOnTimeout bool

	// HoverTime is the dwell at each reached waypoint.
	HoverTime time.Duration

	ReturnTimeout time.Duration
	LandTimeout   time.Duration

	// PositioningSpeed is used for non-painting transit, m/s.
	PositioningSpeed float64

	// Tolerance is the arrival radius for takeoff and the return leg.
	Tolerance float64
}

func (c *Config) setDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTickInterval
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = defaultCommandTimeout
	}
	if c.ArmRetries <= 0 {
		c.ArmRetries = defaultCommandRetries
	}
	if c.OffboardRetries <= 0 {
		c.OffboardRetries = defaultCommandRetries
	}
	if c.TakeoffAltitude <= 0 {
		c.TakeoffAltitude = defaultTakeoffAlt
	}
	if c.TakeoffTimeout <= 0 {
		c.TakeoffTimeout = defaultTakeoffTimeout
	}
	if c.DwellTime < 0 {
		c.DwellTime = defaultDwellTime
	}
	if c.PrimeSetpoints <= 0 {
		c.PrimeSetpoints = defaultPrimeSetpoints
	}
	if c.WaypointTimeout <= 0 {
		c.WaypointTimeout = defaultWaypointBudget
	}
	if c.HoverTime < 0 {
		c.HoverTime = defaultHoverTime
	}
	if c.ReturnTimeout <= 0 {
		c.ReturnTimeout = defaultReturnTimeout
	}
	if c.LandTimeout <= 0 {
		c.LandTimeout = defaultLandTimeout
	}
	if c.PositioningSpeed <= 0 {
		c.PositioningSpeed = defaultPositioning
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
}

// WithLogger sets the logger for the controller.
func WithLogger(logger *slog.Logger) func(*Controller) {
	return func(c *Controller) {
		c.logger = logger.With(slog.String("component", "mission"))
	}
}

// WithTransitionHook registers a callback invoked on every state transition,
// after it is logged. Hooks run on the control loop goroutine and must not
// block.
func WithTransitionHook(fn func(Transition)) func(*Controller) {
	return func(c *Controller) {
		c.hooks = append(c.hooks, fn)
	}
}

// Controller drives one mission through the flight link: arming, takeoff,
// offboard entry, waypoint execution, return and landing. The control loop is
// the sole writer of the mission state and the sole issuer of link commands.
type Controller struct {
	link    flightlink.Link
	monitor *Monitor
	seq     *Sequence
	cfg     Config

	logger *slog.Logger
	hooks  []func(Transition)

	mu      sync.Mutex
	state   State
	visited int
	skipped int

	takeoffPos flightlink.NED
}

// NewController creates a Controller with a discard logger.
func NewController(link flightlink.Link, monitor *Monitor, seq *Sequence, cfg Config, options ...func(*Controller)) *Controller {
	cfg.setDefaults()

	c := Controller{
		link:    link,
		monitor: monitor,
		seq:     seq,
		cfg:     cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
		state:   StateIdle,
	}

	for _, option := range options {
		option(&c)
	}

	return &c
}

// State returns the current mission state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Progress returns the number of visited and skipped waypoints and the
// sequence length.
func (c *Controller) Progress() (visited, skipped, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visited, c.skipped, len(c.seq.Waypoints)
}

// Run executes the mission to a terminal state. A cancelled ctx does not
// leave the vehicle mid-maneuver: the loop still proceeds through the return
// and landing phases before Run returns. The returned error is nil only when
// the mission reached COMPLETED.
func (c *Controller) Run(ctx context.Context) error {
	if s := c.State(); s != StateIdle {
		return fmt.Errorf("mission already run (state %s)", s)
	}

	c.transition(StateConnecting, "opening flight link")
	if err := c.connect(ctx); err != nil {
		c.link.Close()
		c.transition(StateAborted, err.Error())
		return err
	}
	defer c.link.Close()

	c.transition(StateArming, "telemetry acquired")
	if err := c.command(ctx, "arm", c.cfg.ArmRetries, c.link.Arm); err != nil {
		c.transition(StateAborted, err.Error())
		return err
	}

	c.transition(StateTakingOff, "arm acknowledged")
	if err := c.takeoff(ctx); err != nil {
		return c.abortAirborne(err)
	}

	c.transition(StateOffboardStarting, "takeoff altitude held")
	if err := c.startOffboard(ctx); err != nil {
		return c.abortAirborne(err)
	}

	c.transition(StateExecuting, "offboard mode active")
	execErr := c.execute(ctx)

	reason := "sequence exhausted"
	if execErr != nil {
		reason = execErr.Error()
	}
	c.transition(StateReturning, reason)
	c.returnToTakeoff()

	c.transition(StateLanding, "above takeoff position")
	c.land()

	if execErr != nil {
		c.transition(StateAborted, execErr.Error())
		return execErr
	}

	c.transition(StateCompleted, "disarm confirmed")
	return nil
}

// transition is the only mutation of the mission state.
func (c *Controller) transition(to State, reason string) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	t := Transition{From: from, To: to, Reason: reason, At: time.Now().UTC()}

	c.logger.Info("state transition",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
		slog.String("reason", reason),
	)

	for _, hook := range c.hooks {
		hook(t)
	}
}

// connect opens the link and waits for the first valid telemetry frame.
func (c *Controller) connect(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	if err := c.link.Connect(connectCtx, c.cfg.Endpoint); err != nil {
		if errors.Is(err, flightlink.ErrConnection) {
			return err
		}
		return fmt.Errorf("%w: %w", flightlink.ErrConnection, err)
	}

	// The monitor goroutine exits when the link closes its frame channel. It
	// deliberately ignores ctx so telemetry keeps flowing through the landing
	// phases after an external abort.
	go c.monitor.Run(context.Background(), c.link.Telemetry())

	deadline := time.Now().Add(c.cfg.ConnectTimeout)
	for time.Now().Before(deadline) {
		if _, ok := c.monitor.Latest(); ok {
			return nil
		}
		if err := c.sleep(ctx); err != nil {
			return fmt.Errorf("%w: %w", flightlink.ErrConnection, err)
		}
	}
	return fmt.Errorf("%w: no telemetry within %s", flightlink.ErrConnection, c.cfg.ConnectTimeout)
}

// command issues fn with a per-attempt timeout and a fixed retry budget.
// Only rejections are retried; other failures surface immediately.
func (c *Controller) command(ctx context.Context, name string, budget int, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= budget; attempt++ {
		cmdCtx, cancel := context.WithTimeout(ctx, c.cfg.CommandTimeout)
		err = fn(cmdCtx)
		cancel()

		if err == nil {
			return nil
		}
		if !errors.Is(err, flightlink.ErrCommandRejected) {
			return fmt.Errorf("%s: %w", name, err)
		}

		c.logger.Warn("command rejected",
			slog.String("command", name),
			slog.Int("attempt", attempt),
			slog.Int("budget", budget),
		)

		if sleepErr := c.sleep(ctx); sleepErr != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return fmt.Errorf("%s rejected after %d attempts: %w", name, budget, err)
}

// takeoff commands the climb and waits for the altitude to hold within
// tolerance for the dwell period.
func (c *Controller) takeoff(ctx context.Context) error {
	cmdCtx, cancel := context.WithTimeout(ctx, c.cfg.CommandTimeout)
	err := c.link.Takeoff(cmdCtx, c.cfg.TakeoffAltitude)
	cancel()
	if err != nil {
		return fmt.Errorf("takeoff: %w", err)
	}

	deadline := time.Now().Add(c.cfg.TakeoffTimeout)
	var stableSince time.Time

	for time.Now().Before(deadline) {
		if f, ok := c.monitor.Latest(); ok {
			if math.Abs(-f.Position.Down-c.cfg.TakeoffAltitude) <= c.cfg.Tolerance {
				if stableSince.IsZero() {
					stableSince = time.Now()
				}
				if time.Since(stableSince) >= c.cfg.DwellTime {
					return nil
				}
			} else {
				stableSince = time.Time{}
			}
		}
		if err := c.sleep(ctx); err != nil {
			return err
		}
	}
	return fmt.Errorf("takeoff altitude %gm not held within %s", c.cfg.TakeoffAltitude, c.cfg.TakeoffTimeout)
}

// startOffboard primes the setpoint stream at the current position, then
// requests the mode switch. The primed stream is a protocol requirement; the
// switch is rejected without it.
func (c *Controller) startOffboard(ctx context.Context) error {
	f, ok := c.monitor.Latest()
	if !ok {
		return fmt.Errorf("%w: no telemetry before offboard start", flightlink.ErrConnection)
	}
	hold := flightlink.Setpoint{Position: f.Position}

	for i := 0; i < c.cfg.PrimeSetpoints; i++ {
		c.link.SetSetpoint(hold)
		if err := c.sleep(ctx); err != nil {
			return err
		}
	}

	if err := c.command(ctx, "offboard start", c.cfg.OffboardRetries, c.link.StartOffboard); err != nil {
		return err
	}

	c.takeoffPos = f.Position
	return nil
}

// execute advances forward through the waypoint sequence. A waypoint is never
// revisited once confirmed or skipped. Safety triggers short-circuit the
// sequence regardless of the active waypoint's timeout state.
func (c *Controller) execute(ctx context.Context) error {
	for i, wp := range c.seq.Waypoints {
		err := c.flyTo(ctx, wp, c.cfg.WaypointTimeout, false)
		if err == nil {
			c.mu.Lock()
			c.visited++
			c.mu.Unlock()

			if err = c.hover(ctx, wp.Position); err == nil {
				continue
			}
		}

		if errors.Is(err, ErrWaypointTimeout) && !c.cfg.AbortOnTimeout {
			c.mu.Lock()
			c.skipped++
			c.mu.Unlock()

			c.logger.Warn("waypoint skipped on timeout",
				slog.Int("waypoint", i+1),
				slog.Int("total", len(c.seq.Waypoints)),
				slog.String("phase", wp.Phase.String()),
			)
			continue
		}

		return fmt.Errorf("waypoint %d/%d: %w", i+1, len(c.seq.Waypoints), err)
	}
	return nil
}

// flyTo streams velocity-shaped setpoints toward the waypoint at the control
// tick rate until arrival, timeout, safety trigger or cancellation. Arrival
// is the monitor's predicate. With returning set, low battery is ignored:
// the return leg is itself the response to it.
func (c *Controller) flyTo(ctx context.Context, wp Waypoint, budget time.Duration, returning bool) error {
	deadline := time.Now().Add(budget)

	for {
		if reason := c.monitor.SafetyCondition(); reason != SafetyNone {
			if !returning {
				return fmt.Errorf("%w: %w", ErrSafetyAbort, reason.Err())
			}
			if reason == SafetyTelemetryLoss {
				return reason.Err()
			}
		}

		if f, ok := c.monitor.Latest(); ok {
			if c.monitor.Arrived(wp) {
				c.link.SetSetpoint(flightlink.Setpoint{Position: wp.Position})
				return nil
			}

			distance := f.Position.DistanceTo(wp.Position)
			c.link.SetSetpoint(approachSetpoint(f.Position, wp.Position, wp.TargetSpeed, distance))
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%.2fm short of target: %w", remainingDistance(c.monitor, wp.Position), ErrWaypointTimeout)
		}

		if err := c.sleep(ctx); err != nil {
			if returning {
				return nil // keep descending, the landing phase follows
			}
			return err
		}
	}
}

// hover keeps streaming the position setpoint for the dwell period so the
// offboard stream never stalls while the vehicle paints in place.
func (c *Controller) hover(ctx context.Context, pos flightlink.NED) error {
	until := time.Now().Add(c.cfg.HoverTime)
	for time.Now().Before(until) {
		if reason := c.monitor.SafetyCondition(); reason != SafetyNone {
			return fmt.Errorf("%w: %w", ErrSafetyAbort, reason.Err())
		}

		c.link.SetSetpoint(flightlink.Setpoint{Position: pos})
		if err := c.sleep(ctx); err != nil {
			return err
		}
	}
	return nil
}

// returnToTakeoff flies back above the stored takeoff position. It runs on a
// detached context: an external abort must not strand the vehicle over the
// wall. On telemetry loss the offboard stream is useless, so the flight
// stack's own return behavior is requested instead. Failures fall through to
// the landing phase either way.
func (c *Controller) returnToTakeoff() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ReturnTimeout)
	defer cancel()

	err := c.flyTo(ctx, Waypoint{
		Position:    c.takeoffPos,
		TargetSpeed: c.cfg.PositioningSpeed,
		Tolerance:   c.cfg.Tolerance,
	}, c.cfg.ReturnTimeout, true)
	if err == nil {
		return
	}

	c.logger.Warn("return leg incomplete, landing in place", slog.String("error", err.Error()))

	if errors.Is(err, ErrTelemetryLoss) {
		cmdCtx, cmdCancel := context.WithTimeout(context.Background(), c.cfg.CommandTimeout)
		defer cmdCancel()

		if rtlErr := c.link.RequestReturnToLaunch(cmdCtx); rtlErr != nil {
			c.logger.Warn("return-to-launch request failed", slog.String("error", rtlErr.Error()))
		}
	}
}

// land stops offboard, commands the landing and waits for disarm. On timeout
// the vehicle is force-disarmed. land never fails: it is the terminal
// best-effort step of every mission outcome.
func (c *Controller) land() {
	cmdCtx, cancel := context.WithTimeout(context.Background(), c.cfg.CommandTimeout)
	defer cancel()

	if err := c.link.StopOffboard(cmdCtx); err != nil {
		c.logger.Warn("offboard stop failed", slog.String("error", err.Error()))
	}
	if err := c.link.Land(cmdCtx); err != nil {
		c.logger.Warn("land command failed", slog.String("error", err.Error()))
	}

	deadline := time.Now().Add(c.cfg.LandTimeout)
	for time.Now().Before(deadline) {
		if f, ok := c.monitor.Latest(); ok && !f.Armed {
			return
		}
		time.Sleep(c.cfg.TickInterval)
	}

	c.logger.Warn("disarm not confirmed, forcing disarm")

	disarmCtx, disarmCancel := context.WithTimeout(context.Background(), c.cfg.CommandTimeout)
	defer disarmCancel()

	if err := c.link.Disarm(disarmCtx); err != nil {
		c.logger.Warn("force disarm failed", slog.String("error", err.Error()))
	}
}

// abortAirborne lands in place before reporting the error. Used for failures
// after arming, when the vehicle may already be off the ground.
func (c *Controller) abortAirborne(err error) error {
	c.transition(StateLanding, err.Error())
	c.land()
	c.transition(StateAborted, err.Error())
	return err
}

// sleep waits one control tick, honoring cancellation.
func (c *Controller) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.cfg.TickInterval):
		return nil
	}
}

// approachSetpoint shapes the velocity toward the target: normalized
// direction at the commanded speed, per-component capped, braking inside the
// slowdown radius. The position target rides along so the stack holds it if
// the stream stalls for a tick.
func approachSetpoint(from, target flightlink.NED, speed, distance float64) flightlink.Setpoint {
	v := target.Sub(from).Scale(speed / distance)

	limit := speed * componentCap
	v.North = clamp(v.North, limit)
	v.East = clamp(v.East, limit)
	v.Down = clamp(v.Down, limit)

	if distance < slowdownRadius {
		v = v.Scale(math.Max(minSlowdown, distance/slowdownRadius))
	}

	return flightlink.Setpoint{Position: target, Velocity: v}
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

func remainingDistance(m *Monitor, target flightlink.NED) float64 {
	f, ok := m.Latest()
	if !ok {
		return math.NaN()
	}
	return f.Position.DistanceTo(target)
}
