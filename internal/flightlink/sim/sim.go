// Package sim provides an in-process flight link backed by a first-order
// kinematic vehicle model. It stands in for a SITL stack during tests and
// dry runs, including the offboard-mode protocol rules the mission code has
// to respect: a primed setpoint stream before the mode switch, and a
// keep-alive rate while the mode is active.
package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink"
)

const (
	defaultTickInterval = 50 * time.Millisecond
	defaultMaxSpeed     = 3.0 // m/s
	defaultBattery      = 1.0
	defaultMinSetpoints = 5

	landedThreshold = 0.05 // meters above ground
)

// Config describes the simulated vehicle and its failure injection knobs.
type Config struct {
	// Start is the vehicle position at spawn, NED.
	Start flightlink.NED

	// TickInterval is the physics and telemetry update period.
	TickInterval time.Duration

	// MaxSpeed caps the vehicle speed regardless of commanded velocity.
	MaxSpeed float64

	// Battery is the initial charge fraction [0, 1].
	Battery float64

	// DrainPerSecond is the battery drain rate while armed, fraction/s.
	DrainPerSecond float64

	// ArmRejections is the number of arm commands to reject before accepting.
	// Negative means reject every arm command.
	ArmRejections int

	// MinSetpoints is the number of streamed setpoints required before the
	// offboard mode switch is accepted.
	MinSetpoints int

	// SilenceTelemetryAfter stops the telemetry stream after this duration,
	// zero disables. Used to exercise telemetry-loss handling.
	SilenceTelemetryAfter time.Duration
}

func (c *Config) setDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTickInterval
	}
	if c.MaxSpeed <= 0 {
		c.MaxSpeed = defaultMaxSpeed
	}
	if c.Battery <= 0 {
		c.Battery = defaultBattery
	}
	if c.MinSetpoints <= 0 {
		c.MinSetpoints = defaultMinSetpoints
	}
}

// WithLogger sets the logger for the simulated link.
func WithLogger(logger *slog.Logger) func(*Link) {
	return func(l *Link) {
		l.logger = logger.With(slog.String("link", "sim"))
	}
}

// Link is a simulated flight link. It satisfies flightlink.Link.
type Link struct {
	cfg    Config
	logger *slog.Logger

	connected atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	frames chan flightlink.Frame

	mu            sync.Mutex
	pos           flightlink.NED
	vel           flightlink.NED
	home          flightlink.NED
	battery       float64
	armed         bool
	mode          flightlink.FlightMode
	setpoint      flightlink.Setpoint
	setpointCount int
	armRejections int
}

// New creates a simulated link with a discard logger.
func New(cfg Config, options ...func(*Link)) *Link {
	cfg.setDefaults()

	l := Link{
		cfg:           cfg,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
		frames:        make(chan flightlink.Frame, 16),
		pos:           cfg.Start,
		home:          cfg.Start,
		battery:       cfg.Battery,
		mode:          flightlink.ModeHold,
		armRejections: cfg.ArmRejections,
	}

	for _, option := range options {
		option(&l)
	}

	return &l
}

// Connect starts the vehicle model and the telemetry stream. The endpoint is
// accepted for interface compatibility and ignored. ctx bounds the connection
// attempt only; the model runs until Close.
func (l *Link) Connect(ctx context.Context, endpoint string) error {
	if l.connected.Load() {
		return fmt.Errorf("sim link already connected")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", flightlink.ErrConnection, err)
	}
	l.connected.Store(true)

	var runCtx context.Context
	runCtx, l.cancel = context.WithCancel(context.Background())

	l.wg.Add(1)
	go l.run(runCtx)

	l.logger.Info("simulated vehicle online", slog.String("endpoint", endpoint))
	return nil
}

// Close stops the vehicle model and closes the telemetry channel.
func (l *Link) Close() error {
	if !l.connected.Load() {
		return nil
	}

	l.cancel()
	l.wg.Wait()
	l.connected.Store(false)
	return nil
}

func (l *Link) Arm(ctx context.Context) error {
	if !l.connected.Load() {
		return flightlink.ErrNotConnected
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.armRejections != 0 {
		if l.armRejections > 0 {
			l.armRejections--
		}
		return fmt.Errorf("arm: %w", flightlink.ErrCommandRejected)
	}

	l.armed = true
	return nil
}

func (l *Link) Disarm(ctx context.Context) error {
	if !l.connected.Load() {
		return flightlink.ErrNotConnected
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.armed = false
	l.mode = flightlink.ModeHold
	return nil
}

func (l *Link) Takeoff(ctx context.Context, altitude float64) error {
	if !l.connected.Load() {
		return flightlink.ErrNotConnected
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.armed {
		return fmt.Errorf("takeoff while disarmed: %w", flightlink.ErrCommandRejected)
	}

	l.mode = flightlink.ModeTakeoff
	l.setpoint = flightlink.Setpoint{
		Position: flightlink.NED{North: l.pos.North, East: l.pos.East, Down: -altitude},
	}
	return nil
}

func (l *Link) StartOffboard(ctx context.Context) error {
	if !l.connected.Load() {
		return flightlink.ErrNotConnected
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// The protocol requires a primed setpoint stream before the switch.
	if l.setpointCount < l.cfg.MinSetpoints {
		return fmt.Errorf("offboard without primed setpoint stream: %w", flightlink.ErrCommandRejected)
	}

	l.mode = flightlink.ModeOffboard
	return nil
}

func (l *Link) StopOffboard(ctx context.Context) error {
	if !l.connected.Load() {
		return flightlink.ErrNotConnected
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mode == flightlink.ModeOffboard {
		l.mode = flightlink.ModeHold
	}
	return nil
}

func (l *Link) SetSetpoint(sp flightlink.Setpoint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.setpoint = sp
	l.setpointCount++
}

func (l *Link) Land(ctx context.Context) error {
	if !l.connected.Load() {
		return flightlink.ErrNotConnected
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.mode = flightlink.ModeLand
	l.setpoint = flightlink.Setpoint{
		Position: flightlink.NED{North: l.pos.North, East: l.pos.East, Down: 0},
	}
	return nil
}

func (l *Link) RequestReturnToLaunch(ctx context.Context) error {
	if !l.connected.Load() {
		return flightlink.ErrNotConnected
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.mode = flightlink.ModeReturn
	l.setpoint = flightlink.Setpoint{Position: l.home}
	return nil
}

func (l *Link) Telemetry() <-chan flightlink.Frame {
	return l.frames
}

// run drives the vehicle model and publishes telemetry until ctx is done.
func (l *Link) run(ctx context.Context) {
	defer l.wg.Done()
	defer close(l.frames)

	started := time.Now()
	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("simulated vehicle shutting down")
			return

		case now := <-ticker.C:
			frame := l.step(now, l.cfg.TickInterval.Seconds())

			if l.cfg.SilenceTelemetryAfter > 0 && now.Sub(started) > l.cfg.SilenceTelemetryAfter {
				continue // link keeps flying, telemetry goes dark
			}

			select {
			case l.frames <- frame:
			default:
				// consumer is behind, drop the frame
			}
		}
	}
}

// step advances the kinematic model by dt seconds and returns the telemetry
// frame for the new state.
func (l *Link) step(now time.Time, dt float64) flightlink.Frame {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.armed {
		l.battery = math.Max(0, l.battery-l.cfg.DrainPerSecond*dt)

		target := l.setpoint.Position
		v := l.setpoint.Velocity
		if v.Length() == 0 {
			// No commanded velocity: close on the position target directly.
			v = target.Sub(l.pos)
		}
		if speed := v.Length(); speed > l.cfg.MaxSpeed {
			v = v.Scale(l.cfg.MaxSpeed / speed)
		}

		// Do not overshoot the target within a single tick.
		if toGo := target.Sub(l.pos).Length(); toGo <= v.Length()*dt {
			l.pos = target
			l.vel = flightlink.NED{}
		} else {
			l.pos = l.pos.Add(v.Scale(dt))
			l.vel = v
		}

		if l.mode == flightlink.ModeLand && -l.pos.Down <= landedThreshold {
			l.pos.Down = 0
			l.vel = flightlink.NED{}
			l.armed = false
			l.mode = flightlink.ModeHold
		}
	}

	return flightlink.Frame{
		Position:  l.pos,
		Velocity:  l.vel,
		Battery:   l.battery,
		Mode:      l.mode,
		Armed:     l.armed,
		Timestamp: now,
	}
}
