// Package flightlink defines the capability interface to the flight-control
// stack: command issuance and telemetry subscription. Mission logic depends
// only on this contract; concrete bindings (SITL simulator, offboard protocol
// adapters) implement it.
package flightlink

import (
	"context"
	"errors"
	"math"
	"time"
)

var (
	// ErrConnection is returned when the flight stack cannot be reached or
	// the connection is lost.
	ErrConnection = errors.New("flight link connection failed")

	// ErrCommandRejected is returned when the flight stack refuses a command
	// (arm, mode switch) in its current state.
	ErrCommandRejected = errors.New("command rejected by flight stack")

	// ErrNotConnected is returned when a command is issued before Connect.
	ErrNotConnected = errors.New("flight link not connected")
)

// NED is a vector in the local North-East-Down frame, meters or m/s.
// Down is negative for altitude above ground.
type NED struct {
	North float64
	East  float64
	Down  float64
}

// Sub returns v - o.
func (v NED) Sub(o NED) NED {
	return NED{v.North - o.North, v.East - o.East, v.Down - o.Down}
}

// Add returns v + o.
func (v NED) Add(o NED) NED {
	return NED{v.North + o.North, v.East + o.East, v.Down + o.Down}
}

// Scale returns v scaled by f.
func (v NED) Scale(f float64) NED {
	return NED{v.North * f, v.East * f, v.Down * f}
}

// Length returns the Euclidean norm of v.
func (v NED) Length() float64 {
	return math.Sqrt(v.North*v.North + v.East*v.East + v.Down*v.Down)
}

// DistanceTo returns the Euclidean distance between v and o.
func (v NED) DistanceTo(o NED) float64 {
	return v.Sub(o).Length()
}

// FlightMode is the flight stack mode as reported over telemetry.
type FlightMode string

const (
	ModeUnknown  FlightMode = "unknown"
	ModeHold     FlightMode = "hold"
	ModeTakeoff  FlightMode = "takeoff"
	ModeOffboard FlightMode = "offboard"
	ModeReturn   FlightMode = "return"
	ModeLand     FlightMode = "land"
)

// Frame is a single telemetry sample. Frames are produced continuously by the
// link; consumers keep only the latest one.
type Frame struct {
	Position  NED
	Velocity  NED
	Battery   float64 // remaining charge, fraction [0, 1]
	Mode      FlightMode
	Armed     bool
	Timestamp time.Time
}

// Setpoint is a position/velocity/yaw target streamed to the flight stack
// while in offboard mode.
type Setpoint struct {
	Position NED
	Velocity NED
	Yaw      float64 // degrees
}

// Link is the only channel to the flight-control stack.
//
// SetSetpoint is fire-and-forget and must be called at the protocol keep-alive
// rate while offboard mode is active, or the stack exits the mode on its own.
// All other commands block until acknowledged or ctx expires.
type Link interface {
	// Connect opens the link to the flight stack at endpoint.
	Connect(ctx context.Context, endpoint string) error

	// Close tears the link down and stops the telemetry stream.
	Close() error

	Arm(ctx context.Context) error
	Disarm(ctx context.Context) error

	// Takeoff commands a climb to altitude meters above ground.
	Takeoff(ctx context.Context, altitude float64) error

	StartOffboard(ctx context.Context) error
	StopOffboard(ctx context.Context) error

	// SetSetpoint streams one offboard setpoint. Never blocks.
	SetSetpoint(sp Setpoint)

	Land(ctx context.Context) error
	RequestReturnToLaunch(ctx context.Context) error

	// Telemetry returns the stream of telemetry frames. The channel is closed
	// when the link closes.
	Telemetry() <-chan Frame
}
