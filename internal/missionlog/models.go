package missionlog

import (
	"database/sql"
	"time"
)

// SessionRecord describes one logged mission run.
type SessionRecord struct {
	ID            int64
	StartedAt     time.Time
	Pattern       string
	StripeSpacing float64
	WallWidth     float64
	WallHeight    float64
	Config        sql.NullString
}

// WaypointRecord is one planned waypoint as stored for a session.
type WaypointRecord struct {
	ID          int64
	SessionID   int64
	Seq         int
	Stripe      int
	Phase       string
	North       float64
	East        float64
	Down        float64
	TargetSpeed float64
	Tolerance   float64
}

// TransitionRecord is one mission state change.
type TransitionRecord struct {
	ID         int64
	SessionID  int64
	At         time.Time
	PriorState string
	NextState  string
	Reason     string
}

// TrackPoint is one flight track sample.
type TrackPoint struct {
	ID        int64
	SessionID int64
	At        time.Time
	North     float64
	East      float64
	Down      float64
	Battery   float64
	Mode      string
	Armed     bool
}
