package app

import (
	"time"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/missionlog"
)

// CoverageData aggregates one logged mission into a paint-density grid over
// the wall face. Cells are stripe-spacing sized; a cell's visit count is the
// number of track samples that fell inside it.
type CoverageData struct {
	Session    *missionlog.SessionRecord
	Waypoints  []missionlog.WaypointRecord
	Track      []missionlog.TrackPoint
	FlightTime time.Duration

	// Wall extents, meters.
	Width  float64
	Height float64

	// Grid dimensions and per-cell visit counts, row 0 at the wall top.
	Cols      int
	Rows      int
	Visits    [][]int
	MaxVisits int
}

// NewCoverageData builds the density grid for a session.
func NewCoverageData(session *missionlog.SessionRecord, waypoints []missionlog.WaypointRecord, track []missionlog.TrackPoint) *CoverageData {
	cell := session.StripeSpacing
	width, height := session.WallWidth, session.WallHeight

	cols := max(1, int(width/cell+0.5))
	rows := max(1, int(height/cell+0.5))

	visits := make([][]int, rows)
	for i := range visits {
		visits[i] = make([]int, cols)
	}

	d := &CoverageData{
		Session:   session,
		Waypoints: waypoints,
		Track:     track,
		Width:     width,
		Height:    height,
		Cols:      cols,
		Rows:      rows,
		Visits:    visits,
	}

	for _, p := range track {
		col, row, ok := d.cellAt(p.East, -p.Down)
		if !ok {
			continue
		}
		visits[row][col]++
		if visits[row][col] > d.MaxVisits {
			d.MaxVisits = visits[row][col]
		}
	}

	if len(track) > 1 {
		d.FlightTime = track[len(track)-1].At.Sub(track[0].At)
	}

	return d
}

// cellAt maps a lateral offset and a height above ground to a grid cell.
func (d *CoverageData) cellAt(lateral, altitude float64) (col, row int, ok bool) {
	if lateral < 0 || lateral > d.Width || altitude < 0 || altitude > d.Height {
		return 0, 0, false
	}

	col = min(int(lateral/d.Width*float64(d.Cols)), d.Cols-1)
	row = min(int((d.Height-altitude)/d.Height*float64(d.Rows)), d.Rows-1)
	return col, row, true
}

// Painted returns the fraction of grid cells with at least one visit.
func (d *CoverageData) Painted() float64 {
	var painted int
	for _, row := range d.Visits {
		for _, n := range row {
			if n > 0 {
				painted++
			}
		}
	}
	return float64(painted) / float64(d.Cols*d.Rows)
}
