package app

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	hueStart = 236.0 // single pass, blue
	hueEnd   = 0.0   // heavy overspray, red
)

var unpaintedColor = color.RGBA{R: 0xe8, G: 0xe8, B: 0xe8, A: 0xff}

// cellColor maps a cell visit count onto a blue-to-red ramp scaled by the
// densest cell of the run.
func cellColor(visits, maxVisits int) color.Color {
	if visits <= 0 {
		return unpaintedColor
	}
	if maxVisits <= 1 {
		return colorful.Hsv(hueStart, 1, 0.90)
	}

	norm := float64(visits-1) / float64(maxVisits-1)
	hue := hueStart - norm*(hueStart-hueEnd)
	hue = math.Min(math.Max(hue, hueEnd), hueStart)

	return colorful.Hsv(hue, 1, 0.90)
}
