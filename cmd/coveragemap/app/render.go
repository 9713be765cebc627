package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

const (
	defaultPixelsPerM = 60.0

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 60
	defaultBottomBorder = 40
	defaultRightBorder  = 40
)

var (
	wallOutlineColor = color.Black
	pathColor        = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
)

// BorderConfig defines the sizes of white space around the wall face
type BorderConfig struct {
	Top    int // Space for the width scale
	Left   int // Space for the height scale
	Bottom int // Space for the information bar
	Right  int // Right padding
}

// RenderConfig holds the visualization options for a coverage map
type RenderConfig struct {
	PixelsPerM  float64
	FontSize    float64
	Borders     BorderConfig
	Annotations bool
}

// CoverageRenderer draws a logged mission as a wall-face image: the paint
// density grid, the planned path on top of it and optional scales.
type CoverageRenderer struct {
	config RenderConfig
}

// NewCoverageRenderer creates a renderer with the given configuration
func NewCoverageRenderer(config RenderConfig) *CoverageRenderer {
	if config.PixelsPerM <= 0 {
		config.PixelsPerM = defaultPixelsPerM
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.Borders.Top == 0 {
		config.Borders.Top = defaultTopBorder
	}
	if config.Borders.Left == 0 {
		config.Borders.Left = defaultLeftBorder
	}
	if config.Borders.Bottom == 0 {
		config.Borders.Bottom = defaultBottomBorder
	}
	if config.Borders.Right == 0 {
		config.Borders.Right = defaultRightBorder
	}

	return &CoverageRenderer{config: config}
}

// Render creates the coverage map image
func (r *CoverageRenderer) Render(data *CoverageData) (*image.RGBA, error) {
	wallW := int(data.Width * r.config.PixelsPerM)
	wallH := int(data.Height * r.config.PixelsPerM)

	fullWidth := wallW + r.config.Borders.Left + r.config.Borders.Right
	fullHeight := wallH + r.config.Borders.Top + r.config.Borders.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	wallArea := image.Rect(
		r.config.Borders.Left,
		r.config.Borders.Top,
		r.config.Borders.Left+wallW,
		r.config.Borders.Top+wallH,
	)

	r.renderDensity(img, wallArea, data)
	r.renderPlannedPath(img, wallArea, data)
	r.renderOutline(img, wallArea)

	if r.config.Annotations {
		ann, err := newAnnotator(annotatorConfig{
			FontSize: r.config.FontSize,
			Borders:  r.config.Borders,
		})
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, wallArea, data); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	return img, nil
}

// renderDensity fills each grid cell with its visit-count color.
func (r *CoverageRenderer) renderDensity(img *image.RGBA, area image.Rectangle, data *CoverageData) {
	cellW := float64(area.Dx()) / float64(data.Cols)
	cellH := float64(area.Dy()) / float64(data.Rows)

	for row, cols := range data.Visits {
		y0 := area.Min.Y + int(float64(row)*cellH)
		y1 := area.Min.Y + int(float64(row+1)*cellH)
		for col, visits := range cols {
			x0 := area.Min.X + int(float64(col)*cellW)
			x1 := area.Min.X + int(float64(col+1)*cellW)

			cell := image.Rect(x0, y0, x1, y1)
			draw.Draw(img, cell, image.NewUniform(cellColor(visits, data.MaxVisits)), image.Point{}, draw.Src)
		}
	}
}

// renderPlannedPath draws the planned waypoint polyline over the density
// grid.
func (r *CoverageRenderer) renderPlannedPath(img *image.RGBA, area image.Rectangle, data *CoverageData) {
	if len(data.Waypoints) < 2 {
		return
	}

	toPixel := func(east, down float64) (int, int) {
		x := area.Min.X + int(east/data.Width*float64(area.Dx()))
		y := area.Min.Y + int((data.Height-(-down))/data.Height*float64(area.Dy()))
		return x, y
	}

	prevX, prevY := toPixel(data.Waypoints[0].East, data.Waypoints[0].Down)
	for _, wp := range data.Waypoints[1:] {
		x, y := toPixel(wp.East, wp.Down)
		drawLine(img, prevX, prevY, x, y, pathColor)
		prevX, prevY = x, y
	}
}

func (r *CoverageRenderer) renderOutline(img *image.RGBA, area image.Rectangle) {
	for x := area.Min.X; x < area.Max.X; x++ {
		img.Set(x, area.Min.Y, wallOutlineColor)
		img.Set(x, area.Max.Y-1, wallOutlineColor)
	}
	for y := area.Min.Y; y < area.Max.Y; y++ {
		img.Set(area.Min.X, y, wallOutlineColor)
		img.Set(area.Max.X-1, y, wallOutlineColor)
	}
}

// drawLine plots a straight segment between two pixels.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))

	steps := int(math.Max(dx, dy))
	if steps == 0 {
		img.Set(x0, y0, c)
		return
	}

	stepX := float64(x1-x0) / float64(steps)
	stepY := float64(y1-y0) / float64(steps)
	for i := 0; i <= steps; i++ {
		img.Set(x0+int(float64(i)*stepX+0.5), y0+int(float64(i)*stepY+0.5), c)
	}
}
