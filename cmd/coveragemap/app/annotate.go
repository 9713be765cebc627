package app

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	dpi            = 120.0
	fontSize       = 12.0
	tickMarkLength = 5
	pixelsPerLabel = 80.0
)

type annotatorConfig struct {
	FontSize float64
	Borders  BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, wallArea image.Rectangle, data *CoverageData) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawWidthScale(img, wallArea, data); err != nil {
		return fmt.Errorf("drawing width scale: %w", err)
	}
	if err := a.drawHeightScale(img, wallArea, data); err != nil {
		return fmt.Errorf("drawing height scale: %w", err)
	}
	if err := a.drawInfoBar(img, data); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}

	return nil
}

// drawWidthScale labels the lateral axis along the top border in meters.
func (a *annotator) drawWidthScale(img *image.RGBA, wallArea image.Rectangle, data *CoverageData) error {
	step := niceMeterStep(data.Width, wallArea.Dx())

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := wallArea.Min.Y - tickMarkLength - fontHeight/2

	for m := 0.0; m <= data.Width+1e-9; m += step {
		x := wallArea.Min.X + int(m/data.Width*float64(wallArea.Dx()))

		for y := wallArea.Min.Y - tickMarkLength; y < wallArea.Min.Y; y++ {
			img.Set(x, y, color.Black)
		}

		label := formatMeters(m)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing width label: %w", err)
		}
	}
	return nil
}

// drawHeightScale labels the height axis along the left border in meters,
// zero at the ground.
func (a *annotator) drawHeightScale(img *image.RGBA, wallArea image.Rectangle, data *CoverageData) error {
	step := niceMeterStep(data.Height, wallArea.Dy())

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for m := 0.0; m <= data.Height+1e-9; m += step {
		y := wallArea.Max.Y - int(m/data.Height*float64(wallArea.Dy()))

		for x := wallArea.Min.X - tickMarkLength; x < wallArea.Min.X; x++ {
			img.Set(x, y, color.Black)
		}

		textY := y + fontHeight/2 - metrics.Descent.Round()
		pt := freetype.Pt(8, textY)
		if _, err := a.context.DrawString(formatMeters(m), pt); err != nil {
			return fmt.Errorf("drawing height label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, data *CoverageData) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Wall: %s x %s m", humanize.FtoaWithDigits(data.Width, 1), humanize.FtoaWithDigits(data.Height, 1)))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Pattern: %s @ %sm", data.Session.Pattern, humanize.FtoaWithDigits(data.Session.StripeSpacing, 2)))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Painted: %.1f%%", data.Painted()*100))
	if data.FlightTime > 0 {
		sb.WriteString("; ")
		sb.WriteString(fmt.Sprintf("Flight time: %s", data.FlightTime.Round(time.Second)))
	}

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (a.config.Borders.Bottom-fontHeight)/2 - metrics.Descent.Round()

	pt := freetype.Pt(a.config.Borders.Left, textY)
	if _, err := a.context.DrawString(sb.String(), pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}

	return nil
}

func formatMeters(m float64) string {
	return humanize.FtoaWithDigits(m, 1) + "m"
}

// niceMeterStep picks a label interval that keeps labels readable at the
// rendered scale.
func niceMeterStep(extent float64, pixels int) float64 {
	steps := []float64{0.5, 1, 2, 5, 10, 20, 50}

	desired := float64(pixels) / pixelsPerLabel
	target := extent / math.Max(desired, 1)

	for _, step := range steps {
		if step >= target {
			return step
		}
	}
	return steps[len(steps)-1]
}
