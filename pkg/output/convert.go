package output

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/renderer"
)

// DefaultGamma is the display gamma applied after tonemapping
const DefaultGamma = 2.2

// Converter turns linear frame buffers into displayable 8-bit images
type Converter struct {
	Gamma   float64                // Display gamma, DefaultGamma when zero
	ToneMap bool                   // Apply the ACES filmic curve before gamma
	Label   func(index int) string // Optional text drawn in the top left corner
}

// DefaultConverter tonemaps with ACES and applies gamma 2.2
func DefaultConverter() Converter {
	return Converter{Gamma: DefaultGamma, ToneMap: true}
}

// ToRGBA converts fb to an RGBA image and draws the label for frame index
func (c Converter) ToRGBA(index int, fb *renderer.FrameBuffer) *image.RGBA {
	gamma := c.Gamma
	if gamma <= 0 {
		gamma = DefaultGamma
	}

	img := image.NewRGBA(fb.Bounds())
	for y := 0; y < fb.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < fb.Width; x++ {
			p := c.pixel(fb.At(x, y), gamma)
			row[x*4+0] = p.R
			row[x*4+1] = p.G
			row[x*4+2] = p.B
			row[x*4+3] = 255
		}
	}

	if c.Label != nil {
		if text := c.Label(index); text != "" {
			DrawLabel(img, text)
		}
	}
	return img
}

func (c Converter) pixel(v core.Vec3, gamma float64) color.RGBA {
	if c.ToneMap {
		v = core.ToneMapACES(v)
	}
	v = v.Clamp01().GammaCorrect(gamma)
	return color.RGBA{R: core.ToByte(v.X), G: core.ToByte(v.Y), B: core.ToByte(v.Z), A: 255}
}

// ClockLabel formats a normalized time of day as a 24 hour clock
func ClockLabel(timeOfDay float64) string {
	t := timeOfDay - math.Floor(timeOfDay)
	minutes := int(t*24*60) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DrawLabel writes text in the top left corner with a one pixel drop shadow
func DrawLabel(img draw.Image, text string) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	origin := fixed.P(6, 4+metrics.Ascent.Ceil())

	d := &font.Drawer{Dst: img, Face: face}

	d.Src = image.NewUniform(color.RGBA{A: 255})
	d.Dot = origin.Add(fixed.P(1, 1))
	d.DrawString(text)

	d.Src = image.White
	d.Dot = origin
	d.DrawString(text)
}
