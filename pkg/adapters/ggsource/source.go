// Package ggsource generates synthetic test frames using the gg library.
// It produces a deterministic animation so encode paths can be exercised
// without any input media.
package ggsource

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/user/framecast/pkg/pixbuf"
)

// Source renders numbered frames of a moving-marker animation.
type Source struct {
	width  int
	height int
	dtype  pixbuf.DataType
	frame  int
}

// New creates a frame source with the given output shape.
func New(width, height int, dtype pixbuf.DataType) *Source {
	return &Source{width: width, height: height, dtype: dtype}
}

// FrameIndex returns the index of the next frame to be rendered.
func (s *Source) FrameIndex() int {
	return s.frame
}

// Reset restarts the animation from frame zero.
func (s *Source) Reset() {
	s.frame = 0
}

// Next renders the next frame into a freshly allocated host buffer.
func (s *Source) Next() (*pixbuf.Buffer, error) {
	buf := pixbuf.NewHost(s.width, s.height, s.dtype)
	if err := s.Render(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Render draws the next frame into dst and advances the animation.
func (s *Source) Render(dst *pixbuf.Buffer) error {
	if dst.Width != s.width || dst.Height != s.height || dst.Type != s.dtype {
		return fmt.Errorf("buffer shape mismatch: %dx%d %s vs %dx%d %s",
			dst.Width, dst.Height, dst.Type, s.width, s.height, s.dtype)
	}

	dc := gg.NewContext(s.width, s.height)
	s.drawBackground(dc)
	s.drawMarker(dc)

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return fmt.Errorf("unexpected canvas image type %T", dc.Image())
	}
	if err := dst.SetImage(img); err != nil {
		return err
	}
	s.frame++
	return nil
}

// drawBackground paints a horizontal gradient whose hue drifts per frame.
func (s *Source) drawBackground(dc *gg.Context) {
	phase := float64(s.frame) * 0.05
	grad := gg.NewLinearGradient(0, 0, float64(s.width), 0)
	grad.AddColorStop(0, waveColor(phase))
	grad.AddColorStop(1, waveColor(phase+math.Pi/2))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(s.width), float64(s.height))
	dc.Fill()
}

// drawMarker draws a circle that orbits the frame center, one revolution
// every 120 frames.
func (s *Source) drawMarker(dc *gg.Context) {
	cx := float64(s.width) / 2
	cy := float64(s.height) / 2
	r := math.Min(cx, cy) * 0.6
	angle := 2 * math.Pi * float64(s.frame%120) / 120

	dc.SetColor(color.White)
	dc.DrawCircle(cx+r*math.Cos(angle), cy+r*math.Sin(angle), math.Min(cx, cy)*0.15)
	dc.Fill()
}

// waveColor maps a phase to a smoothly cycling RGB color.
func waveColor(phase float64) color.Color {
	return color.RGBA{
		R: wave(phase),
		G: wave(phase + 2*math.Pi/3),
		B: wave(phase + 4*math.Pi/3),
		A: 255,
	}
}

func wave(phase float64) uint8 {
	return uint8((math.Sin(phase) + 1) / 2 * 255)
}
