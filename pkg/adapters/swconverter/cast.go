package swconverter

import (
	"fmt"

	"github.com/x448/float16"

	"github.com/user/framecast/pkg/pixbuf"
)

// castToBuffer casts tightly packed RGB24 samples into the buffer's
// numeric type, normalizing float destinations to [0.0, 1.0].
func castToBuffer(rgb []byte, dst *pixbuf.Buffer) error {
	n := dst.NumSamples()
	if len(rgb) < n {
		return fmt.Errorf("rgb data too short: %d < %d", len(rgb), n)
	}
	switch dst.Type {
	case pixbuf.Uint8:
		copy(dst.Uint8s(), rgb[:n])
	case pixbuf.Float32:
		out := dst.Float32s()
		for i := 0; i < n; i++ {
			out[i] = float32(rgb[i]) / 255
		}
	case pixbuf.Float16:
		out := dst.Float16s()
		for i := 0; i < n; i++ {
			out[i] = float16.Fromfloat32(float32(rgb[i]) / 255)
		}
	default:
		return fmt.Errorf("unsupported data type: %d", dst.Type)
	}
	return nil
}

// castFromBuffer casts buffer samples back to RGB24, denormalizing and
// clamping float sources.
func castFromBuffer(src *pixbuf.Buffer, rgb []byte) error {
	n := src.NumSamples()
	if len(rgb) < n {
		return fmt.Errorf("rgb data too short: %d < %d", len(rgb), n)
	}
	switch src.Type {
	case pixbuf.Uint8:
		copy(rgb[:n], src.Uint8s())
	case pixbuf.Float32:
		in := src.Float32s()
		for i := 0; i < n; i++ {
			rgb[i] = clampSample(in[i])
		}
	case pixbuf.Float16:
		in := src.Float16s()
		for i := 0; i < n; i++ {
			rgb[i] = clampSample(in[i].Float32())
		}
	default:
		return fmt.Errorf("unsupported data type: %d", src.Type)
	}
	return nil
}

func clampSample(v float32) uint8 {
	s := int(v*255 + 0.5)
	if s < 0 {
		s = 0
	}
	if s > 255 {
		s = 255
	}
	return uint8(s)
}
