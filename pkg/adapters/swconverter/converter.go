// Package swconverter converts frames between native codec pixel layouts
// and interleaved RGB pixel buffers on the host, synchronously.
package swconverter

import (
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/framecast/pkg/pixbuf"
	"github.com/user/framecast/pkg/ports"
)

// Converter implements ports.PixelConverter on host memory. The layout
// transform (planar 4:2:0 or NV12 to interleaved RGB24 and back) is done
// by libswscale; the numeric cast into the destination type is done in Go.
type Converter struct {
	kind  ports.ConversionKind
	dtype pixbuf.DataType

	ssc      *astiav.SoftwareScaleContext
	sscSrcW  int
	sscSrcH  int
	sscSrcPF astiav.PixelFormat
	sscDstPF astiav.PixelFormat

	rgbFrame *astiav.Frame
	closed   bool
}

// New creates a converter with a fixed direction and destination type.
func New(kind ports.ConversionKind, dtype pixbuf.DataType) *Converter {
	return &Converter{
		kind:  kind,
		dtype: dtype,
	}
}

// ToBuffer converts a decoded native frame into dst.
func (c *Converter) ToBuffer(src *astiav.Frame, dst *pixbuf.Buffer) error {
	if c.kind != ports.KindDecode {
		return ports.ErrWrongDirection
	}
	if c.closed {
		return ports.ErrClosed
	}
	if dst.Type != c.dtype {
		return fmt.Errorf("buffer type %s does not match converter type %s", dst.Type, c.dtype)
	}

	if err := c.ensureContext(src.Width(), src.Height(), src.PixelFormat(), astiav.PixelFormatRgb24); err != nil {
		return err
	}
	if err := c.ssc.ScaleFrame(src, c.rgbFrame); err != nil {
		return fmt.Errorf("scale frame: %w", err)
	}

	rgb, err := c.rgbFrame.Data().Bytes(1)
	if err != nil {
		return fmt.Errorf("frame bytes: %w", err)
	}
	return castToBuffer(rgb, dst)
}

// ToFrame converts src into a pre-encode native frame. dst must carry its
// dimensions, pixel format and an allocated buffer.
func (c *Converter) ToFrame(src *pixbuf.Buffer, dst *astiav.Frame) error {
	if c.kind != ports.KindEncode {
		return ports.ErrWrongDirection
	}
	if c.closed {
		return ports.ErrClosed
	}
	if src.Type != c.dtype {
		return fmt.Errorf("buffer type %s does not match converter type %s", src.Type, c.dtype)
	}
	if src.Width != dst.Width() || src.Height != dst.Height() {
		return fmt.Errorf("buffer %dx%d does not match frame %dx%d",
			src.Width, src.Height, dst.Width(), dst.Height())
	}

	if err := c.ensureContext(src.Width, src.Height, astiav.PixelFormatRgb24, dst.PixelFormat()); err != nil {
		return err
	}

	rgb := make([]byte, src.Width*src.Height*pixbuf.Channels)
	if err := castFromBuffer(src, rgb); err != nil {
		return err
	}
	if err := c.rgbFrame.Data().SetBytes(rgb, 1); err != nil {
		return fmt.Errorf("set frame bytes: %w", err)
	}
	if err := c.ssc.ScaleFrame(c.rgbFrame, dst); err != nil {
		return fmt.Errorf("scale frame: %w", err)
	}
	return nil
}

// Synchronize is a no-op: host conversions complete before returning.
func (c *Converter) Synchronize() error {
	return nil
}

// Close releases the scale context and intermediate frame. Idempotent.
func (c *Converter) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.ssc != nil {
		c.ssc.Free()
		c.ssc = nil
	}
	if c.rgbFrame != nil {
		c.rgbFrame.Free()
		c.rgbFrame = nil
	}
}

// ensureContext (re)creates the scale context and the intermediate RGB
// frame when the source geometry changes.
func (c *Converter) ensureContext(w, h int, srcPF, dstPF astiav.PixelFormat) error {
	if c.ssc != nil && w == c.sscSrcW && h == c.sscSrcH && srcPF == c.sscSrcPF && dstPF == c.sscDstPF {
		return nil
	}
	if c.ssc != nil {
		c.ssc.Free()
		c.ssc = nil
	}

	ssc, err := astiav.CreateSoftwareScaleContext(w, h, srcPF, w, h, dstPF,
		astiav.NewSoftwareScaleContextFlags(astiav.SoftwareScaleContextFlagBilinear))
	if err != nil {
		return fmt.Errorf("create scale context: %w", err)
	}
	c.ssc = ssc
	c.sscSrcW, c.sscSrcH, c.sscSrcPF, c.sscDstPF = w, h, srcPF, dstPF

	if c.rgbFrame != nil {
		c.rgbFrame.Free()
	}
	c.rgbFrame = astiav.AllocFrame()
	c.rgbFrame.SetWidth(w)
	c.rgbFrame.SetHeight(h)
	c.rgbFrame.SetPixelFormat(astiav.PixelFormatRgb24)
	if err := c.rgbFrame.AllocBuffer(1); err != nil {
		return fmt.Errorf("alloc rgb frame buffer: %w", err)
	}
	return nil
}

var _ ports.PixelConverter = (*Converter)(nil)
