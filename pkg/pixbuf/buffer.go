// Package pixbuf provides the raw pixel buffers that decoded frames are
// written into and encoded frames are read from. Buffers are interleaved
// HWC with three channels and a fixed numeric type.
package pixbuf

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/x448/float16"
)

// Channels is the number of interleaved channels per pixel.
const Channels = 3

// DataType selects the numeric type of the buffer samples.
type DataType int

const (
	// Uint8 stores unnormalized samples in [0, 255].
	Uint8 DataType = iota
	// Float32 stores samples normalized to [0.0, 1.0].
	Float32
	// Float16 stores half-precision samples normalized to [0.0, 1.0].
	Float16
)

// Size returns the size of one sample in bytes.
func (t DataType) Size() int {
	switch t {
	case Uint8:
		return 1
	case Float16:
		return 2
	case Float32:
		return 4
	default:
		return 0
	}
}

// String returns the name of the data type.
func (t DataType) String() string {
	switch t {
	case Uint8:
		return "uint8"
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	default:
		return "unknown"
	}
}

// ParseDataType parses a data type name.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "uint8":
		return Uint8, nil
	case "float32":
		return Float32, nil
	case "float16":
		return Float16, nil
	default:
		return 0, fmt.Errorf("unsupported data type: %q", s)
	}
}

// Location identifies the memory domain a buffer lives in. Device buffers
// are conversion targets owned by an accelerated backend and must not be
// read by host code until the backend has been synchronized.
type Location int

const (
	// Host memory, safe to read at any time.
	Host Location = iota
	// Device memory, valid on the host only after a synchronization barrier.
	Device
)

// String returns the name of the location.
func (l Location) String() string {
	if l == Device {
		return "device"
	}
	return "host"
}

// Buffer is a caller-visible pixel buffer of shape Height x Width x Channels.
type Buffer struct {
	Width  int
	Height int
	Type   DataType
	Loc    Location

	data []byte
}

// NewHost allocates a host-resident buffer.
func NewHost(width, height int, t DataType) *Buffer {
	return newBuffer(width, height, t, Host)
}

// NewDevice allocates a device-resident conversion target.
func NewDevice(width, height int, t DataType) *Buffer {
	return newBuffer(width, height, t, Device)
}

func newBuffer(width, height int, t DataType, loc Location) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Type:   t,
		Loc:    loc,
		data:   make([]byte, width*height*Channels*t.Size()),
	}
}

// NumSamples returns the total number of samples (pixels times channels).
func (b *Buffer) NumSamples() int {
	return b.Width * b.Height * Channels
}

// Bytes returns the raw backing storage.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Uint8s reinterprets the backing storage as uint8 samples.
func (b *Buffer) Uint8s() []uint8 {
	return b.data
}

// Float32s reinterprets the backing storage as float32 samples.
// Valid only for Float32 buffers.
func (b *Buffer) Float32s() []float32 {
	if len(b.data) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b.data[0])), len(b.data)/4)
}

// Float16s reinterprets the backing storage as half-precision samples.
// Valid only for Float16 buffers.
func (b *Buffer) Float16s() []float16.Float16 {
	if len(b.data) == 0 {
		return nil
	}
	return unsafe.Slice((*float16.Float16)(unsafe.Pointer(&b.data[0])), len(b.data)/2)
}

// CopyFrom copies the contents of src into b. Shapes and types must match.
// This is the explicit device-to-host staging copy on accelerated backends;
// the caller must synchronize the producing backend first.
func (b *Buffer) CopyFrom(src *Buffer) error {
	if src.Width != b.Width || src.Height != b.Height || src.Type != b.Type {
		return fmt.Errorf("buffer shape mismatch: %dx%d %s vs %dx%d %s",
			src.Width, src.Height, src.Type, b.Width, b.Height, b.Type)
	}
	copy(b.data, src.data)
	return nil
}

// Image renders the buffer as an RGBA image, denormalizing float samples.
func (b *Buffer) Image() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	n := b.Width * b.Height
	switch b.Type {
	case Uint8:
		src := b.Uint8s()
		for i := 0; i < n; i++ {
			img.Pix[i*4] = src[i*3]
			img.Pix[i*4+1] = src[i*3+1]
			img.Pix[i*4+2] = src[i*3+2]
			img.Pix[i*4+3] = 255
		}
	case Float32:
		src := b.Float32s()
		for i := 0; i < n; i++ {
			img.Pix[i*4] = denormalize(src[i*3])
			img.Pix[i*4+1] = denormalize(src[i*3+1])
			img.Pix[i*4+2] = denormalize(src[i*3+2])
			img.Pix[i*4+3] = 255
		}
	case Float16:
		src := b.Float16s()
		for i := 0; i < n; i++ {
			img.Pix[i*4] = denormalize(src[i*3].Float32())
			img.Pix[i*4+1] = denormalize(src[i*3+1].Float32())
			img.Pix[i*4+2] = denormalize(src[i*3+2].Float32())
			img.Pix[i*4+3] = 255
		}
	default:
		return nil, fmt.Errorf("unsupported data type: %d", b.Type)
	}
	return img, nil
}

// SetImage fills the buffer from an RGBA image, normalizing samples for
// float buffers. The image bounds must match the buffer shape.
func (b *Buffer) SetImage(img *image.RGBA) error {
	if img.Bounds().Dx() != b.Width || img.Bounds().Dy() != b.Height {
		return fmt.Errorf("image shape mismatch: %dx%d vs %dx%d",
			img.Bounds().Dx(), img.Bounds().Dy(), b.Width, b.Height)
	}
	n := b.Width * b.Height
	switch b.Type {
	case Uint8:
		dst := b.Uint8s()
		for i := 0; i < n; i++ {
			dst[i*3] = img.Pix[i*4]
			dst[i*3+1] = img.Pix[i*4+1]
			dst[i*3+2] = img.Pix[i*4+2]
		}
	case Float32:
		dst := b.Float32s()
		for i := 0; i < n; i++ {
			dst[i*3] = float32(img.Pix[i*4]) / 255
			dst[i*3+1] = float32(img.Pix[i*4+1]) / 255
			dst[i*3+2] = float32(img.Pix[i*4+2]) / 255
		}
	case Float16:
		dst := b.Float16s()
		for i := 0; i < n; i++ {
			dst[i*3] = float16.Fromfloat32(float32(img.Pix[i*4]) / 255)
			dst[i*3+1] = float16.Fromfloat32(float32(img.Pix[i*4+1]) / 255)
			dst[i*3+2] = float16.Fromfloat32(float32(img.Pix[i*4+2]) / 255)
		}
	default:
		return fmt.Errorf("unsupported data type: %d", b.Type)
	}
	return nil
}

func denormalize(v float32) uint8 {
	s := int(v*255 + 0.5)
	if s < 0 {
		s = 0
	}
	if s > 255 {
		s = 255
	}
	return uint8(s)
}
