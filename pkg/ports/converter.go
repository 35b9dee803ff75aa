// Package ports defines the interfaces between the decode/encode sessions
// and their backend-specific implementations.
package ports

import (
	"github.com/asticode/go-astiav"

	"github.com/user/framecast/pkg/pixbuf"
)

// ConversionKind fixes the direction of a PixelConverter at construction
// time. Calling the opposite direction is a programming error and is
// reported as ErrWrongDirection.
type ConversionKind int

const (
	// KindDecode converts a decoded native frame into a pixel buffer.
	KindDecode ConversionKind = iota
	// KindEncode converts a pixel buffer into a pre-encode native frame.
	KindEncode
)

// String returns the name of the conversion kind.
func (k ConversionKind) String() string {
	if k == KindEncode {
		return "encode"
	}
	return "decode"
}

// PixelConverter transforms one frame between the codec's native pixel
// layout and an interleaved 3-channel buffer of the requested numeric type.
// Integer buffers carry unnormalized samples in [0, 255]; float buffers are
// normalized to [0.0, 1.0].
//
// Implementations may run asynchronously. Callers must call Synchronize
// before reading converted data on the host.
type PixelConverter interface {
	// ToBuffer converts a native frame into dst. Decode direction only.
	ToBuffer(src *astiav.Frame, dst *pixbuf.Buffer) error

	// ToFrame converts src into a native frame. Encode direction only.
	// dst must have its dimensions, pixel format and backing buffer set.
	ToFrame(src *pixbuf.Buffer, dst *astiav.Frame) error

	// Synchronize blocks until all outstanding conversions have completed
	// and returns the first deferred conversion error, if any.
	Synchronize() error

	// Close synchronizes and releases converter resources. Idempotent.
	Close()
}
