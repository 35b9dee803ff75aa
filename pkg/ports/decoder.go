package ports

import (
	"github.com/user/framecast/pkg/pixbuf"
)

// VideoProperties describes an opened video stream. It is populated once
// at open time and read-only afterwards.
type VideoProperties struct {
	Width       int
	Height      int
	FPS         float64
	Duration    float64 // seconds
	TotalFrames int
	PixelFormat string // native codec pixel layout name
	HasAudio    bool
	CodecName   string
}

// DecodeOutcome is the tri-state result of a decode step.
type DecodeOutcome int

const (
	// DecodeFrame means one frame was decoded and written to the buffer.
	DecodeFrame DecodeOutcome = iota
	// DecodeEnd means the stream is exhausted. Not an error.
	DecodeEnd
	// DecodeFailed means the codec returned a hard error.
	DecodeFailed
)

// VideoDecoder owns a demux plus decode session for one input file.
// A decoder handles exactly one in-flight operation at a time; concurrent
// use requires external serialization.
type VideoDecoder interface {
	// Open probes the container, selects the best video stream and opens
	// a matching decoder. Returns an *OpenError on failure.
	Open(path string) error

	// Properties returns the stream properties derived at open time.
	Properties() VideoProperties

	// DecodeNext decodes the next frame into dst. Transient codec signals
	// are absorbed and retried internally; the returned error is non-nil
	// only when the outcome is DecodeFailed.
	DecodeNext(dst *pixbuf.Buffer) (DecodeOutcome, error)

	// Seek flushes codec state and positions the container at the nearest
	// keyframe at or before the timestamp, then rolls decode forward to
	// the target. Reports success.
	Seek(seconds float64) bool

	// ListSupportedDecoders enumerates available decoder names.
	ListSupportedDecoders() []string

	// Close releases codec, container and hardware resources. Idempotent.
	Close()
}
