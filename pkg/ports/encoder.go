package ports

import (
	"github.com/user/framecast/pkg/pixbuf"
)

// EncoderOptions configures codec parameters beyond the stream properties.
// Zero values select the defaults documented per field.
type EncoderOptions struct {
	GopSize     int   // keyframe interval in frames (default: 12)
	BitRate     int64 // target bitrate in bits/s (0 = codec default)
	ThreadCount int   // worker threads (default: min(NumCPU, 16))
}

// VideoEncoder owns a mux plus encode session for one output file.
// An encoder handles exactly one in-flight operation at a time; concurrent
// use requires external serialization.
type VideoEncoder interface {
	// Initialize opens the output container for the target path, selects
	// the encoder named by props.CodecName, configures and opens the codec,
	// creates the output stream and writes the container header.
	// Returns an *InitError on failure.
	Initialize(outputPath string, props VideoProperties, opts EncoderOptions) error

	// EncodeFrame converts src into a native frame, stamps it with the
	// next presentation timestamp and drains all ready packets into the
	// container. Failures are logged and reported as false; a single bad
	// frame does not terminate the session.
	EncodeFrame(src *pixbuf.Buffer) bool

	// Finalize flushes the codec and writes the container trailer.
	// Returns ErrNotOpen if the encoder was never initialized. A trailer
	// write failure is a hard error: the output file is invalid.
	Finalize() error

	// ConvertTimestamp converts seconds to stream timestamp units.
	ConvertTimestamp(seconds float64) int64

	// ListSupportedEncoders enumerates available encoder names.
	ListSupportedEncoders() []string

	// Close finalizes if needed and releases all resources. Idempotent.
	Close()
}
