// Package reader provides frame-range aware iteration over a decoded
// video, bridging decoder output into caller-visible pixel buffers.
package reader

import (
	"github.com/user/framecast/pkg/backend"
	"github.com/user/framecast/pkg/pixbuf"
	"github.com/user/framecast/pkg/ports"
)

// Session orchestrates a decoder, a converter and the output buffer pair.
// On the CUDA backend the conversion target is device-resident and every
// delivered frame goes through an explicit synchronize-then-stage copy
// into a host buffer.
//
// A session is single-caller: one in-flight operation at a time.
type Session struct {
	dec  ports.VideoDecoder
	conv ports.PixelConverter
	log  ports.Logger

	// target receives conversions; host is what callers see. On the CPU
	// backend they are the same buffer.
	target *pixbuf.Buffer
	host   *pixbuf.Buffer
	staged bool

	props  ports.VideoProperties
	rng    frameRange
	cursor int
	closed bool
}

// Open opens path through the factory and builds a session around it.
func Open(f *backend.Factory, path string, log ports.Logger) (*Session, error) {
	dec, conv, err := f.NewDecoder(path)
	if err != nil {
		return nil, err
	}
	props := dec.Properties()

	s := &Session{
		dec:   dec,
		conv:  conv,
		log:   log.WithComponent("reader"),
		props: props,
		rng:   fullRange(props.TotalFrames),
	}
	if f.Backend() == backend.CUDA {
		s.target = pixbuf.NewDevice(props.Width, props.Height, f.DataType())
		s.host = pixbuf.NewHost(props.Width, props.Height, f.DataType())
		s.staged = true
	} else {
		s.target = pixbuf.NewHost(props.Width, props.Height, f.DataType())
		s.host = s.target
	}
	return s, nil
}

// newSession wires a session from parts; used by tests.
func newSession(dec ports.VideoDecoder, conv ports.PixelConverter, dtype pixbuf.DataType, staged bool, log ports.Logger) *Session {
	props := dec.Properties()
	s := &Session{
		dec:    dec,
		conv:   conv,
		log:    log,
		props:  props,
		rng:    fullRange(props.TotalFrames),
		staged: staged,
	}
	if staged {
		s.target = pixbuf.NewDevice(props.Width, props.Height, dtype)
		s.host = pixbuf.NewHost(props.Width, props.Height, dtype)
	} else {
		s.target = pixbuf.NewHost(props.Width, props.Height, dtype)
		s.host = s.target
	}
	return s
}

// Properties returns the read-only stream properties.
func (s *Session) Properties() ports.VideoProperties {
	return s.props
}

// Len returns the total number of frames in the stream.
func (s *Session) Len() int {
	return s.props.TotalFrames
}

// SetRange restricts iteration to [start, end), resolving negative indices
// against the total frame count. Must be called before Iterate.
func (s *Session) SetRange(start, end int) error {
	rng, err := resolveRange(start, end, s.props.TotalFrames)
	if err != nil {
		return err
	}
	s.rng = rng
	return nil
}

// Iterate resets the cursor to the range start and seeks the decoder
// there. Frames are then consumed with Next.
func (s *Session) Iterate() bool {
	if s.closed {
		return false
	}
	s.cursor = s.rng.start
	if s.rng.start == 0 {
		return s.dec.Seek(0)
	}
	return s.SeekToFrame(s.rng.start)
}

// Next decodes one frame and returns the host-visible buffer. The second
// return is false when iteration is complete; err is non-nil only on a
// hard decode failure. The returned buffer is owned by the session and
// valid until the next call.
func (s *Session) Next() (*pixbuf.Buffer, bool, error) {
	if s.closed {
		return nil, false, nil
	}
	if !s.rng.contains(s.cursor) {
		return nil, false, nil
	}

	outcome, err := s.dec.DecodeNext(s.target)
	switch outcome {
	case ports.DecodeEnd:
		return nil, false, nil
	case ports.DecodeFailed:
		return nil, false, err
	}

	if s.staged {
		// Conversions into the device target are asynchronous; the
		// barrier must complete before the staging copy.
		if err := s.conv.Synchronize(); err != nil {
			return nil, false, err
		}
		if err := s.host.CopyFrom(s.target); err != nil {
			return nil, false, err
		}
	}

	s.cursor++
	return s.host, true, nil
}

// SeekToFrame positions the decoder at the keyframe at or before the given
// frame and rolls forward to it. Reports success; out-of-range frames
// report false.
func (s *Session) SeekToFrame(frame int) bool {
	if s.closed {
		return false
	}
	if frame < 0 || frame >= s.props.TotalFrames {
		return false
	}
	if s.props.FPS <= 0 {
		return false
	}
	return s.dec.Seek(float64(frame) / s.props.FPS)
}

// Reset rewinds the session to the beginning of the stream.
func (s *Session) Reset() bool {
	if s.closed {
		return false
	}
	s.cursor = 0
	return s.dec.Seek(0)
}

// Synchronize blocks until outstanding conversion work completes.
func (s *Session) Synchronize() error {
	if s.closed {
		return nil
	}
	return s.conv.Synchronize()
}

// SupportedDecoders enumerates available decoder names.
func (s *Session) SupportedDecoders() []string {
	return s.dec.ListSupportedDecoders()
}

// Close synchronizes, releases the converter, then the decoder. Safe to
// call multiple times.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if err := s.conv.Synchronize(); err != nil {
		s.log.Warn("synchronize on close: %v", err)
	}
	s.conv.Close()
	s.dec.Close()
}
