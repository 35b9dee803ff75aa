// Package writer provides a frame-submission session over a video
// encoder, validating caller buffers against the output stream shape.
package writer

import (
	"fmt"

	"github.com/user/framecast/pkg/backend"
	"github.com/user/framecast/pkg/pixbuf"
	"github.com/user/framecast/pkg/ports"
)

// Session accepts pixel buffers and writes them to one output video. It
// is single-caller: one in-flight operation at a time.
type Session struct {
	enc  ports.VideoEncoder
	conv ports.PixelConverter
	log  ports.Logger

	props  ports.VideoProperties
	dtype  pixbuf.DataType
	count  int
	closed bool
}

// Create initializes an output file through the factory and builds a
// session around it.
func Create(f *backend.Factory, path string, props ports.VideoProperties, opts ports.EncoderOptions, log ports.Logger) (*Session, error) {
	enc, conv, err := f.NewEncoder(path, props, opts)
	if err != nil {
		return nil, err
	}
	return &Session{
		enc:   enc,
		conv:  conv,
		log:   log.WithComponent("writer"),
		props: props,
		dtype: f.DataType(),
	}, nil
}

// newSession wires a session from parts; used by tests.
func newSession(enc ports.VideoEncoder, conv ports.PixelConverter, props ports.VideoProperties, dtype pixbuf.DataType, log ports.Logger) *Session {
	return &Session{
		enc:   enc,
		conv:  conv,
		log:   log,
		props: props,
		dtype: dtype,
	}
}

// Properties returns the output stream properties.
func (s *Session) Properties() ports.VideoProperties {
	return s.props
}

// FramesWritten returns the number of successfully submitted frames.
func (s *Session) FramesWritten() int {
	return s.count
}

// Write submits one frame. A mismatched buffer or a closed session logs
// and reports false; a single rejected frame does not end the session.
func (s *Session) Write(buf *pixbuf.Buffer) bool {
	if s.closed {
		s.log.Error("write: session closed")
		return false
	}
	if err := s.validate(buf); err != nil {
		s.log.Error("write frame %d: %v", s.count, err)
		return false
	}
	if !s.enc.EncodeFrame(buf) {
		return false
	}
	s.count++
	return true
}

func (s *Session) validate(buf *pixbuf.Buffer) error {
	if buf.Width != s.props.Width || buf.Height != s.props.Height {
		return fmt.Errorf("buffer %dx%d does not match output %dx%d",
			buf.Width, buf.Height, s.props.Width, s.props.Height)
	}
	if buf.Type != s.dtype {
		return fmt.Errorf("buffer type %s does not match session type %s", buf.Type, s.dtype)
	}
	return nil
}

// Finalize flushes the encoder and writes the container trailer.
func (s *Session) Finalize() error {
	if s.closed {
		return ports.ErrClosed
	}
	return s.enc.Finalize()
}

// Close finalizes the output and releases all resources. Safe to call
// multiple times; the first finalization failure is logged, not returned,
// so Close stays usable from deferred cleanup paths.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.enc.Close()
	s.conv.Close()
}
