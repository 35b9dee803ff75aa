// Package avdecoder implements video decoding on top of libav via
// go-astiav, with an optional CUDA-accelerated variant.
package avdecoder

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/framecast/pkg/pixbuf"
	"github.com/user/framecast/pkg/ports"
)

// Decoder owns a demux plus decode session for one input file. It is not
// safe for concurrent use: one in-flight operation at a time.
type Decoder struct {
	log  ports.Logger
	conv ports.PixelConverter

	fc     *astiav.FormatContext
	cc     *astiav.CodecContext
	stream *astiav.Stream
	pkt    *astiav.Packet
	frame  *astiav.Frame

	// hardware acceleration, nil on the software path
	hdc      *astiav.HardwareDeviceContext
	hwPixFmt astiav.PixelFormat

	props    ports.VideoProperties
	open     bool
	draining bool

	// seek roll-forward target in stream time base, -1 when inactive
	seekTarget int64
}

// New creates a software decoder bound to conv.
func New(conv ports.PixelConverter, log ports.Logger) *Decoder {
	return &Decoder{
		log:        log.WithComponent("avdecoder"),
		conv:       conv,
		seekTarget: -1,
	}
}

// Open probes the container, selects the best video stream and opens a
// matching decoder.
func (d *Decoder) Open(path string) error {
	if d.open {
		return &ports.OpenError{Path: path, Err: errors.New("decoder already open")}
	}

	if err := d.openInput(path); err != nil {
		d.release()
		return &ports.OpenError{Path: path, Err: err}
	}
	d.open = true
	d.log.Debug("opened %s: %dx%d %s %.3f fps, %d frames",
		path, d.props.Width, d.props.Height, d.props.CodecName, d.props.FPS, d.props.TotalFrames)
	return nil
}

func (d *Decoder) openInput(path string) error {
	d.fc = astiav.AllocFormatContext()
	if d.fc == nil {
		return errors.New("alloc format context")
	}
	if err := d.fc.OpenInput(path, nil, nil); err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	if err := d.fc.FindStreamInfo(nil); err != nil {
		return fmt.Errorf("find stream info: %w", err)
	}

	for _, s := range d.fc.Streams() {
		if s.CodecParameters().MediaType() == astiav.MediaTypeVideo {
			d.stream = s
			break
		}
	}
	if d.stream == nil {
		return errors.New("no video stream")
	}

	codec := astiav.FindDecoder(d.stream.CodecParameters().CodecID())
	if codec == nil {
		return fmt.Errorf("no decoder for codec id %v", d.stream.CodecParameters().CodecID())
	}

	d.cc = astiav.AllocCodecContext(codec)
	if d.cc == nil {
		return errors.New("alloc codec context")
	}
	if err := d.stream.CodecParameters().ToCodecContext(d.cc); err != nil {
		return fmt.Errorf("copy codec parameters: %w", err)
	}

	if d.hdc != nil {
		if err := d.bindHardware(codec); err != nil {
			return err
		}
	}

	if err := d.cc.Open(codec, nil); err != nil {
		return fmt.Errorf("open codec: %w", err)
	}

	d.pkt = astiav.AllocPacket()
	d.frame = astiav.AllocFrame()
	d.readProperties(path, codec)
	return nil
}

// DecodeNext decodes the next frame through the converter into dst.
// A closed decoder reports end of stream rather than failing.
func (d *Decoder) DecodeNext(dst *pixbuf.Buffer) (ports.DecodeOutcome, error) {
	if !d.open {
		return ports.DecodeEnd, nil
	}

	for {
		err := d.cc.ReceiveFrame(d.frame)
		if err == nil {
			keep, cerr := d.deliver(dst)
			d.frame.Unref()
			if cerr != nil {
				return ports.DecodeFailed, cerr
			}
			if keep {
				return ports.DecodeFrame, nil
			}
			continue // pre-target frame discarded after a seek
		}
		if errors.Is(err, astiav.ErrEof) {
			return ports.DecodeEnd, nil
		}
		if !errors.Is(err, astiav.ErrEagain) {
			return ports.DecodeFailed, fmt.Errorf("receive frame: %w", err)
		}
		if d.draining {
			// EAGAIN while draining should not happen; treat as EOS.
			return ports.DecodeEnd, nil
		}

		if err := d.pump(); err != nil {
			return ports.DecodeFailed, err
		}
	}
}

// pump reads packets until one for the video stream has been sent to the
// codec, entering drain mode at container EOF.
func (d *Decoder) pump() error {
	for {
		if err := d.fc.ReadFrame(d.pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				if serr := d.cc.SendPacket(nil); serr != nil && !errors.Is(serr, astiav.ErrEagain) {
					return fmt.Errorf("send flush packet: %w", serr)
				}
				d.draining = true
				return nil
			}
			return fmt.Errorf("read packet: %w", err)
		}
		if d.pkt.StreamIndex() != d.stream.Index() {
			d.pkt.Unref()
			continue
		}
		err := d.cc.SendPacket(d.pkt)
		d.pkt.Unref()
		if err != nil && !errors.Is(err, astiav.ErrEagain) {
			return fmt.Errorf("send packet: %w", err)
		}
		return nil
	}
}

// deliver converts the received frame into dst unless it predates an
// active seek target.
func (d *Decoder) deliver(dst *pixbuf.Buffer) (bool, error) {
	if d.seekTarget >= 0 {
		pts := d.frame.Pts()
		if pts != astiav.NoPtsValue && pts < d.seekTarget {
			return false, nil
		}
		d.seekTarget = -1
	}
	if err := d.conv.ToBuffer(d.frame, dst); err != nil {
		return false, fmt.Errorf("convert frame: %w", err)
	}
	return true, nil
}

// Seek flushes the codec and positions the container at the nearest
// keyframe at or before seconds. Subsequent decodes discard frames until
// the target timestamp, so the next delivered frame is the requested one.
func (d *Decoder) Seek(seconds float64) bool {
	if !d.open {
		return false
	}
	ts := secondsToTimestamp(seconds, d.stream.TimeBase())

	d.cc.FlushBuffers()
	if err := d.fc.SeekFrame(d.stream.Index(), ts, astiav.NewSeekFlags(astiav.SeekFlagBackward)); err != nil {
		d.log.Warn("seek to %.3fs failed: %v", seconds, err)
		return false
	}
	d.draining = false
	d.seekTarget = ts
	return true
}

// Properties returns the stream properties derived at open time.
func (d *Decoder) Properties() ports.VideoProperties {
	return d.props
}

// ListSupportedDecoders enumerates available decoder names.
func (d *Decoder) ListSupportedDecoders() []string {
	return SupportedDecoders()
}

// SupportedDecoders enumerates the decoder names the linked FFmpeg build
// provides.
func SupportedDecoders() []string {
	var names []string
	for _, c := range astiav.Codecs() {
		if c.IsDecoder() {
			names = append(names, c.Name())
		}
	}
	return names
}

// Close releases codec, container and hardware resources. Idempotent.
func (d *Decoder) Close() {
	if !d.open && d.fc == nil {
		return
	}
	d.open = false
	d.release()
}

func (d *Decoder) release() {
	if d.frame != nil {
		d.frame.Free()
		d.frame = nil
	}
	if d.pkt != nil {
		d.pkt.Free()
		d.pkt = nil
	}
	if d.cc != nil {
		d.cc.Free()
		d.cc = nil
	}
	if d.fc != nil {
		d.fc.CloseInput()
		d.fc.Free()
		d.fc = nil
	}
	if d.hdc != nil {
		d.hdc.Free()
		d.hdc = nil
	}
	d.stream = nil
}

// secondsToTimestamp converts seconds to units of the given time base.
func secondsToTimestamp(seconds float64, tb astiav.Rational) int64 {
	if tb.Num() == 0 {
		return 0
	}
	return int64(seconds * float64(tb.Den()) / float64(tb.Num()))
}

var _ ports.VideoDecoder = (*Decoder)(nil)
