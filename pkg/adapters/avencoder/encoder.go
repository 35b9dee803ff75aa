// Package avencoder implements video encoding and muxing on top of libav
// via go-astiav.
package avencoder

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/asticode/go-astiav"

	"github.com/user/framecast/pkg/pixbuf"
	"github.com/user/framecast/pkg/ports"
)

// maxThreads caps codec-internal worker threads.
const maxThreads = 16

// defaultGopSize is the keyframe interval used when options leave it zero.
const defaultGopSize = 12

// Encoder owns a mux plus encode session for one output file. It is not
// safe for concurrent use: one in-flight operation at a time.
type Encoder struct {
	log  ports.Logger
	conv ports.PixelConverter

	fc     *astiav.FormatContext
	cc     *astiav.CodecContext
	stream *astiav.Stream
	ioCtx  *astiav.IOContext
	pkt    *astiav.Packet
	frame  *astiav.Frame

	props ports.VideoProperties
	pts   int64

	open      bool
	finalized bool
}

// New creates an encoder bound to conv, which must have been constructed
// with the encode conversion kind.
func New(conv ports.PixelConverter, log ports.Logger) *Encoder {
	return &Encoder{
		log:  log.WithComponent("avencoder"),
		conv: conv,
	}
}

// Initialize opens the output container, configures and opens the encoder
// named by props.CodecName, creates the output stream and writes the
// container header. The container format is inferred from the path
// extension.
func (e *Encoder) Initialize(outputPath string, props ports.VideoProperties, opts ports.EncoderOptions) error {
	if e.open {
		return &ports.InitError{Path: outputPath, Err: errors.New("encoder already open")}
	}
	if err := e.initialize(outputPath, props, opts); err != nil {
		e.release()
		return &ports.InitError{Path: outputPath, Err: err}
	}
	e.open = true
	e.finalized = false
	e.pts = 0
	e.log.Debug("initialized %s: %dx%d %s %.3f fps", outputPath, props.Width, props.Height, props.CodecName, props.FPS)
	return nil
}

func (e *Encoder) initialize(outputPath string, props ports.VideoProperties, opts ports.EncoderOptions) error {
	if props.CodecName == "" {
		return errors.New("codec name is empty")
	}
	codec := astiav.FindEncoderByName(props.CodecName)
	if codec == nil {
		return fmt.Errorf("encoder not found: %s", props.CodecName)
	}

	var err error
	if e.fc, err = astiav.AllocOutputFormatContext(nil, "", outputPath); err != nil {
		return fmt.Errorf("alloc output format context: %w", err)
	}

	e.cc = astiav.AllocCodecContext(codec)
	if e.cc == nil {
		return errors.New("alloc codec context")
	}

	fps := int(props.FPS + 0.5)
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate: %f", props.FPS)
	}

	pixFmt := astiav.PixelFormatYuv420P
	if props.PixelFormat != "" {
		if pf := astiav.FindPixelFormatByName(props.PixelFormat); pf != astiav.PixelFormatNone {
			pixFmt = pf
		}
	}

	gop := opts.GopSize
	if gop <= 0 {
		gop = defaultGopSize
	}
	threads := opts.ThreadCount
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if threads > maxThreads {
		threads = maxThreads
	}

	e.cc.SetWidth(props.Width)
	e.cc.SetHeight(props.Height)
	e.cc.SetTimeBase(astiav.NewRational(1, fps))
	e.cc.SetFramerate(astiav.NewRational(fps, 1))
	e.cc.SetGopSize(gop)
	e.cc.SetPixelFormat(pixFmt)
	e.cc.SetThreadCount(threads)
	e.cc.SetThreadType(astiav.ThreadTypeFrame | astiav.ThreadTypeSlice)
	if opts.BitRate > 0 {
		e.cc.SetBitRate(opts.BitRate)
	}
	if e.fc.OutputFormat().Flags().Has(astiav.IOFormatFlagGlobalheader) {
		e.cc.SetFlags(e.cc.Flags().Add(astiav.CodecContextFlagGlobalHeader))
	}

	// Frame submission order is presentation order; disable B-frames so
	// timestamps stay strictly increasing without reordering.
	codecOpts := astiav.NewDictionary()
	defer codecOpts.Free()
	if err := codecOpts.Set("bf", "0", astiav.NewDictionaryFlags()); err != nil {
		return fmt.Errorf("set codec options: %w", err)
	}

	if err := e.cc.Open(codec, codecOpts); err != nil {
		return fmt.Errorf("open codec: %w", err)
	}

	e.stream = e.fc.NewStream(codec)
	if e.stream == nil {
		return errors.New("new output stream")
	}
	if err := e.stream.CodecParameters().FromCodecContext(e.cc); err != nil {
		return fmt.Errorf("copy codec parameters: %w", err)
	}

	if !e.fc.OutputFormat().Flags().Has(astiav.IOFormatFlagNofile) {
		if e.ioCtx, err = astiav.OpenIOContext(outputPath, astiav.NewIOContextFlags(astiav.IOContextFlagWrite)); err != nil {
			return fmt.Errorf("open output file: %w", err)
		}
		e.fc.SetPb(e.ioCtx)
	}

	if err := e.fc.WriteHeader(nil); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	e.pkt = astiav.AllocPacket()
	e.frame = astiav.AllocFrame()
	e.frame.SetWidth(props.Width)
	e.frame.SetHeight(props.Height)
	e.frame.SetPixelFormat(pixFmt)
	if err := e.frame.AllocBuffer(0); err != nil {
		return fmt.Errorf("alloc frame buffer: %w", err)
	}

	e.props = props
	return nil
}

// EncodeFrame converts src into the pre-encode frame, stamps it with the
// next presentation timestamp and drains all ready packets into the
// container. Failures are logged and reported as false.
func (e *Encoder) EncodeFrame(src *pixbuf.Buffer) bool {
	if !e.open {
		e.log.Error("encode frame: encoder is not open")
		return false
	}

	if err := e.frame.MakeWritable(); err != nil {
		e.log.Error("encode frame %d: make writable: %v", e.pts, err)
		return false
	}
	if err := e.conv.ToFrame(src, e.frame); err != nil {
		e.log.Error("encode frame %d: convert: %v", e.pts, err)
		return false
	}
	if err := e.conv.Synchronize(); err != nil {
		e.log.Error("encode frame %d: synchronize: %v", e.pts, err)
		return false
	}

	e.frame.SetPts(e.pts)
	e.pts++

	if err := e.cc.SendFrame(e.frame); err != nil {
		e.log.Error("encode frame %d: send: %v", e.pts-1, err)
		return false
	}
	if err := e.drainPackets(); err != nil {
		e.log.Error("encode frame %d: drain: %v", e.pts-1, err)
		return false
	}
	return true
}

// drainPackets receives every packet the codec is ready to emit, rescales
// its timestamps to the stream time base and interleaves it into the
// container.
func (e *Encoder) drainPackets() error {
	for {
		err := e.cc.ReceivePacket(e.pkt)
		if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("receive packet: %w", err)
		}

		e.pkt.SetStreamIndex(e.stream.Index())
		e.pkt.RescaleTs(e.cc.TimeBase(), e.stream.TimeBase())
		err = e.fc.WriteInterleavedFrame(e.pkt)
		e.pkt.Unref()
		if err != nil {
			return fmt.Errorf("write packet: %w", err)
		}
	}
}

// Finalize flushes the codec and writes the container trailer. A trailer
// failure is a hard error: without it the output file is invalid.
func (e *Encoder) Finalize() error {
	if !e.open {
		return ports.ErrNotOpen
	}
	if e.finalized {
		return nil
	}

	if err := e.cc.SendFrame(nil); err != nil && !errors.Is(err, astiav.ErrEof) {
		return fmt.Errorf("send flush frame: %w", err)
	}
	if err := e.drainPackets(); err != nil {
		return err
	}
	if err := e.fc.WriteTrailer(); err != nil {
		return fmt.Errorf("write trailer: %w", err)
	}
	e.finalized = true
	e.log.Debug("finalized output with %d frames", e.pts)
	return nil
}

// ConvertTimestamp converts seconds to the output stream's timestamp units.
func (e *Encoder) ConvertTimestamp(seconds float64) int64 {
	if e.stream == nil {
		return 0
	}
	return rescaleSeconds(seconds, e.stream.TimeBase())
}

// ListSupportedEncoders enumerates available encoder names.
func (e *Encoder) ListSupportedEncoders() []string {
	return SupportedEncoders()
}

// SupportedEncoders enumerates the encoder names the linked FFmpeg build
// provides.
func SupportedEncoders() []string {
	var names []string
	for _, c := range astiav.Codecs() {
		if c.IsEncoder() {
			names = append(names, c.Name())
		}
	}
	return names
}

// Close finalizes if needed and releases all resources. Idempotent.
func (e *Encoder) Close() {
	if e.open && !e.finalized {
		if err := e.Finalize(); err != nil {
			e.log.Error("finalize on close: %v", err)
		}
	}
	e.open = false
	e.release()
}

func (e *Encoder) release() {
	if e.frame != nil {
		e.frame.Free()
		e.frame = nil
	}
	if e.pkt != nil {
		e.pkt.Free()
		e.pkt = nil
	}
	if e.cc != nil {
		e.cc.Free()
		e.cc = nil
	}
	if e.ioCtx != nil {
		if err := e.ioCtx.Close(); err != nil {
			e.log.Warn("close output io: %v", err)
		}
		e.ioCtx = nil
	}
	if e.fc != nil {
		e.fc.Free()
		e.fc = nil
	}
	e.stream = nil
}

// rescaleSeconds converts seconds to units of the given time base.
func rescaleSeconds(seconds float64, tb astiav.Rational) int64 {
	if tb.Num() == 0 {
		return 0
	}
	return int64(seconds * float64(tb.Den()) / float64(tb.Num()))
}

var _ ports.VideoEncoder = (*Encoder)(nil)
