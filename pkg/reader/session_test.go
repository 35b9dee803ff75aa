package reader

import (
	"errors"
	"testing"

	"github.com/asticode/go-astiav"

	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/pixbuf"
	"github.com/user/framecast/pkg/ports"
)

// fakeDecoder produces frames whose first sample is the frame index.
type fakeDecoder struct {
	props   ports.VideoProperties
	pos     int
	seeks   []float64
	failAt  int // frame index that decodes with a hard error, -1 to disable
	closed  int
	seekOK  bool
	decoded int
}

func newFakeDecoder(totalFrames int) *fakeDecoder {
	return &fakeDecoder{
		props: ports.VideoProperties{
			Width:       4,
			Height:      2,
			FPS:         10,
			TotalFrames: totalFrames,
			CodecName:   "fake",
		},
		failAt: -1,
		seekOK: true,
	}
}

func (d *fakeDecoder) Open(path string) error            { return nil }
func (d *fakeDecoder) Properties() ports.VideoProperties { return d.props }

func (d *fakeDecoder) DecodeNext(dst *pixbuf.Buffer) (ports.DecodeOutcome, error) {
	if d.pos >= d.props.TotalFrames {
		return ports.DecodeEnd, nil
	}
	if d.pos == d.failAt {
		return ports.DecodeFailed, errors.New("codec error")
	}
	dst.Uint8s()[0] = uint8(d.pos)
	d.pos++
	d.decoded++
	return ports.DecodeFrame, nil
}

func (d *fakeDecoder) Seek(seconds float64) bool {
	d.seeks = append(d.seeks, seconds)
	if !d.seekOK {
		return false
	}
	d.pos = int(seconds*d.props.FPS + 0.5)
	return true
}

func (d *fakeDecoder) ListSupportedDecoders() []string { return []string{"fake"} }
func (d *fakeDecoder) Close()                          { d.closed++ }

// fakeConverter counts synchronization barriers.
type fakeConverter struct {
	syncs  int
	err    error
	closed int
}

func (c *fakeConverter) ToBuffer(src *astiav.Frame, dst *pixbuf.Buffer) error { return nil }
func (c *fakeConverter) ToFrame(src *pixbuf.Buffer, dst *astiav.Frame) error  { return nil }
func (c *fakeConverter) Synchronize() error {
	c.syncs++
	return c.err
}
func (c *fakeConverter) Close() { c.closed++ }

func newTestSession(totalFrames int, staged bool) (*Session, *fakeDecoder, *fakeConverter) {
	dec := newFakeDecoder(totalFrames)
	conv := &fakeConverter{}
	s := newSession(dec, conv, pixbuf.Uint8, staged, logger.NewNoop())
	return s, dec, conv
}

// Iterating a valid range yields exactly end minus start frames, in order.
func TestIterate_RangeYieldsExactCount(t *testing.T) {
	s, _, _ := newTestSession(100, false)
	defer s.Close()

	if err := s.SetRange(10, 20); err != nil {
		t.Fatalf("SetRange failed: %v", err)
	}
	if !s.Iterate() {
		t.Fatal("Iterate failed")
	}

	var got []uint8
	for {
		buf, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, buf.Uint8s()[0])
	}

	if len(got) != 10 {
		t.Fatalf("got %d frames, want 10", len(got))
	}
	for i, v := range got {
		if int(v) != 10+i {
			t.Errorf("frame %d: got index %d, want %d", i, v, 10+i)
		}
	}
}

func TestSetRange_NegativeIndices(t *testing.T) {
	s, _, _ := newTestSession(100, false)
	defer s.Close()

	if err := s.SetRange(-10, -1); err != nil {
		t.Fatalf("SetRange failed: %v", err)
	}
	if !s.Iterate() {
		t.Fatal("Iterate failed")
	}

	count := 0
	for {
		_, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	// setRange(-10, -1) on a 100-frame stream behaves as setRange(90, 99).
	if count != 9 {
		t.Errorf("got %d frames, want 9", count)
	}
}

func TestSetRange_Invalid(t *testing.T) {
	s, _, _ := newTestSession(100, false)
	defer s.Close()

	for _, c := range [][2]int{{10, 10}, {20, 10}, {-200, 10}, {0, -200}} {
		err := s.SetRange(c[0], c[1])
		var rangeErr *ports.RangeError
		if !errors.As(err, &rangeErr) {
			t.Errorf("SetRange(%d, %d): got %v, want *ports.RangeError", c[0], c[1], err)
		}
	}
}

func TestNext_StopsAtEndOfStream(t *testing.T) {
	s, dec, _ := newTestSession(5, false)
	defer s.Close()

	if !s.Iterate() {
		t.Fatal("Iterate failed")
	}
	count := 0
	for {
		_, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != 5 {
		t.Errorf("got %d frames, want 5", count)
	}
	if dec.decoded != 5 {
		t.Errorf("decoder ran %d times, want 5", dec.decoded)
	}
}

func TestNext_SurfacesDecodeFailure(t *testing.T) {
	s, dec, _ := newTestSession(5, false)
	defer s.Close()
	dec.failAt = 2

	if !s.Iterate() {
		t.Fatal("Iterate failed")
	}
	count := 0
	for {
		_, ok, err := s.Next()
		if err != nil {
			if count != 2 {
				t.Errorf("failure after %d frames, want 2", count)
			}
			return
		}
		if !ok {
			t.Fatal("iteration ended without surfacing the failure")
		}
		count++
	}
}

// The staged path must synchronize before every staging copy.
func TestNext_StagedSynchronizes(t *testing.T) {
	s, _, conv := newTestSession(3, true)
	defer s.Close()

	if !s.Iterate() {
		t.Fatal("Iterate failed")
	}
	for i := 0; i < 3; i++ {
		_, ok, err := s.Next()
		if err != nil || !ok {
			t.Fatalf("Next %d: ok=%v err=%v", i, ok, err)
		}
	}
	if conv.syncs < 3 {
		t.Errorf("synchronized %d times, want >= 3", conv.syncs)
	}
}

func TestNext_StagedSyncErrorSurfaces(t *testing.T) {
	s, _, conv := newTestSession(3, true)
	defer s.Close()
	conv.err = errors.New("kernel failed")

	if !s.Iterate() {
		t.Fatal("Iterate failed")
	}
	if _, _, err := s.Next(); err == nil {
		t.Fatal("expected synchronize error to surface")
	}
}

func TestIterate_SeeksToRangeStart(t *testing.T) {
	s, dec, _ := newTestSession(100, false)
	defer s.Close()

	if err := s.SetRange(50, 60); err != nil {
		t.Fatalf("SetRange failed: %v", err)
	}
	if !s.Iterate() {
		t.Fatal("Iterate failed")
	}
	if len(dec.seeks) == 0 {
		t.Fatal("Iterate did not seek")
	}
	// frame 50 at 10 fps
	if got := dec.seeks[len(dec.seeks)-1]; got != 5.0 {
		t.Errorf("seek timestamp: got %f, want 5.0", got)
	}
}

func TestSeekToFrame_Bounds(t *testing.T) {
	s, _, _ := newTestSession(100, false)
	defer s.Close()

	if s.SeekToFrame(-1) {
		t.Error("seek to negative frame must fail")
	}
	if s.SeekToFrame(100) {
		t.Error("seek past last frame must fail")
	}
	if !s.SeekToFrame(99) {
		t.Error("seek to last frame must succeed")
	}
}

// Resetting and re-iterating reproduces the first frame.
func TestReset_Idempotent(t *testing.T) {
	s, _, _ := newTestSession(10, false)
	defer s.Close()

	if !s.Iterate() {
		t.Fatal("Iterate failed")
	}
	first, ok, err := s.Next()
	if err != nil || !ok {
		t.Fatalf("first Next: ok=%v err=%v", ok, err)
	}
	firstIndex := first.Uint8s()[0]

	if !s.Reset() {
		t.Fatal("Reset failed")
	}
	if !s.Iterate() {
		t.Fatal("second Iterate failed")
	}
	again, ok, err := s.Next()
	if err != nil || !ok {
		t.Fatalf("Next after reset: ok=%v err=%v", ok, err)
	}
	if again.Uint8s()[0] != firstIndex {
		t.Errorf("frame after reset: got %d, want %d", again.Uint8s()[0], firstIndex)
	}
}

func TestClose_SafeTwice(t *testing.T) {
	s, dec, conv := newTestSession(10, false)

	s.Close()
	s.Close()
	if dec.closed != 1 || conv.closed != 1 {
		t.Errorf("decoder closed %d times, converter %d times; want 1 each", dec.closed, conv.closed)
	}

	// A closed session ends iteration gracefully.
	if _, ok, err := s.Next(); ok || err != nil {
		t.Errorf("Next after Close: ok=%v err=%v, want graceful end", ok, err)
	}
}

func TestLenAndProperties(t *testing.T) {
	s, _, _ := newTestSession(42, false)
	defer s.Close()

	if s.Len() != 42 {
		t.Errorf("Len: got %d, want 42", s.Len())
	}
	if p := s.Properties(); p.TotalFrames != 42 || p.FPS != 10 {
		t.Errorf("unexpected properties: %+v", p)
	}
}
