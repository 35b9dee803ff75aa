package avencoder

import (
	"errors"
	"testing"

	"github.com/asticode/go-astiav"

	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/adapters/swconverter"
	"github.com/user/framecast/pkg/pixbuf"
	"github.com/user/framecast/pkg/ports"
)

func TestRescaleSeconds(t *testing.T) {
	cases := []struct {
		seconds float64
		tb      astiav.Rational
		want    int64
	}{
		{0, astiav.NewRational(1, 15360), 0},
		{1, astiav.NewRational(1, 15360), 15360},
		{0.5, astiav.NewRational(1, 30), 15},
		{1, astiav.NewRational(0, 30), 0},
	}
	for _, c := range cases {
		if got := rescaleSeconds(c.seconds, c.tb); got != c.want {
			t.Errorf("rescaleSeconds(%f, %v): got %d, want %d", c.seconds, c.tb, got, c.want)
		}
	}
}

func TestFinalize_NotOpen(t *testing.T) {
	e := New(swconverter.New(ports.KindEncode, pixbuf.Uint8), logger.NewNoop())
	if err := e.Finalize(); !errors.Is(err, ports.ErrNotOpen) {
		t.Fatalf("Finalize on unopened encoder: got %v, want ErrNotOpen", err)
	}
}

func TestEncodeFrame_NotOpen(t *testing.T) {
	e := New(swconverter.New(ports.KindEncode, pixbuf.Uint8), logger.NewNoop())
	buf := pixbuf.NewHost(2, 2, pixbuf.Uint8)
	if ok := e.EncodeFrame(buf); ok {
		t.Fatal("EncodeFrame on unopened encoder must report false")
	}
}

func TestClose_Idempotent(t *testing.T) {
	e := New(swconverter.New(ports.KindEncode, pixbuf.Uint8), logger.NewNoop())
	e.Close()
	e.Close()
}

func TestConvertTimestamp_NoStream(t *testing.T) {
	e := New(swconverter.New(ports.KindEncode, pixbuf.Uint8), logger.NewNoop())
	if got := e.ConvertTimestamp(1.5); got != 0 {
		t.Fatalf("ConvertTimestamp without stream: got %d, want 0", got)
	}
}

func TestInitialize_EmptyCodecName(t *testing.T) {
	e := New(swconverter.New(ports.KindEncode, pixbuf.Uint8), logger.NewNoop())
	err := e.Initialize("out.mp4", ports.VideoProperties{Width: 64, Height: 64, FPS: 30}, ports.EncoderOptions{})
	if err == nil {
		t.Fatal("expected InitError for empty codec name")
	}
	var initErr *ports.InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("got %T, want *ports.InitError", err)
	}
}
