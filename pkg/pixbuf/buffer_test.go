package pixbuf

import (
	"image"
	"testing"
)

func TestDataTypeSize(t *testing.T) {
	cases := []struct {
		dtype DataType
		size  int
	}{
		{Uint8, 1},
		{Float16, 2},
		{Float32, 4},
		{DataType(99), 0},
	}
	for _, tc := range cases {
		if got := tc.dtype.Size(); got != tc.size {
			t.Errorf("%v.Size(): got %d, want %d", tc.dtype, got, tc.size)
		}
	}
}

func TestParseDataType(t *testing.T) {
	for _, name := range []string{"uint8", "float32", "float16"} {
		dt, err := ParseDataType(name)
		if err != nil {
			t.Fatalf("ParseDataType(%q) failed: %v", name, err)
		}
		if dt.String() != name {
			t.Errorf("round trip: got %q, want %q", dt.String(), name)
		}
	}
	if _, err := ParseDataType("int32"); err == nil {
		t.Error("unknown name must be rejected")
	}
}

func TestBufferAllocation(t *testing.T) {
	b := NewHost(4, 2, Float32)
	if b.NumSamples() != 4*2*Channels {
		t.Errorf("NumSamples: got %d, want %d", b.NumSamples(), 4*2*Channels)
	}
	if len(b.Bytes()) != b.NumSamples()*4 {
		t.Errorf("backing size: got %d, want %d", len(b.Bytes()), b.NumSamples()*4)
	}
	if len(b.Float32s()) != b.NumSamples() {
		t.Errorf("Float32s length: got %d, want %d", len(b.Float32s()), b.NumSamples())
	}
	if NewDevice(4, 2, Uint8).Loc != Device {
		t.Error("NewDevice must allocate a device-resident buffer")
	}
}

func TestCopyFrom(t *testing.T) {
	src := NewDevice(2, 2, Uint8)
	src.Uint8s()[0] = 42

	dst := NewHost(2, 2, Uint8)
	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("CopyFrom failed: %v", err)
	}
	if dst.Uint8s()[0] != 42 {
		t.Error("staging copy did not carry data")
	}

	if err := NewHost(3, 2, Uint8).CopyFrom(src); err == nil {
		t.Error("mismatched shape must be rejected")
	}
	if err := NewHost(2, 2, Float32).CopyFrom(src); err == nil {
		t.Error("mismatched data type must be rejected")
	}
}

func TestImageRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Pix = []uint8{255, 0, 128, 255, 0, 255, 64, 255}

	for _, dt := range []DataType{Uint8, Float32, Float16} {
		b := NewHost(2, 1, dt)
		if err := b.SetImage(img); err != nil {
			t.Fatalf("SetImage %v failed: %v", dt, err)
		}
		got, err := b.Image()
		if err != nil {
			t.Fatalf("Image %v failed: %v", dt, err)
		}
		for i := 0; i < len(img.Pix); i++ {
			diff := int(got.Pix[i]) - int(img.Pix[i])
			if diff < -1 || diff > 1 {
				t.Errorf("%v: pixel byte %d drifted: got %d, want %d", dt, i, got.Pix[i], img.Pix[i])
			}
		}
	}
}

func TestSetImage_RejectsMismatchedBounds(t *testing.T) {
	b := NewHost(2, 2, Uint8)
	if err := b.SetImage(image.NewRGBA(image.Rect(0, 0, 3, 2))); err == nil {
		t.Error("mismatched bounds must be rejected")
	}
}

func TestFloat32Normalization(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Pix = []uint8{255, 0, 127, 255}

	b := NewHost(1, 1, Float32)
	if err := b.SetImage(img); err != nil {
		t.Fatal(err)
	}
	s := b.Float32s()
	if s[0] != 1.0 || s[1] != 0.0 {
		t.Errorf("normalization: got [%f %f], want [1 0]", s[0], s[1])
	}
	if s[2] < 0.49 || s[2] > 0.51 {
		t.Errorf("mid sample: got %f, want about 0.5", s[2])
	}
}
