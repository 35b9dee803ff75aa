package reader

import (
	"errors"
	"testing"

	"github.com/user/framecast/pkg/ports"
)

func TestResolveRange(t *testing.T) {
	cases := []struct {
		name        string
		start, end  int
		total       int
		wantStart   int
		wantLast    int
		wantInvalid bool
	}{
		{name: "full", start: 0, end: 100, total: 100, wantStart: 0, wantLast: 99},
		{name: "window", start: 10, end: 20, total: 100, wantStart: 10, wantLast: 19},
		{name: "single frame", start: 5, end: 6, total: 100, wantStart: 5, wantLast: 5},
		{name: "negative both", start: -10, end: -1, total: 100, wantStart: 90, wantLast: 98},
		{name: "negative start", start: -10, end: 100, total: 100, wantStart: 90, wantLast: 99},
		{name: "end equals start", start: 10, end: 10, total: 100, wantInvalid: true},
		{name: "end before start", start: 20, end: 10, total: 100, wantInvalid: true},
		{name: "negative resolution below zero", start: -200, end: 10, total: 100, wantInvalid: true},
		{name: "negative end below zero", start: 0, end: -200, total: 100, wantInvalid: true},
		{name: "negative crossover", start: -1, end: -10, total: 100, wantInvalid: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rng, err := resolveRange(c.start, c.end, c.total)
			if c.wantInvalid {
				var rangeErr *ports.RangeError
				if !errors.As(err, &rangeErr) {
					t.Fatalf("got %v, want *ports.RangeError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveRange failed: %v", err)
			}
			if rng.start != c.wantStart || rng.last != c.wantLast {
				t.Errorf("got [%d, %d], want [%d, %d]", rng.start, rng.last, c.wantStart, c.wantLast)
			}
		})
	}
}

// Negative indices must resolve identically to their positive equivalents.
func TestResolveRange_NegativeEquivalence(t *testing.T) {
	neg, err := resolveRange(-10, -1, 100)
	if err != nil {
		t.Fatalf("negative range failed: %v", err)
	}
	pos, err := resolveRange(90, 99, 100)
	if err != nil {
		t.Fatalf("positive range failed: %v", err)
	}
	if neg != pos {
		t.Errorf("negative %+v != positive %+v", neg, pos)
	}
}

func TestFrameRangeContains(t *testing.T) {
	rng, err := resolveRange(10, 20, 100)
	if err != nil {
		t.Fatalf("resolveRange failed: %v", err)
	}
	for i := 10; i < 20; i++ {
		if !rng.contains(i) {
			t.Errorf("frame %d must be in [10, 20)", i)
		}
	}
	for _, i := range []int{9, 20, 21} {
		if rng.contains(i) {
			t.Errorf("frame %d must not be in [10, 20)", i)
		}
	}
}

func TestFullRange_UnknownFrameCount(t *testing.T) {
	rng := fullRange(0)
	if !rng.contains(0) || !rng.contains(1 << 40) {
		t.Error("unknown frame count must not bound iteration")
	}
}
