package reader

import (
	"math"

	"github.com/user/framecast/pkg/ports"
)

// frameRange is an iteration window over frame indices. start is
// inclusive; last is the inclusive form of the caller's exclusive end.
type frameRange struct {
	start int
	last  int
}

// fullRange covers an entire stream of totalFrames frames. A stream with
// an unknown frame count iterates until the decoder reports end of stream.
func fullRange(totalFrames int) frameRange {
	if totalFrames <= 0 {
		return frameRange{start: 0, last: math.MaxInt}
	}
	return frameRange{start: 0, last: totalFrames - 1}
}

// resolveRange resolves possibly-negative start/end indices against
// totalFrames into an absolute window. Negative indices count from the end
// of the stream, python-style: -1 means totalFrames-1.
func resolveRange(start, end, totalFrames int) (frameRange, error) {
	resolvedStart, resolvedEnd := start, end
	if resolvedStart < 0 {
		resolvedStart += totalFrames
	}
	if resolvedEnd < 0 {
		resolvedEnd += totalFrames
	}

	if resolvedStart < 0 || resolvedEnd < 0 {
		return frameRange{}, &ports.RangeError{
			Start: start,
			End:   end,
			Msg:   "index out of range after negative resolution",
		}
	}
	if resolvedEnd <= resolvedStart {
		return frameRange{}, &ports.RangeError{
			Start: start,
			End:   end,
			Msg:   "end must be greater than start after resolution",
		}
	}

	return frameRange{start: resolvedStart, last: resolvedEnd - 1}, nil
}

// contains reports whether frame index i is inside the window.
func (r frameRange) contains(i int) bool {
	return i >= r.start && i <= r.last
}
