package avdecoder

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/asticode/go-astiav"

	"github.com/user/framecast/pkg/adapters/mp4probe"
	"github.com/user/framecast/pkg/ports"
)

// readProperties derives the immutable stream properties after the codec
// has been opened.
func (d *Decoder) readProperties(path string, codec *astiav.Codec) {
	cp := d.stream.CodecParameters()

	props := ports.VideoProperties{
		Width:       cp.Width(),
		Height:      cp.Height(),
		FPS:         rationalFloat(d.stream.AvgFrameRate()),
		PixelFormat: cp.PixelFormat().Name(),
		CodecName:   codec.Name(),
	}

	if dur := d.fc.Duration(); dur > 0 {
		props.Duration = float64(dur) / float64(astiav.TimeBase)
	}

	for _, s := range d.fc.Streams() {
		if s.CodecParameters().MediaType() == astiav.MediaTypeAudio {
			props.HasAudio = true
			break
		}
	}

	props.TotalFrames = d.totalFrames(path, props)
	d.props = props
}

// totalFrames resolves the frame count: the container may state it
// directly, an MP4 sample table can be counted exactly, and otherwise it
// is estimated from duration and frame rate.
func (d *Decoder) totalFrames(path string, props ports.VideoProperties) int {
	if n := d.stream.NbFrames(); n > 0 {
		return int(n)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".m4v":
		if info, err := mp4probe.Probe(path); err == nil && info.TotalFrames > 0 {
			d.log.Debug("frame count from container sample table: %d", info.TotalFrames)
			return info.TotalFrames
		}
	}

	if props.Duration > 0 && props.FPS > 0 {
		return int(math.Round(props.Duration * props.FPS))
	}
	return 0
}

func rationalFloat(r astiav.Rational) float64 {
	if r.Den() == 0 {
		return 0
	}
	return float64(r.Num()) / float64(r.Den())
}
