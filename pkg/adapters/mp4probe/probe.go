// Package mp4probe reads video track metadata straight from an MP4
// container's sample tables. It is used as an exact frame-count source
// when the demuxer does not state one.
package mp4probe

import (
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Info summarizes the first video track of a container.
type Info struct {
	TotalFrames int
	Codec       string // sample entry type, e.g. "avc1", "hvc1", "av01"
}

// Probe reads track metadata from the MP4 file at path.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ProbeReader(f)
}

// ProbeReader reads track metadata from an io.ReadSeeker positioned at the
// start of MP4 data.
func ProbeReader(r io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}
	return probeFile(mp4File)
}

func probeFile(mp4File *mp4.File) (Info, error) {
	// Fragmented files keep their sample counts in the fragments, not the
	// init segment; fall back to counting fragment samples.
	if mp4File.IsFragmented() {
		return probeFragmented(mp4File)
	}

	if mp4File.Moov != nil {
		for _, trak := range mp4File.Moov.Traks {
			if !isVideoTrack(trak) {
				continue
			}
			return Info{
				TotalFrames: countTrackSamples(trak),
				Codec:       sampleEntryType(trak),
			}, nil
		}
	}
	return Info{}, fmt.Errorf("no video track found")
}

func probeFragmented(mp4File *mp4.File) (Info, error) {
	info := Info{}
	var videoTrackID uint32

	if mp4File.Init != nil && mp4File.Init.Moov != nil {
		for _, trak := range mp4File.Init.Moov.Traks {
			if isVideoTrack(trak) {
				info.Codec = sampleEntryType(trak)
				if trak.Tkhd != nil {
					videoTrackID = trak.Tkhd.TrackID
				}
				break
			}
		}
	}
	if info.Codec == "" {
		return Info{}, fmt.Errorf("no video track found")
	}

	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd != nil && traf.Tfhd.TrackID != videoTrackID {
					continue
				}
				for _, trun := range traf.Truns {
					info.TotalFrames += int(trun.SampleCount())
				}
			}
		}
	}
	return info, nil
}

func isVideoTrack(trak *mp4.TrakBox) bool {
	return trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide"
}

// countTrackSamples sums the decoding time-to-sample table entries.
func countTrackSamples(trak *mp4.TrakBox) int {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return 0
	}
	stts := trak.Mdia.Minf.Stbl.Stts
	if stts == nil {
		return 0
	}
	return sumSampleCounts(stts)
}

func sumSampleCounts(stts *mp4.SttsBox) int {
	total := 0
	for _, c := range stts.SampleCount {
		total += int(c)
	}
	return total
}

func sampleEntryType(trak *mp4.TrakBox) string {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return ""
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3", "hvc1", "hev1", "av01", "vp09":
			return child.Type()
		}
	}
	return ""
}
