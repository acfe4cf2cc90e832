// Package quality implements the deterministic quality score and the
// human-readable quality string used throughout grouping and matching.
//
// Grounded on the teacher's inline scoring in quality_upgrade.go
// (buildDuplicateGroups/mergeSimilarGroups), generalized to the fixed
// formula this system specifies rather than the teacher's own ranking.
package quality

import "fmt"

const (
	defaultBitDepth     = 16
	defaultSampleRateHz = 44100
	defaultBitrateKbps  = 0
	losslessOffset      = 10000
)

// Input is the subset of track metadata the scorer needs.
type Input struct {
	Codec             string
	Lossless          bool
	SampleRateHz      int
	BitDepth          *int
	BitrateBitsPerSec *int
}

// Score computes the deterministic quality score for a track.
//
// Lossless: 10000 + bit_depth*100 + sample_rate_Hz/1000.
// Lossy: bitrate_bits_per_s/1000 (kbps).
// Missing components default to bit depth 16, sample rate 44100, bitrate 0.
func Score(in Input) float64 {
	if in.Lossless {
		bitDepth := defaultBitDepth
		if in.BitDepth != nil {
			bitDepth = *in.BitDepth
		}
		sampleRate := defaultSampleRateHz
		if in.SampleRateHz > 0 {
			sampleRate = in.SampleRateHz
		}
		return float64(losslessOffset) + float64(bitDepth)*100 + float64(sampleRate)/1000
	}
	bitrate := defaultBitrateKbps
	if in.BitrateBitsPerSec != nil {
		bitrate = *in.BitrateBitsPerSec
	}
	return float64(bitrate) / 1000
}

// FormatString renders a human-readable quality string, e.g.
// "FLAC 44.1kHz 16bit" or "MP3 CBR 320kbps".
func FormatString(in Input) string {
	codec := in.Codec
	if codec == "" {
		codec = "UNKNOWN"
	}
	if in.Lossless {
		bitDepth := defaultBitDepth
		if in.BitDepth != nil {
			bitDepth = *in.BitDepth
		}
		sampleRate := defaultSampleRateHz
		if in.SampleRateHz > 0 {
			sampleRate = in.SampleRateHz
		}
		return fmt.Sprintf("%s %.1fkHz %dbit", codec, float64(sampleRate)/1000, bitDepth)
	}
	bitrate := defaultBitrateKbps
	if in.BitrateBitsPerSec != nil {
		bitrate = *in.BitrateBitsPerSec
	}
	return fmt.Sprintf("%s CBR %dkbps", codec, bitrate/1000)
}

// AlbumAggregate averages per-track scores and marks the result as an
// aggregate. The "(avg)" suffix is carried as a boolean flag rather than
// baked into the string, so presentation layers decide placement.
type AlbumAggregate struct {
	Score   float64
	String  string
	IsAvg   bool
}

// Aggregate computes an album's average quality score and a representative
// formatted string: FormatString of the representative input, rendered in
// the lossless format when mostlyLossless is set and the lossy one otherwise.
func Aggregate(scores []float64, mostlyLossless bool, representative Input) AlbumAggregate {
	if len(scores) == 0 {
		return AlbumAggregate{}
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))
	representative.Lossless = mostlyLossless
	return AlbumAggregate{
		Score:  avg,
		String: FormatString(representative),
		IsAvg:  true,
	}
}
