package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestScoreLosslessAlwaysBeatsLossy(t *testing.T) {
	lossless := Score(Input{Lossless: true, BitDepth: intPtr(16), SampleRateHz: 44100})
	lossy := Score(Input{Lossless: false, BitrateBitsPerSec: intPtr(320000)})
	assert.Greater(t, lossless, lossy)
}

func TestScoreLosslessFormula(t *testing.T) {
	got := Score(Input{Lossless: true, BitDepth: intPtr(16), SampleRateHz: 44100})
	want := 10000.0 + 16*100 + 44100.0/1000
	require.Equal(t, want, got)
}

func TestScoreLossyFormula(t *testing.T) {
	got := Score(Input{Lossless: false, BitrateBitsPerSec: intPtr(320000)})
	require.Equal(t, 320.0, got)
}

func TestScoreDefaultsWhenFieldsMissing(t *testing.T) {
	got := Score(Input{Lossless: true})
	want := 10000.0 + 16*100 + 44100.0/1000
	require.Equal(t, want, got, "Score() with missing bit depth/sample rate should use the documented defaults")
}

func TestFormatStringLossless(t *testing.T) {
	got := FormatString(Input{Codec: "FLAC", Lossless: true, BitDepth: intPtr(16), SampleRateHz: 44100})
	require.Equal(t, "FLAC 44.1kHz 16bit", got)
}

func TestFormatStringLossy(t *testing.T) {
	got := FormatString(Input{Codec: "MP3", Lossless: false, BitrateBitsPerSec: intPtr(320000)})
	require.Equal(t, "MP3 CBR 320kbps", got)
}

func TestAggregateAveragesScores(t *testing.T) {
	agg := Aggregate([]float64{100, 200, 300}, false, Input{Codec: "MP3", BitrateBitsPerSec: intPtr(200000)})
	assert.Equal(t, 200.0, agg.Score)
	assert.True(t, agg.IsAvg)
}

func TestAggregateUsesMostlyLosslessForRepresentativeFormat(t *testing.T) {
	agg := Aggregate([]float64{10000, 10100}, true, Input{Codec: "FLAC", BitDepth: intPtr(16), SampleRateHz: 44100, Lossless: false})
	require.Equal(t, "FLAC 44.1kHz 16bit", agg.String, "mostlyLossless=true should force the lossless format branch regardless of representative.Lossless")
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := Aggregate(nil, false, Input{})
	assert.Zero(t, agg.Score)
	assert.False(t, agg.IsAvg)
}
