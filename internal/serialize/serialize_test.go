package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohtostado/duperscooper/internal/model"
)

func sampleResult() ScanResult {
	return ScanResult{
		Groups: []Group{
			{
				GroupID:       "group-1",
				Mode:          model.ModeTrack,
				Method:        model.MatchPerceptual,
				MatchedAlbum:  "Some Album",
				MatchedArtist: "Some Artist",
				Items: []ItemRecord{
					{
						Path: "/music/best.flac", Size: 123456, QualityInfo: "FLAC 44.1kHz 16bit",
						QualityScore: 11644.1, SimilarityToBest: 100, MatchPercentage: 100,
						Confidence: 100, IsBest: true, RecommendedAction: model.ActionKeep,
						Format: "FLAC", Codec: "FLAC", SampleRate: 44100, BitDepth: 16, IsLossless: true,
					},
					{
						Path: "/music/dup.mp3", Size: 4321, QualityInfo: "MP3 CBR 320kbps",
						QualityScore: 320, SimilarityToBest: 98.9, MatchPercentage: 98.9,
						Confidence: 100, IsBest: false, RecommendedAction: model.ActionDelete,
						Format: "MP3", Codec: "MP3", Bitrate: 320000, IsLossless: false,
					},
				},
			},
		},
		TotalGroups:     1,
		TotalDuplicates: 2,
	}
}

func TestWriteReadJSONRoundTrip(t *testing.T) {
	want := sampleResult()
	data, err := WriteJSON(want)
	require.NoError(t, err)
	got, err := ReadJSON(data)
	require.NoError(t, err)
	assertRuleRelevantFieldsPreserved(t, want, got)
}

func TestWriteReadFlatRoundTrip(t *testing.T) {
	want := sampleResult()
	data, err := WriteFlat(want)
	require.NoError(t, err)
	got, err := ReadFlat(data)
	require.NoError(t, err)
	assertRuleRelevantFieldsPreserved(t, want, got)
}

// assertRuleRelevantFieldsPreserved checks every field the rules engine can
// reference survives a round trip without loss, per the both-shapes
// round-trip requirement.
func assertRuleRelevantFieldsPreserved(t *testing.T, want, got ScanResult) {
	t.Helper()
	require.Equal(t, want.TotalGroups, got.TotalGroups)
	require.Equal(t, want.TotalDuplicates, got.TotalDuplicates)
	require.Len(t, got.Groups, len(want.Groups))

	wg, gg := want.Groups[0], got.Groups[0]
	assert.Equal(t, wg.Method, gg.Method)
	require.Len(t, gg.Items, len(wg.Items))

	for i := range wg.Items {
		wi, gi := wg.Items[i], gg.Items[i]
		assert.Equal(t, wi.Path, gi.Path, "item %d path", i)
		assert.Equal(t, wi.Size, gi.Size, "item %d size", i)
		assert.Equal(t, wi.IsBest, gi.IsBest, "item %d is_best", i)
		assert.Equal(t, wi.RecommendedAction, gi.RecommendedAction, "item %d action", i)
		assert.Equal(t, wi.IsLossless, gi.IsLossless, "item %d is_lossless", i)
	}
}

func TestFromGroupsCountsDuplicates(t *testing.T) {
	groups := []model.DuplicateGroup{
		{
			Mode:   model.ModeTrack,
			Method: model.MatchExact,
			Members: []model.GroupMember{
				{Item: &model.TrackRecord{Path: "/a"}, IsBest: true, RecommendedAction: model.ActionKeep},
				{Item: &model.TrackRecord{Path: "/b"}, RecommendedAction: model.ActionDelete},
			},
		},
	}
	result := FromGroups(groups)
	require.Equal(t, 1, result.TotalGroups)
	require.Equal(t, 2, result.TotalDuplicates)
	assert.Equal(t, "group-1", result.Groups[0].GroupID)
}
