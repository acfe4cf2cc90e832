// Package serialize implements the two scan-result output shapes: a
// record-oriented nested JSON document and a flat tabular (CSV) document.
// Both are round-trippable through the apply pipeline without loss of
// rule-relevant fields.
//
// Grounded on the teacher's encoding/json + MarshalIndent style in
// backend/duplicate_cache.go.
package serialize

import (
	"fmt"

	"github.com/ohtostado/duperscooper/internal/model"
)

// ItemRecord is the flattened per-item shape shared by both output shapes.
type ItemRecord struct {
	Path              string                  `json:"path" csv:"path"`
	Size              int64                   `json:"size" csv:"size"`
	QualityInfo       string                  `json:"quality_info" csv:"quality_info"`
	QualityScore      float64                 `json:"quality_score" csv:"quality_score"`
	SimilarityToBest  float64                 `json:"similarity_to_best" csv:"similarity_to_best"`
	MatchPercentage   float64                 `json:"match_percentage" csv:"match_percentage"`
	Confidence        float64                 `json:"confidence,omitempty" csv:"confidence"`
	IsBest            bool                    `json:"is_best" csv:"is_best"`
	RecommendedAction model.RecommendedAction `json:"recommended_action" csv:"recommended_action"`
	Format            string                  `json:"format,omitempty" csv:"format"`
	Codec             string                  `json:"codec,omitempty" csv:"codec"`
	Bitrate           int                     `json:"bitrate,omitempty" csv:"bitrate"`
	SampleRate        int                     `json:"sample_rate,omitempty" csv:"sample_rate"`
	BitDepth          int                     `json:"bit_depth,omitempty" csv:"bit_depth"`
	IsLossless        bool                    `json:"is_lossless" csv:"is_lossless"`
	TrackCount        int                     `json:"track_count,omitempty" csv:"track_count"`
	AlbumIdentifier   string                  `json:"album_identifier,omitempty" csv:"album_identifier"`
	QualityIsAvg      bool                    `json:"quality_is_avg,omitempty" csv:"quality_is_avg"`
}

// Group is the serialized shape of a model.DuplicateGroup.
type Group struct {
	GroupID       string          `json:"group_id"`
	Mode          model.GroupMode `json:"mode"`
	Method        model.MatchMethod `json:"method"`
	MatchedAlbum  string          `json:"matched_album,omitempty"`
	MatchedArtist string          `json:"matched_artist,omitempty"`
	Items         []ItemRecord    `json:"items"`
}

// ScanResult is the top-level record-oriented document.
type ScanResult struct {
	Groups          []Group `json:"groups"`
	TotalGroups     int     `json:"total_groups"`
	TotalDuplicates int     `json:"total_duplicates"`
}

// FromGroups converts in-memory duplicate groups into the serializable
// ScanResult shape.
func FromGroups(groups []model.DuplicateGroup) ScanResult {
	result := ScanResult{TotalGroups: len(groups)}
	for gi, g := range groups {
		sg := Group{
			GroupID:       fmt.Sprintf("group-%d", gi+1),
			Mode:          g.Mode,
			Method:        g.Method,
			MatchedAlbum:  g.MatchedAlbum,
			MatchedArtist: g.MatchedArtist,
		}
		for _, m := range g.Members {
			sg.Items = append(sg.Items, itemRecordFromMember(g, m))
			result.TotalDuplicates++
		}
		result.Groups = append(result.Groups, sg)
	}
	return result
}

func modeFromString(s string) model.GroupMode {
	if s == string(model.ModeAlbum) {
		return model.ModeAlbum
	}
	return model.ModeTrack
}

func matchMethodFromString(s string) model.MatchMethod {
	return model.MatchMethod(s)
}

func recommendedActionFromString(s string) model.RecommendedAction {
	if s == string(model.ActionKeep) {
		return model.ActionKeep
	}
	return model.ActionDelete
}

func itemRecordFromMember(g model.DuplicateGroup, m model.GroupMember) ItemRecord {
	rec := ItemRecord{
		SimilarityToBest:  m.SimilarityToBest,
		MatchPercentage:   m.MatchPercentage,
		Confidence:        m.Confidence,
		IsBest:            m.IsBest,
		RecommendedAction: m.RecommendedAction,
	}
	switch item := m.Item.(type) {
	case *model.TrackRecord:
		rec.Path = item.Path
		rec.Size = item.Size
		rec.QualityInfo = item.Metadata.QualityString
		rec.QualityScore = item.Metadata.QualityScore
		rec.Format = item.Metadata.Codec
		rec.Codec = item.Metadata.Codec
		rec.IsLossless = item.Metadata.Lossless
		if item.Metadata.BitrateBitsPerSec != nil {
			rec.Bitrate = *item.Metadata.BitrateBitsPerSec
		}
		rec.SampleRate = item.Metadata.SampleRateHz
		if item.Metadata.BitDepth != nil {
			rec.BitDepth = *item.Metadata.BitDepth
		}
		rec.AlbumIdentifier = item.Metadata.AlbumIdentifier
	case *model.Album:
		rec.Path = item.Path
		rec.Size = item.TotalSize
		rec.QualityInfo = item.AvgQualityString
		rec.QualityScore = item.AvgQualityScore
		rec.QualityIsAvg = item.AvgQualityIsAvg
		rec.TrackCount = item.TrackCount
		rec.AlbumIdentifier = item.AlbumIdentifier
	}
	return rec
}
