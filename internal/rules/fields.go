// Package rules implements the declarative rules engine and apply
// pipeline: rule evaluation over a per-item field projection, built-in
// strategies, and the dry-run/execute pipeline that turns a serialized scan
// result into staged deletions.
//
// New relative to the teacher; the apply pipeline's load/decide/guard/
// report/execute shape is modeled on Fauli-music-janitor's Planner.Plan
// from other_examples.
package rules

import (
	"github.com/ohtostado/duperscooper/internal/model"
)

// Field is the closed union of track and album projections a condition may
// reference.
type Field string

const (
	FieldPath              Field = "path"
	FieldIsBest            Field = "is_best"
	FieldQualityScore      Field = "quality_score"
	FieldFormat            Field = "format"
	FieldCodec             Field = "codec"
	FieldBitrate           Field = "bitrate"
	FieldSampleRate        Field = "sample_rate"
	FieldBitDepth          Field = "bit_depth"
	FieldIsLossless        Field = "is_lossless"
	FieldFileSize          Field = "file_size"
	FieldSimilarityToBest  Field = "similarity_to_best"
	FieldMatchPercentage   Field = "match_percentage"
	FieldMatchMethod       Field = "match_method"
	FieldTrackCount        Field = "track_count"
	FieldAlbumIdentifier   Field = "album_identifier"
	FieldAlbumName         Field = "album_name"
	FieldArtistName        Field = "artist_name"
)

// Item is the flattened per-group-member projection condition evaluation
// runs against. A field absent for this item's kind (e.g. track_count on a
// track item) is represented by the field's key being absent from Values.
type Item struct {
	Values map[Field]interface{}
}

// Get returns a field's value and whether it is present. Absent fields
// evaluate per the operator semantics in operators.go, not as a zero value.
func (it Item) Get(f Field) (interface{}, bool) {
	v, ok := it.Values[f]
	return v, ok
}

// ProjectTrackMember builds the Item projection for a track-mode group
// member.
func ProjectTrackMember(g model.DuplicateGroup, m model.GroupMember) Item {
	t, ok := m.Item.(*model.TrackRecord)
	if !ok {
		return Item{Values: map[Field]interface{}{}}
	}
	v := map[Field]interface{}{
		FieldPath:             t.Path,
		FieldIsBest:           m.IsBest,
		FieldQualityScore:     t.Metadata.QualityScore,
		FieldCodec:            t.Metadata.Codec,
		FieldFormat:           t.Metadata.Codec,
		FieldIsLossless:       t.Metadata.Lossless,
		FieldFileSize:         t.Size,
		FieldSimilarityToBest: m.SimilarityToBest,
		FieldMatchPercentage:  m.MatchPercentage,
		FieldMatchMethod:      string(g.Method),
	}
	if t.Metadata.SampleRateHz > 0 {
		v[FieldSampleRate] = t.Metadata.SampleRateHz
	}
	if t.Metadata.BitDepth != nil {
		v[FieldBitDepth] = *t.Metadata.BitDepth
	}
	if t.Metadata.BitrateBitsPerSec != nil {
		v[FieldBitrate] = *t.Metadata.BitrateBitsPerSec
	}
	if t.Metadata.AlbumTag != "" {
		v[FieldAlbumName] = t.Metadata.AlbumTag
	}
	if t.Metadata.ArtistTag != "" {
		v[FieldArtistName] = t.Metadata.ArtistTag
	}
	if t.Metadata.AlbumIdentifier != "" {
		v[FieldAlbumIdentifier] = t.Metadata.AlbumIdentifier
	}
	return Item{Values: v}
}

// ProjectAlbumMember builds the Item projection for an album-mode group
// member.
func ProjectAlbumMember(g model.DuplicateGroup, m model.GroupMember) Item {
	a, ok := m.Item.(*model.Album)
	if !ok {
		return Item{Values: map[Field]interface{}{}}
	}
	v := map[Field]interface{}{
		FieldPath:             a.Path,
		FieldIsBest:           m.IsBest,
		FieldQualityScore:     a.AvgQualityScore,
		FieldFileSize:         a.TotalSize,
		FieldSimilarityToBest: m.SimilarityToBest,
		FieldMatchPercentage:  m.MatchPercentage,
		FieldMatchMethod:      string(g.Method),
		FieldTrackCount:       a.TrackCount,
	}
	if a.AlbumIdentifier != "" {
		v[FieldAlbumIdentifier] = a.AlbumIdentifier
	}
	albumName := a.AlbumName
	if m.MatchedAlbum != "" {
		albumName = m.MatchedAlbum
	}
	if albumName != "" {
		v[FieldAlbumName] = albumName
	}
	artistName := a.ArtistName
	if m.MatchedArtist != "" {
		artistName = m.MatchedArtist
	}
	if artistName != "" {
		v[FieldArtistName] = artistName
	}
	return Item{Values: v}
}
