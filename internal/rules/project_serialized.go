package rules

import "github.com/ohtostado/duperscooper/internal/serialize"

// ProjectSerialized builds the Item projection the apply pipeline
// evaluates rules against, from a previously-serialized scan result. This
// is the primary projection path: apply consumes serialized output, not
// live TrackRecord/Album values.
func ProjectSerialized(g serialize.Group, it serialize.ItemRecord) Item {
	v := map[Field]interface{}{
		FieldPath:             it.Path,
		FieldIsBest:           it.IsBest,
		FieldQualityScore:     it.QualityScore,
		FieldFileSize:         it.Size,
		FieldSimilarityToBest: it.SimilarityToBest,
		FieldMatchPercentage:  it.MatchPercentage,
		FieldMatchMethod:      string(g.Method),
		FieldIsLossless:       it.IsLossless,
	}
	if it.Format != "" {
		v[FieldFormat] = it.Format
	}
	if it.Codec != "" {
		v[FieldCodec] = it.Codec
	}
	if it.Bitrate != 0 {
		v[FieldBitrate] = it.Bitrate
	}
	if it.SampleRate != 0 {
		v[FieldSampleRate] = it.SampleRate
	}
	if it.BitDepth != 0 {
		v[FieldBitDepth] = it.BitDepth
	}
	if it.TrackCount != 0 {
		v[FieldTrackCount] = it.TrackCount
	}
	if it.AlbumIdentifier != "" {
		v[FieldAlbumIdentifier] = it.AlbumIdentifier
	}
	albumName := g.MatchedAlbum
	if albumName != "" {
		v[FieldAlbumName] = albumName
	}
	artistName := g.MatchedArtist
	if artistName != "" {
		v[FieldArtistName] = artistName
	}
	return Item{Values: v}
}
