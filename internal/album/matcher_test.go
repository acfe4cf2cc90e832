package album

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohtostado/duperscooper/internal/model"
)

func albumTrack(path string, fp model.Fingerprint) model.TrackRecord {
	return model.TrackRecord{Path: path, Fingerprint: fp}
}

func makeAlbum(path, identifier string, mixed bool, trackCount int, fp model.Fingerprint, score float64, albumName, artistName string) model.Album {
	tracks := make([]model.TrackRecord, trackCount)
	for i := range tracks {
		tracks[i] = albumTrack(path+"/track.flac", fp)
	}
	return model.Album{
		Path:             path,
		Tracks:           tracks,
		TrackCount:       trackCount,
		AlbumIdentifier:  identifier,
		MixedIdentifiers: mixed,
		AvgQualityScore:  score,
		AlbumName:        albumName,
		ArtistName:       artistName,
	}
}

func TestMatchByIdentifierGroupsSameIDAndCount(t *testing.T) {
	albums := []model.Album{
		makeAlbum("/a1", "mbid-x", false, 3, model.Fingerprint{1, 2, 3}, 11644, "Album", "Artist"),
		makeAlbum("/a2", "mbid-x", false, 3, model.Fingerprint{1, 2, 3}, 320, "Album", "Artist"),
	}
	groups := Match(albums, Options{Strategy: StrategyIdentifier})
	require.Len(t, groups, 1)
	for _, m := range groups[0].Members {
		assert.Equal(t, 100.0, m.Confidence, "identifier-matched members must have 100%% confidence")
	}
}

func TestMatchByIdentifierRejectsMixedIdentifiers(t *testing.T) {
	albums := []model.Album{
		makeAlbum("/a1", "", true, 3, model.Fingerprint{1, 2, 3}, 100, "Album", "Artist"),
		makeAlbum("/a2", "mbid-x", false, 3, model.Fingerprint{1, 2, 3}, 100, "Album", "Artist"),
	}
	groups := Match(albums, Options{Strategy: StrategyIdentifier})
	require.Empty(t, groups, "a mixed-identifiers album must never match via the identifier strategy")
}

func TestMatchByIdentifierRequiresExactTrackCount(t *testing.T) {
	albums := []model.Album{
		makeAlbum("/a1", "mbid-x", false, 3, model.Fingerprint{1, 2, 3}, 100, "Album", "Artist"),
		makeAlbum("/a2", "mbid-x", false, 4, model.Fingerprint{1, 2, 3}, 100, "Album", "Artist"),
	}
	groups := Match(albums, Options{Strategy: StrategyIdentifier, Partial: true, MinOverlap: 0.1})
	require.Empty(t, groups, "identifier strategy must require exact track-count equality even in partial mode")
}

func TestMatchAutoCanonicalInheritance(t *testing.T) {
	fp := model.Fingerprint{0x1, 0x2, 0x3}
	canonicalA := makeAlbum("/canonical-a", "mbid-x", false, 3, fp, 11644, "Album", "Artist")
	canonicalB := makeAlbum("/canonical-b", "mbid-x", false, 3, fp, 320, "Album", "Artist")
	untagged := makeAlbum("/untagged", "", false, 3, fp, 64, "", "")

	albums := []model.Album{canonicalA, canonicalB, untagged}
	groups := Match(albums, Options{Strategy: StrategyAuto, Threshold: 97})

	require.Len(t, groups, 1)
	g := groups[0]
	require.Len(t, g.Members, 3, "expected 2 canonical + 1 inherited")
	assert.Equal(t, "Album", g.MatchedAlbum)
	assert.Equal(t, "Artist", g.MatchedArtist)
	for _, m := range g.Members {
		a := m.Item.(*model.Album)
		if a.Path == "/untagged" {
			assert.GreaterOrEqual(t, m.Confidence, 88.0, "inherited confidence must be in [88,95]")
			assert.LessOrEqual(t, m.Confidence, 95.0, "inherited confidence must be in [88,95]")
		}
	}
}

func TestMatchAutoIdentifierTakesPrecedenceOverFingerprint(t *testing.T) {
	fp := model.Fingerprint{0x1, 0x2, 0x3}
	a := makeAlbum("/a1", "mbid-x", false, 3, fp, 100, "Album", "Artist")
	b := makeAlbum("/a2", "mbid-x", false, 3, fp, 90, "Album", "Artist")
	groups := Match([]model.Album{a, b}, Options{Strategy: StrategyAuto, Threshold: 97})
	require.Len(t, groups, 1)
	assert.Equal(t, model.MatchIdentifier, groups[0].Method, "expected identifier method to win when both albums share an id")
}
