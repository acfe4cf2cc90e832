package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ohtostado/duperscooper/internal/cache"
	"github.com/ohtostado/duperscooper/internal/fingerprint"
	"github.com/ohtostado/duperscooper/internal/model"
	"github.com/ohtostado/duperscooper/internal/quality"
)

// directAudioFiles lists the supported audio files directly inside dir
// (not recursive), sorted lexicographically by filename.
func directAudioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading album dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !fingerprint.IsSupportedExtension(filepath.Ext(e.Name())) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ScanAlbums builds an Album record for each directory in albumDirs. Each
// album's tracks are fingerprinted via ScanTracks using opts; a track whose
// fingerprint cannot be produced is recorded as a failure but does not
// prevent the album from being scannable as long as at least one track
// succeeds.
func ScanAlbums(ctx context.Context, albumDirs []string, c cache.Cache, opts Options) ([]model.Album, error) {
	albums := make([]model.Album, 0, len(albumDirs))
	for _, dir := range albumDirs {
		files, err := directAudioFiles(dir)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}
		res, err := ScanTracks(ctx, files, c, opts)
		if err != nil {
			return nil, err
		}
		albums = append(albums, buildAlbum(dir, res.Tracks))
	}
	return albums, nil
}

// buildAlbum aggregates a directory's TrackRecords into an Album: total
// size, average quality score, tag consensus for album/artist/identifier
// (most-common non-empty value, ties broken by first-seen order), and the
// mixed-identifiers flag.
func buildAlbum(dir string, tracks []model.TrackRecord) model.Album {
	a := model.Album{Path: dir, Tracks: tracks, TrackCount: len(tracks)}

	var scores []float64
	var losslessCount, lossyCount int
	var representative quality.Input
	bestScore := -1.0
	albumVotes := newConsensusVotes()
	artistVotes := newConsensusVotes()
	identifierVotes := newConsensusVotes()
	distinctIdentifiers := make(map[string]bool)

	for _, t := range tracks {
		a.TotalSize += t.Size
		if t.FingerprintFail != nil {
			a.FailedTrackCount++
		}
		if t.Metadata.QualityScore != 0 || !t.Metadata.Lossless {
			scores = append(scores, t.Metadata.QualityScore)
			if t.Metadata.Lossless {
				losslessCount++
			} else {
				lossyCount++
			}
			if t.Metadata.QualityScore > bestScore {
				bestScore = t.Metadata.QualityScore
				representative = quality.Input{
					Codec: t.Metadata.Codec, Lossless: t.Metadata.Lossless,
					SampleRateHz: t.Metadata.SampleRateHz, BitDepth: t.Metadata.BitDepth,
					BitrateBitsPerSec: t.Metadata.BitrateBitsPerSec,
				}
			}
		}
		if t.Metadata.AlbumTag != "" {
			albumVotes.vote(t.Metadata.AlbumTag)
		}
		if t.Metadata.ArtistTag != "" {
			artistVotes.vote(t.Metadata.ArtistTag)
		}
		if t.Metadata.AlbumIdentifier != "" {
			identifierVotes.vote(t.Metadata.AlbumIdentifier)
			distinctIdentifiers[t.Metadata.AlbumIdentifier] = true
		}
	}

	a.AlbumName = albumVotes.winner()
	a.ArtistName = artistVotes.winner()

	if len(distinctIdentifiers) > 1 {
		a.MixedIdentifiers = true
		a.AlbumIdentifier = ""
	} else {
		a.AlbumIdentifier = identifierVotes.winner()
	}

	if len(scores) > 0 {
		agg := quality.Aggregate(scores, losslessCount >= lossyCount, representative)
		a.AvgQualityScore = agg.Score
		a.AvgQualityString = agg.String
		a.AvgQualityIsAvg = agg.IsAvg
	}

	return a
}

// consensusVotes implements "most-common non-empty value, ties broken by
// insertion order" as used for album/artist/identifier tag consensus.
// Votes are counted against a diacritic/punctuation-folded key so that tag
// spelling variants (e.g. "Tiësto" vs "Tiesto") count toward the same
// candidate; the displayed winner is still the raw, unfolded string as first
// seen for that key, so folding never changes what the user sees, only which
// variants are grouped together for the vote.
type consensusVotes struct {
	order   []string
	count   map[string]int
	display map[string]string
}

func newConsensusVotes() *consensusVotes {
	return &consensusVotes{count: make(map[string]int), display: make(map[string]string)}
}

func (v *consensusVotes) vote(value string) {
	key := consensusKey(value)
	if _, ok := v.count[key]; !ok {
		v.order = append(v.order, key)
		v.display[key] = value
	}
	v.count[key]++
}

func (v *consensusVotes) winner() string {
	best := ""
	bestCount := 0
	for _, candidate := range v.order {
		c := v.count[candidate]
		if c > bestCount {
			best = v.display[candidate]
			bestCount = c
		}
	}
	return best
}
