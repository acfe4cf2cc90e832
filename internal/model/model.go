// Package model holds the data shapes shared across duperscooper's scan,
// grouping, matching, staging, and rules subsystems.
package model

import "time"

// Fingerprint is an ordered sequence of 32-bit integers produced by the
// external fingerprinter tool. Two fingerprints are only comparable over
// their common prefix (the shorter of the two lengths).
type Fingerprint []uint32

// RecommendedAction is the per-item disposition assigned within a
// DuplicateGroup.
type RecommendedAction string

const (
	ActionKeep   RecommendedAction = "keep"
	ActionDelete RecommendedAction = "delete"
)

// Metadata is the derived, per-track information produced by the metadata
// probe and the quality scorer. Optional fields use pointers so that
// "absent" is distinguishable from a zero value.
type Metadata struct {
	Codec             string
	SampleRateHz      int
	BitDepth          *int
	BitrateBitsPerSec *int
	Channels          int
	Lossless          bool
	QualityScore      float64
	QualityString     string
	AlbumTag          string
	ArtistTag         string
	AlbumIdentifier   string
}

// TrackRecord is an immutable, per-file record produced by a scan.
type TrackRecord struct {
	Path            string
	Size            int64
	ContentHash     string
	Fingerprint     Fingerprint
	DurationMs      int
	Metadata        Metadata
	FingerprintFail *FingerprintFailure
}

// FingerprintFailure describes why a track could not be fingerprinted; the
// track is still counted, but excluded from fuzzy grouping.
type FingerprintFailure struct {
	Kind   FailureKind
	Detail string
}

// FailureKind is the closed set of per-file fingerprinting/probe failures.
type FailureKind string

const (
	FailureUnreadable       FailureKind = "unreadable"
	FailureUnsupportedForm  FailureKind = "unsupported-format"
	FailureToolMissing      FailureKind = "tool-missing"
	FailureToolError        FailureKind = "tool-error"
)

// Album is a directory-level aggregate of TrackRecords.
type Album struct {
	Path              string
	Tracks            []TrackRecord
	TrackCount        int
	TotalSize         int64
	AvgQualityScore   float64
	AvgQualityString  string
	AvgQualityIsAvg   bool
	AlbumIdentifier   string
	MixedIdentifiers  bool
	AlbumName         string
	ArtistName        string
	FailedTrackCount  int
}

// IsCanonical reports whether an album has enough tag information to serve
// as a match target for non-canonical albums under the "auto" strategy.
func (a Album) IsCanonical() bool {
	if a.AlbumIdentifier != "" {
		return true
	}
	return a.AlbumName != "" && a.ArtistName != ""
}

// GroupMember pairs a TrackRecord or Album reference with its per-group
// annotations. Item carries either a *TrackRecord or an *Album depending on
// the group's Mode.
type GroupMember struct {
	Item              interface{}
	SimilarityToBest  float64
	IsBest            bool
	RecommendedAction RecommendedAction
	MatchPercentage   float64
	Confidence        float64
	MatchedAlbum      string
	MatchedArtist     string
}

// GroupMode distinguishes track-level from album-level duplicate groups.
type GroupMode string

const (
	ModeTrack GroupMode = "track"
	ModeAlbum GroupMode = "album"
)

// MatchMethod records which album-matching strategy produced a group.
type MatchMethod string

const (
	MatchIdentifier  MatchMethod = "identifier"
	MatchFingerprint MatchMethod = "fingerprint"
	MatchInherited   MatchMethod = "inherited"
	MatchExact       MatchMethod = "exact"
	MatchPerceptual  MatchMethod = "perceptual"
)

// DuplicateGroup is a set of at least two equivalent items, with a
// distinguished best member.
type DuplicateGroup struct {
	ID            string
	Mode          GroupMode
	Method        MatchMethod
	Members       []GroupMember
	MatchedAlbum  string
	MatchedArtist string
}

// CacheEntry is a single row in the fingerprint cache, keyed externally by
// content hash.
type CacheEntry struct {
	ContentHash  string
	Fingerprint  Fingerprint
	Algorithm    string
	InsertedAt   time.Time
	LastAccessAt time.Time
}

// CacheStats summarizes counters for one process's cache usage.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Size    int64
	Backend string
}

// StagingItem is a single moved file's provenance within a StagingBatch.
type StagingItem struct {
	OriginalPath string
	StagedSubpath string
	Size         int64
	ContentHash  string
	Restored     bool
}

// StagingBatch is a UUID-named directory of staged (soft-deleted) files plus
// its manifest.
type StagingBatch struct {
	UUID      string
	CreatedAt time.Time
	Mode      GroupMode
	Items     []StagingItem
}

// RestorationState summarizes how much of a batch has been restored.
type RestorationState string

const (
	RestorationNone    RestorationState = "none"
	RestorationPartial RestorationState = "partial"
	RestorationAll     RestorationState = "all"
)

// State derives the batch's aggregate restoration state from its items.
func (b StagingBatch) State() RestorationState {
	restored := 0
	for _, it := range b.Items {
		if it.Restored {
			restored++
		}
	}
	switch {
	case restored == 0:
		return RestorationNone
	case restored == len(b.Items):
		return RestorationAll
	default:
		return RestorationPartial
	}
}
