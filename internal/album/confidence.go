package album

// ConfidenceInput carries the inputs to the presentation-only confidence
// model. Confidence never affects group membership.
type ConfidenceInput struct {
	Base                  float64 // 100 for identifier matches, 80 for others
	AlbumTagMatches        bool
	ArtistTagMatches       bool
	FingerprintSimilarity float64
}

// Confidence computes the per-album display confidence:
//   - Identifier-matched member: 100% (callers pass Base=100 directly).
//   - Otherwise: 80% base + 5% if album-tag matches the group's matched
//     album + 5% if artist-tag matches the group's matched artist + up to
//     10% scaled linearly over the 98-100% fingerprint-similarity range.
func Confidence(in ConfidenceInput) float64 {
	if in.Base == 100 {
		return 100
	}
	c := in.Base
	if in.AlbumTagMatches {
		c += 5
	}
	if in.ArtistTagMatches {
		c += 5
	}
	c += similarityBonus(in.FingerprintSimilarity)
	if c > 100 {
		c = 100
	}
	return c
}

// similarityBonus linearly scales a bonus of up to 10 points over the
// 98-100% fingerprint-similarity range, clamped to [0, 10]. This is a
// deterministic monotone function chosen per the spec's open question on
// the exact shape of the 98-100% scaling.
func similarityBonus(similarity float64) float64 {
	if similarity <= 98 {
		return 0
	}
	if similarity >= 100 {
		return 10
	}
	return 10 * (similarity - 98) / 2
}
