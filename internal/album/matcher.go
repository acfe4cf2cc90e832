// Package album implements the album matching engine: identifier-based,
// fingerprint-based, and auto (canonical-inheritance) strategies, plus the
// presentation-only confidence model.
//
// New relative to the teacher (which has no album-level concept); the
// two-phase accumulate-then-finalize shape follows the teacher's
// duplicateGroupBuilder -> buildDuplicateGroups pattern in
// quality_upgrade.go, generalized from tracks to albums.
package album

import (
	"path/filepath"
	"sort"

	"github.com/ohtostado/duperscooper/internal/group"
	"github.com/ohtostado/duperscooper/internal/model"
)

// Strategy selects an album matching strategy.
type Strategy string

const (
	StrategyIdentifier  Strategy = "identifier"
	StrategyFingerprint Strategy = "fingerprint"
	StrategyAuto        Strategy = "auto"
)

// Options configures album matching.
type Options struct {
	Strategy      Strategy
	Threshold     float64 // default 97.0, same scale as track similarity
	Partial       bool
	MinOverlap    float64 // min_count/max_count required when Partial is set
}

// Match runs the configured strategy over albums and returns the resulting
// duplicate groups.
func Match(albums []model.Album, opts Options) []model.DuplicateGroup {
	threshold := group.ClampThreshold(opts.Threshold)
	switch opts.Strategy {
	case StrategyIdentifier:
		return matchByIdentifier(albums, indices(len(albums)))
	case StrategyFingerprint:
		return matchByFingerprint(albums, threshold, opts)
	default:
		return matchAuto(albums, threshold, opts)
	}
}

// matchByIdentifier partitions the given subset of albums by (identifier,
// track count). Partitions with any mixed-identifiers member are excluded
// (mixed-identifiers albums never have a non-empty AlbumIdentifier here, so
// they're naturally skipped). Confidence is 100% for every member.
func matchByIdentifier(albums []model.Album, subset []int) []model.DuplicateGroup {
	type key struct {
		id    string
		count int
	}
	byKey := make(map[key][]int)
	var order []key
	for _, i := range subset {
		a := albums[i]
		if a.MixedIdentifiers || a.AlbumIdentifier == "" {
			continue
		}
		k := key{id: a.AlbumIdentifier, count: a.TrackCount}
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], i)
	}
	var groups []model.DuplicateGroup
	for _, k := range order {
		idxs := byKey[k]
		if len(idxs) < 2 {
			continue
		}
		g := buildAlbumGroup(albums, idxs, model.MatchIdentifier)
		for i := range g.Members {
			g.Members[i].Confidence = 100
		}
		groups = append(groups, g)
	}
	return groups
}

// matchByFingerprint pairwise-compares albums via mean per-track Hamming
// similarity (tracks sorted by filename on each side) and unions pairs
// meeting threshold (or the partial-overlap condition).
func matchByFingerprint(albums []model.Album, threshold float64, opts Options) []model.DuplicateGroup {
	return matchByFingerprintSubset(albums, indices(len(albums)), threshold, opts)
}

func indices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// matchByFingerprintSubset runs fingerprint matching restricted to the
// given album indices (used both standalone and within the auto strategy's
// canonical-only pass).
func matchByFingerprintSubset(albums []model.Album, subset []int, threshold float64, opts Options) []model.DuplicateGroup {
	uf := newLocalUnionFind(len(subset))
	for a := 0; a < len(subset); a++ {
		for b := a + 1; b < len(subset); b++ {
			ai, bi := subset[a], subset[b]
			sim, ok := meanTrackSimilarity(albums[ai], albums[bi], opts)
			if !ok {
				continue
			}
			if sim >= threshold {
				uf.union(a, b)
			}
		}
	}
	var groups []model.DuplicateGroup
	for _, comp := range uf.components() {
		if len(comp) < 2 {
			continue
		}
		idxs := make([]int, len(comp))
		for k, li := range comp {
			idxs[k] = subset[li]
		}
		groups = append(groups, buildAlbumGroup(albums, idxs, model.MatchFingerprint))
	}
	return groups
}

// meanTrackSimilarity computes the arithmetic mean of per-track Hamming
// similarities between two albums, after sorting each album's tracks by
// filename. Track counts must match exactly unless Partial mode is
// enabled and the overlap ratio clears MinOverlap, in which case only the
// first min(count) pairs (by sorted order) are compared.
func meanTrackSimilarity(a, b model.Album, opts Options) (float64, bool) {
	ta := sortedByFilename(a.Tracks)
	tb := sortedByFilename(b.Tracks)

	n := len(ta)
	if len(tb) != n {
		if !opts.Partial {
			return 0, false
		}
		minCount, maxCount := len(ta), len(tb)
		if minCount > maxCount {
			minCount, maxCount = maxCount, minCount
		}
		if maxCount == 0 || float64(minCount)/float64(maxCount) < opts.MinOverlap {
			return 0, false
		}
		n = minCount
	}
	if n == 0 {
		return 0, false
	}

	var sum float64
	compared := 0
	for i := 0; i < n; i++ {
		sim, ok := group.Similarity(ta[i].Fingerprint, tb[i].Fingerprint)
		if !ok {
			continue
		}
		sum += sim
		compared++
	}
	if compared == 0 {
		return 0, false
	}
	return sum / float64(compared), true
}

func sortedByFilename(tracks []model.TrackRecord) []model.TrackRecord {
	sorted := make([]model.TrackRecord, len(tracks))
	copy(sorted, tracks)
	sort.Slice(sorted, func(i, j int) bool {
		return filepath.Base(sorted[i].Path) < filepath.Base(sorted[j].Path)
	})
	return sorted
}

// matchAuto partitions albums into canonical and non-canonical, identifier-
// matches then fingerprint-matches the canonicals, then assigns each
// non-canonical album to the canonical group with maximal mean similarity
// at or above threshold; the non-canonical inherits the group's matched
// album/artist for display.
func matchAuto(albums []model.Album, threshold float64, opts Options) []model.DuplicateGroup {
	var canonicalIdx, nonCanonicalIdx []int
	for i, a := range albums {
		if a.IsCanonical() {
			canonicalIdx = append(canonicalIdx, i)
		} else {
			nonCanonicalIdx = append(nonCanonicalIdx, i)
		}
	}

	groups := matchByIdentifier(albums, canonicalIdx)
	matchedByID := make(map[int]bool)
	for _, g := range groups {
		for _, m := range g.Members {
			a := m.Item.(*model.Album)
			for _, i := range canonicalIdx {
				if &albums[i] == a {
					matchedByID[i] = true
				}
			}
		}
	}

	var remainingCanonical []int
	for _, i := range canonicalIdx {
		if !matchedByID[i] {
			remainingCanonical = append(remainingCanonical, i)
		}
	}
	fpGroups := matchByFingerprintSubset(albums, remainingCanonical, threshold, opts)
	groups = append(groups, fpGroups...)

	for _, nc := range nonCanonicalIdx {
		bestGroup := -1
		bestSim := -1.0
		for gi := range groups {
			sim, matched := bestSimilarityToGroup(albums, groups[gi], nc, opts)
			if !matched {
				continue
			}
			if sim >= threshold && sim > bestSim {
				bestSim = sim
				bestGroup = gi
			}
		}
		if bestGroup < 0 {
			continue
		}
		member := model.GroupMember{
			Item:              &albums[nc],
			SimilarityToBest:  bestSim,
			MatchPercentage:   bestSim,
			RecommendedAction: model.ActionDelete,
			MatchedAlbum:      groups[bestGroup].MatchedAlbum,
			MatchedArtist:     groups[bestGroup].MatchedArtist,
		}
		member.Confidence = inheritedConfidence(bestSim)
		groups[bestGroup].Members = append(groups[bestGroup].Members, member)
		groups[bestGroup].Method = model.MatchInherited
	}

	for gi := range groups {
		finalizeAlbumGroup(albums, &groups[gi])
	}
	return groups
}

func bestSimilarityToGroup(albums []model.Album, g model.DuplicateGroup, albumIdx int, opts Options) (float64, bool) {
	var best float64
	found := false
	for _, m := range g.Members {
		other, ok := m.Item.(*model.Album)
		if !ok {
			continue
		}
		sim, ok := meanTrackSimilarity(albums[albumIdx], *other, opts)
		if !ok {
			continue
		}
		if !found || sim > best {
			best = sim
			found = true
		}
	}
	return best, found
}

// inheritedConfidence applies the 98-100% linear scaling bonus on top of
// the 80% base for a non-canonical album that inherited a canonical
// group's identity via fingerprint similarity.
func inheritedConfidence(similarity float64) float64 {
	return Confidence(ConfidenceInput{
		Base:               80,
		FingerprintSimilarity: similarity,
	})
}

// buildAlbumGroup selects the best album (max aggregate quality score,
// lexicographic path tiebreak) and annotates similarity-to-best.
func buildAlbumGroup(albums []model.Album, idxs []int, method model.MatchMethod) model.DuplicateGroup {
	bestIdx := idxs[0]
	for _, i := range idxs[1:] {
		if betterAlbum(albums[i], albums[bestIdx]) {
			bestIdx = i
		}
	}

	matchedAlbum := albums[bestIdx].AlbumName
	matchedArtist := albums[bestIdx].ArtistName

	members := make([]model.GroupMember, 0, len(idxs))
	for _, i := range idxs {
		a := albums[i]
		sim := 100.0
		if i != bestIdx {
			if s, ok := meanTrackSimilarity(a, albums[bestIdx], Options{}); ok {
				sim = s
			}
		}
		action := model.ActionDelete
		if i == bestIdx {
			action = model.ActionKeep
		}
		confidence := 100.0
		if method != model.MatchIdentifier && i != bestIdx {
			confidence = Confidence(ConfidenceInput{
				Base:                  80,
				AlbumTagMatches:       a.AlbumName != "" && a.AlbumName == matchedAlbum,
				ArtistTagMatches:      a.ArtistName != "" && a.ArtistName == matchedArtist,
				FingerprintSimilarity: sim,
			})
		}
		members = append(members, model.GroupMember{
			Item:              &albums[i],
			SimilarityToBest:  sim,
			IsBest:            i == bestIdx,
			RecommendedAction: action,
			MatchPercentage:   sim,
			Confidence:        confidence,
			MatchedAlbum:      matchedAlbum,
			MatchedArtist:     matchedArtist,
		})
	}

	sortAlbumMembers(members)

	return model.DuplicateGroup{
		Mode:          model.ModeAlbum,
		Method:        method,
		Members:       members,
		MatchedAlbum:  matchedAlbum,
		MatchedArtist: matchedArtist,
	}
}

// finalizeAlbumGroup re-sorts members (including any inherited
// non-canonicals appended after initial construction) and recomputes the
// best-by-quality selection.
func finalizeAlbumGroup(albums []model.Album, g *model.DuplicateGroup) {
	if len(g.Members) == 0 {
		return
	}
	bestLocal := 0
	for i, m := range g.Members {
		a, ok := m.Item.(*model.Album)
		if !ok {
			continue
		}
		best, ok := g.Members[bestLocal].Item.(*model.Album)
		if !ok || betterAlbum(*a, *best) {
			bestLocal = i
		}
	}
	for i := range g.Members {
		g.Members[i].IsBest = i == bestLocal
		if i == bestLocal {
			g.Members[i].RecommendedAction = model.ActionKeep
			g.Members[i].SimilarityToBest = 100
		} else {
			g.Members[i].RecommendedAction = model.ActionDelete
		}
	}
	sortAlbumMembers(g.Members)
}

func sortAlbumMembers(members []model.GroupMember) {
	sort.SliceStable(members, func(a, b int) bool {
		if members[a].IsBest != members[b].IsBest {
			return members[a].IsBest
		}
		if members[a].SimilarityToBest != members[b].SimilarityToBest {
			return members[a].SimilarityToBest > members[b].SimilarityToBest
		}
		pa := members[a].Item.(*model.Album).Path
		pb := members[b].Item.(*model.Album).Path
		return pa < pb
	})
}

func betterAlbum(candidate, current model.Album) bool {
	if candidate.AvgQualityScore != current.AvgQualityScore {
		return candidate.AvgQualityScore > current.AvgQualityScore
	}
	return candidate.Path < current.Path
}

// localUnionFind mirrors internal/group's union-find but stays local to
// this package to avoid exporting it solely for album index spaces.
type localUnionFind struct {
	parent []int
	rank   []int
}

func newLocalUnionFind(n int) *localUnionFind {
	uf := &localUnionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *localUnionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *localUnionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

func (uf *localUnionFind) components() [][]int {
	byRoot := make(map[int][]int)
	var roots []int
	for i := range uf.parent {
		r := uf.find(i)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], i)
	}
	out := make([][]int, 0, len(roots))
	for _, r := range roots {
		out = append(out, byRoot[r])
	}
	return out
}
