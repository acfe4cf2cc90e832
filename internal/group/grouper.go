// Package group implements the duplicate-track grouper: exact-hash
// partitioning, fuzzy Hamming-similarity clustering via union-find, and the
// best/similarity/recommended-action annotation within each resulting
// group.
//
// Grounded on the teacher's FingerprintsMatch-driven clustering in
// duplicate_scan.go, replaced here with a true union-find (the teacher
// merges into the first matching existing group, which is only correct
// because its matches are transitively consistent in practice; this system
// needs the symmetric/transitive guarantee union-find provides).
package group

import (
	"sort"

	"github.com/ohtostado/duperscooper/internal/fingerprint"
	"github.com/ohtostado/duperscooper/internal/model"
)

// DefaultThreshold is the default fuzzy-similarity percentage required for
// two tracks to be considered duplicates.
const DefaultThreshold = 97.0

// Algorithm selects exact or perceptual grouping.
type Algorithm string

const (
	AlgorithmExact      Algorithm = "exact"
	AlgorithmPerceptual Algorithm = "perceptual"
)

// ClampThreshold clamps a configured threshold into [0, 100].
func ClampThreshold(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 100 {
		return 100
	}
	return t
}

// Group partitions tracks into duplicate groups according to algorithm.
// The input slice order is assumed to already be the deterministic
// discovery order; Group does not reorder it, only annotates and selects
// within groups.
func Group(tracks []model.TrackRecord, algorithm Algorithm, threshold float64) []model.DuplicateGroup {
	switch algorithm {
	case AlgorithmExact:
		return groupExact(tracks)
	default:
		return groupFuzzy(tracks, ClampThreshold(threshold))
	}
}

func groupExact(tracks []model.TrackRecord) []model.DuplicateGroup {
	byHash := make(map[string][]int)
	var order []string
	for i, t := range tracks {
		if t.ContentHash == "" {
			continue
		}
		if _, ok := byHash[t.ContentHash]; !ok {
			order = append(order, t.ContentHash)
		}
		byHash[t.ContentHash] = append(byHash[t.ContentHash], i)
	}
	var groups []model.DuplicateGroup
	for _, h := range order {
		idxs := byHash[h]
		if len(idxs) < 2 {
			continue
		}
		groups = append(groups, buildGroup(tracks, idxs, model.MatchExact))
	}
	return groups
}

func groupFuzzy(tracks []model.TrackRecord, threshold float64) []model.DuplicateGroup {
	eligible := make([]int, 0, len(tracks))
	for i, t := range tracks {
		if t.FingerprintFail == nil && len(t.Fingerprint) > 0 {
			eligible = append(eligible, i)
		}
	}
	uf := newUnionFind(len(eligible))
	pos := make(map[int]int, len(eligible)) // track index -> union-find index
	for ufi, ti := range eligible {
		pos[ti] = ufi
	}
	for a := 0; a < len(eligible); a++ {
		for b := a + 1; b < len(eligible); b++ {
			ti, tj := eligible[a], eligible[b]
			if !fingerprint.DurationCloseEnough(tracks[ti].DurationMs, tracks[tj].DurationMs) {
				continue
			}
			sim, ok := Similarity(tracks[ti].Fingerprint, tracks[tj].Fingerprint)
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
		for k, ufi := range comp {
			idxs[k] = eligible[ufi]
		}
		groups = append(groups, buildGroup(tracks, idxs, model.MatchPerceptual))
	}
	return groups
}

// buildGroup selects the best member (max quality score, lexicographic path
// tiebreak), computes similarity-to-best for the rest, and assigns
// recommended actions.
func buildGroup(tracks []model.TrackRecord, idxs []int, method model.MatchMethod) model.DuplicateGroup {
	bestIdx := idxs[0]
	for _, i := range idxs[1:] {
		if betterTrack(tracks[i], tracks[bestIdx]) {
			bestIdx = i
		}
	}

	members := make([]model.GroupMember, 0, len(idxs))
	for _, i := range idxs {
		t := tracks[i]
		sim := 100.0
		if i != bestIdx {
			if s, ok := Similarity(t.Fingerprint, tracks[bestIdx].Fingerprint); ok {
				sim = s
			} else if method == model.MatchExact {
				sim = 100.0
			} else {
				sim = 0
			}
		}
		action := model.ActionDelete
		if i == bestIdx {
			action = model.ActionKeep
		}
		members = append(members, model.GroupMember{
			Item:              &tracks[i],
			SimilarityToBest:  sim,
			IsBest:            i == bestIdx,
			RecommendedAction: action,
			MatchPercentage:   sim,
		})
	}

	sort.SliceStable(members, func(a, b int) bool {
		if members[a].IsBest != members[b].IsBest {
			return members[a].IsBest
		}
		if members[a].SimilarityToBest != members[b].SimilarityToBest {
			return members[a].SimilarityToBest > members[b].SimilarityToBest
		}
		pa := members[a].Item.(*model.TrackRecord).Path
		pb := members[b].Item.(*model.TrackRecord).Path
		return pa < pb
	})

	return model.DuplicateGroup{
		Mode:    model.ModeTrack,
		Method:  method,
		Members: members,
	}
}

// betterTrack reports whether candidate outranks current as the group's
// best: higher quality score, ties broken by lexicographically smaller
// path.
func betterTrack(candidate, current model.TrackRecord) bool {
	if candidate.Metadata.QualityScore != current.Metadata.QualityScore {
		return candidate.Metadata.QualityScore > current.Metadata.QualityScore
	}
	return candidate.Path < current.Path
}
