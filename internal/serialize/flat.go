package serialize

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// flatHeader is the documented column order for the flat tabular shape:
// every per-item field, plus group id and, for album mode, matched
// album/artist.
var flatHeader = []string{
	"group_id", "mode", "method", "matched_album", "matched_artist",
	"path", "size", "quality_info", "quality_score", "similarity_to_best",
	"match_percentage", "confidence", "is_best", "recommended_action",
	"format", "codec", "bitrate", "sample_rate", "bit_depth", "is_lossless",
	"track_count", "album_identifier", "quality_is_avg",
}

// WriteFlat renders the flat tabular (CSV) shape, one row per item.
func WriteFlat(result ScanResult) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(flatHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, g := range result.Groups {
		for _, it := range g.Items {
			row := []string{
				g.GroupID, string(g.Mode), string(g.Method), g.MatchedAlbum, g.MatchedArtist,
				it.Path, strconv.FormatInt(it.Size, 10), it.QualityInfo,
				strconv.FormatFloat(it.QualityScore, 'f', -1, 64),
				strconv.FormatFloat(it.SimilarityToBest, 'f', -1, 64),
				strconv.FormatFloat(it.MatchPercentage, 'f', -1, 64),
				strconv.FormatFloat(it.Confidence, 'f', -1, 64),
				strconv.FormatBool(it.IsBest), string(it.RecommendedAction),
				it.Format, it.Codec, strconv.Itoa(it.Bitrate), strconv.Itoa(it.SampleRate),
				strconv.Itoa(it.BitDepth), strconv.FormatBool(it.IsLossless),
				strconv.Itoa(it.TrackCount), it.AlbumIdentifier, strconv.FormatBool(it.QualityIsAvg),
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("writing csv row: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return []byte(sb.String()), nil
}

// ReadFlat parses a previously-written flat tabular document back into a
// ScanResult, reconstructing groups from the group_id column.
func ReadFlat(data []byte) (ScanResult, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	rows, err := r.ReadAll()
	if err != nil {
		return ScanResult{}, fmt.Errorf("parsing csv: %w", err)
	}
	if len(rows) == 0 {
		return ScanResult{}, nil
	}
	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}

	groupsByID := make(map[string]*Group)
	var order []string
	result := ScanResult{}
	for _, row := range rows[1:] {
		get := func(name string) string {
			if i, ok := col[name]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}
		gid := get("group_id")
		g, ok := groupsByID[gid]
		if !ok {
			g = &Group{
				GroupID:       gid,
				Mode:          modeFromString(get("mode")),
				Method:        matchMethodFromString(get("method")),
				MatchedAlbum:  get("matched_album"),
				MatchedArtist: get("matched_artist"),
			}
			groupsByID[gid] = g
			order = append(order, gid)
		}
		size, _ := strconv.ParseInt(get("size"), 10, 64)
		qscore, _ := strconv.ParseFloat(get("quality_score"), 64)
		sim, _ := strconv.ParseFloat(get("similarity_to_best"), 64)
		matchPct, _ := strconv.ParseFloat(get("match_percentage"), 64)
		confidence, _ := strconv.ParseFloat(get("confidence"), 64)
		isBest, _ := strconv.ParseBool(get("is_best"))
		bitrate, _ := strconv.Atoi(get("bitrate"))
		sampleRate, _ := strconv.Atoi(get("sample_rate"))
		bitDepth, _ := strconv.Atoi(get("bit_depth"))
		isLossless, _ := strconv.ParseBool(get("is_lossless"))
		trackCount, _ := strconv.Atoi(get("track_count"))
		qualityIsAvg, _ := strconv.ParseBool(get("quality_is_avg"))

		g.Items = append(g.Items, ItemRecord{
			Path:              get("path"),
			Size:              size,
			QualityInfo:       get("quality_info"),
			QualityScore:      qscore,
			SimilarityToBest:  sim,
			MatchPercentage:   matchPct,
			Confidence:        confidence,
			IsBest:            isBest,
			RecommendedAction: recommendedActionFromString(get("recommended_action")),
			Format:            get("format"),
			Codec:             get("codec"),
			Bitrate:           bitrate,
			SampleRate:        sampleRate,
			BitDepth:          bitDepth,
			IsLossless:        isLossless,
			TrackCount:        trackCount,
			AlbumIdentifier:   get("album_identifier"),
			QualityIsAvg:      qualityIsAvg,
		})
		result.TotalDuplicates++
	}

	for _, gid := range order {
		result.Groups = append(result.Groups, *groupsByID[gid])
	}
	result.TotalGroups = len(result.Groups)
	return result, nil
}
