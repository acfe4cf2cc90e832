package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ohtostado/duperscooper/internal/serialize"
)

// writeScanOutput renders a scan result in one of the three supported
// shapes: record-oriented JSON, flat CSV, or a human-readable text table.
func writeScanOutput(w io.Writer, result serialize.ScanResult, shape string) error {
	switch shape {
	case "record":
		data, err := serialize.WriteJSON(result)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "flat":
		data, err := serialize.WriteFlat(result)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return writeScanText(w, result)
	}
}

func writeScanText(w io.Writer, result serialize.ScanResult) error {
	if result.TotalGroups == 0 {
		fmt.Fprintln(w, "no duplicates found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	for _, g := range result.Groups {
		header := fmt.Sprintf("group %s (%s, %d items)", g.GroupID, g.Method, len(g.Items))
		if g.MatchedAlbum != "" {
			header += fmt.Sprintf(" — %s / %s", g.MatchedArtist, g.MatchedAlbum)
		}
		fmt.Fprintln(tw, header)
		for _, it := range g.Items {
			action := string(it.RecommendedAction)
			best := ""
			if it.IsBest {
				best = "*"
			}
			qualityInfo := it.QualityInfo
			if it.QualityIsAvg {
				qualityInfo += " (avg)"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%.1f%%\t%s\t%s\n", best, it.Path, it.SimilarityToBest, qualityInfo, action)
		}
	}
	return tw.Flush()
}
