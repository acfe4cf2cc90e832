package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ohtostado/duperscooper/internal/album"
	"github.com/ohtostado/duperscooper/internal/cache"
	"github.com/ohtostado/duperscooper/internal/fingerprint"
	"github.com/ohtostado/duperscooper/internal/group"
	"github.com/ohtostado/duperscooper/internal/logging"
	"github.com/ohtostado/duperscooper/internal/model"
	"github.com/ohtostado/duperscooper/internal/scan"
	"github.com/ohtostado/duperscooper/internal/serialize"
)

type scanFlags struct {
	mode           string // "track" | "album"
	algorithm      string // "exact" | "perceptual"
	threshold      float64
	workers        int
	cachePolicy    string // "use" | "update" | "disable"
	outputShape    string // "record" | "flat" | "text"
	albumStrategy  string // "identifier" | "fingerprint" | "auto"
	partial        bool
	minOverlap     float64
	minSizeBytes   int64
}

func newScanCmd() *cobra.Command {
	flags := scanFlags{mode: "track", algorithm: "perceptual", outputShape: "text", albumStrategy: "auto"}

	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan one or more directories for duplicate audio",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.mode, "mode", flags.mode, "track|album")
	cmd.Flags().StringVar(&flags.algorithm, "algorithm", flags.algorithm, "exact|perceptual")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", group.DefaultThreshold, "similarity threshold percentage")
	cmd.Flags().IntVar(&flags.workers, "workers", scan.DefaultWorkers, "fingerprinting worker count")
	cmd.Flags().StringVar(&flags.cachePolicy, "cache", "use", "use|update|disable")
	cmd.Flags().StringVar(&flags.outputShape, "output", flags.outputShape, "record|flat|text")
	cmd.Flags().StringVar(&flags.albumStrategy, "album-strategy", flags.albumStrategy, "identifier|fingerprint|auto (mode=album only)")
	cmd.Flags().BoolVar(&flags.partial, "partial-album", false, "allow partial track-overlap album matches")
	cmd.Flags().Float64Var(&flags.minOverlap, "min-overlap", 0.5, "minimum track-count overlap ratio for partial-album mode")
	cmd.Flags().Int64Var(&flags.minSizeBytes, "min-size", scan.DefaultMinSizeBytes, "minimum file size in bytes to consider")

	return cmd
}

func runScan(ctx context.Context, roots []string, flags scanFlags) error {
	if err := fingerprint.CheckAvailable(); flags.algorithm != "exact" && err != nil {
		return fmt.Errorf("fingerprinter tool unavailable: %w", err)
	}
	if err := fingerprint.CheckProbeAvailable(); err != nil {
		return fmt.Errorf("metadata probe tool unavailable: %w", err)
	}

	c := resolveCache(flags.cachePolicy == "disable")
	defer c.Close()
	if c.Stats().Backend == "legacy" && flags.workers != 1 {
		return fmt.Errorf("legacy cache backend requires --workers 1: %w", cache.ErrLegacyCacheConcurrent)
	}

	var groups []model.DuplicateGroup
	var errCount int64

	switch flags.mode {
	case "album":
		albumDirs, err := scan.DiscoverAlbumDirs(roots)
		if err != nil {
			return fmt.Errorf("discovering albums: %w", err)
		}
		opts := scan.Options{Workers: flags.workers, CachePolicy: cachePolicyFromFlag(flags.cachePolicy), NeedFingerprint: flags.algorithm != "exact"}
		albums, err := scan.ScanAlbums(ctx, albumDirs, c, opts)
		if err != nil {
			return fmt.Errorf("scanning albums: %w", err)
		}
		for _, a := range albums {
			errCount += int64(a.FailedTrackCount)
		}
		matchOpts := album.Options{
			Strategy:   album.Strategy(flags.albumStrategy),
			Threshold:  flags.threshold,
			Partial:    flags.partial,
			MinOverlap: flags.minOverlap,
		}
		groups = album.Match(albums, matchOpts)
	default:
		paths, err := scan.DiscoverTracks(roots, flags.minSizeBytes)
		if err != nil {
			return fmt.Errorf("discovering tracks: %w", err)
		}
		opts := scan.Options{Workers: flags.workers, CachePolicy: cachePolicyFromFlag(flags.cachePolicy), NeedFingerprint: flags.algorithm != "exact"}
		result, err := scan.ScanTracks(ctx, paths, c, opts)
		if err != nil {
			return fmt.Errorf("scanning tracks: %w", err)
		}
		errCount = result.ErrorCount
		groups = group.Group(result.Tracks, group.Algorithm(flags.algorithm), flags.threshold)
	}

	serialized := serialize.FromGroups(groups)

	if err := writeScanOutput(os.Stdout, serialized, flags.outputShape); err != nil {
		return fmt.Errorf("writing scan output: %w", err)
	}

	logging.Info("scan complete", "groups", serialized.TotalGroups, "duplicates", serialized.TotalDuplicates, "errors", errCount)

	if serialized.TotalGroups > 0 {
		exitCodeFromRun = exitSuccessDuplicates
	} else {
		exitCodeFromRun = exitSuccessNoDuplicates
	}
	return nil
}

func cachePolicyFromFlag(s string) scan.CachePolicy {
	switch s {
	case "update":
		return scan.CacheUpdate
	case "disable":
		return scan.CacheDisable
	default:
		return scan.CacheUse
	}
}
