package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ohtostado/duperscooper/internal/cache"
	"github.com/ohtostado/duperscooper/internal/scan"
)

type cacheCleanupFlags struct {
	maxAge time.Duration
	roots  []string
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the fingerprint cache",
	}
	cmd.AddCommand(newCacheCleanupCmd())
	return cmd
}

func newCacheCleanupCmd() *cobra.Command {
	flags := &cacheCleanupFlags{}
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove stale and orphaned fingerprint cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheCleanup(flags)
		},
	}
	cmd.Flags().DurationVar(&flags.maxAge, "max-age", 90*24*time.Hour, "remove entries not accessed within this duration")
	cmd.Flags().StringArrayVar(&flags.roots, "root", nil, "library root to sweep for missing-file pruning (repeatable)")
	return cmd
}

// runCacheCleanup performs cleanup_old's full contract: the age-based sweep
// spec.md names, plus a path-existence sweep over --root when the backend
// supports it (both backends do).
func runCacheCleanup(flags *cacheCleanupFlags) error {
	c := resolveCache(false)
	defer c.Close()

	removedOld, err := c.CleanupOld(flags.maxAge)
	if err != nil {
		return fmt.Errorf("cleaning up aged entries: %w", err)
	}

	removedMissing := 0
	if pruner, ok := c.(cache.Pruner); ok && len(flags.roots) > 0 {
		stillPresent, err := hashesStillPresent(flags.roots)
		if err != nil {
			return fmt.Errorf("hashing files under --root: %w", err)
		}
		removedMissing, err = pruner.PruneMissing(stillPresent)
		if err != nil {
			return fmt.Errorf("pruning entries for missing files: %w", err)
		}
	}

	fmt.Printf("removed %d aged entries, %d entries for missing files\n", removedOld, removedMissing)
	return nil
}

// hashesStillPresent discovers every supported audio file under roots and
// returns the set of content hashes still backed by a file on disk.
func hashesStillPresent(roots []string) (map[string]bool, error) {
	paths, err := scan.DiscoverTracks(roots, 0)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(paths))
	for _, p := range paths {
		hash, err := scan.HashFile(p)
		if err != nil {
			continue
		}
		present[hash] = true
	}
	return present, nil
}
