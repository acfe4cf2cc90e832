// Package scan implements recursive audio-file discovery, parallel
// fingerprint production with ordered progress reporting, and album
// discovery/aggregation.
//
// Grounded on the teacher's FindDuplicateTracksAdvanced worker-pool shape
// in backend/duplicate_scan.go.
package scan

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ohtostado/duperscooper/internal/fingerprint"
)

// DefaultMinSizeBytes is the default minimum file size discovery applies;
// 0 disables the filter.
const DefaultMinSizeBytes int64 = 1 << 20 // 1 MiB

// DiscoverTracks recursively walks roots, returning the absolute paths of
// regular files with a supported extension and size >= minSize, in
// deterministic lexicographic order.
func DiscoverTracks(roots []string, minSize int64) ([]string, error) {
	var found []string
	for _, root := range roots {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if !fingerprint.IsSupportedExtension(filepath.Ext(path)) {
				return nil
			}
			if minSize > 0 && info.Size() < minSize {
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			found = append(found, abs)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(found)
	return found, nil
}

// DiscoverAlbumDirs walks roots and returns the directories that directly
// contain at least one supported audio file (non-recursive at the album
// level — a directory's subdirectories are considered separate albums, not
// part of this one).
func DiscoverAlbumDirs(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	for _, root := range roots {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if !fingerprint.IsSupportedExtension(filepath.Ext(path)) {
				return nil
			}
			dir := filepath.Dir(path)
			abs, aerr := filepath.Abs(dir)
			if aerr == nil {
				dir = abs
			}
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
