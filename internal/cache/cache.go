// Package cache implements the persistent, content-addressed fingerprint
// cache with two interchangeable backends: a durable SQL-backed store
// (default) and a legacy single-writer flat-file store.
//
// Grounded on himanishpuri-AcousticDNA/pkg/acousticdna/storage/sqlite.go
// for the durable backend's GORM/connection-pool shape, and the teacher's
// backend/duplicate_cache.go for the legacy flat-file backend's
// atomic-write/prune behavior.
package cache

import (
	"time"

	"github.com/ohtostado/duperscooper/internal/model"
)

// Cache is the capability set the rest of the system depends on. It is
// implemented by both the durable and legacy backends (internal/cache is
// polymorphic over backend, not extensible at runtime beyond these two).
type Cache interface {
	// Get returns the cached fingerprint for hash, or ok=false if absent.
	Get(hash string) (fp model.Fingerprint, algorithm string, ok bool, err error)
	// Set upserts an entry, updating its last-access timestamp.
	Set(hash string, fp model.Fingerprint, algorithm string) error
	// Stats returns hit/miss counters and backend-kind for this process.
	Stats() model.CacheStats
	// Clear removes all entries.
	Clear() error
	// CleanupOld removes entries whose last access predates maxAge.
	CleanupOld(maxAge time.Duration) (removed int, err error)
	// Close releases any underlying resources (DB handle, file locks).
	Close() error
}

// Migrator is implemented by backends that can import a prior flat-file
// representation. Only the durable backend implements this; the legacy
// backend is itself the "prior representation".
type Migrator interface {
	MigrateLegacy(legacyPath string) (imported int, err error)
}

// Pruner is implemented by backends that can remove entries whose content
// hash no longer corresponds to any file present on disk, supplementing
// CleanupOld's age-based sweep with a path-existence sweep. Both backends
// implement this.
type Pruner interface {
	PruneMissing(stillPresent map[string]bool) (removed int, err error)
}
