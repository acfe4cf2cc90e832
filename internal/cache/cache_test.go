package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohtostado/duperscooper/internal/model"
)

func TestSQLiteCacheRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	c, err := OpenSQLiteCache(dbPath)
	require.NoError(t, err)
	defer c.Close()

	fp := model.Fingerprint{1, 2, 3, 4}
	require.NoError(t, c.Set("hash-1", fp, "chromaprint"))

	got, algorithm, ok, err := c.Get("hash-1")
	require.NoError(t, err)
	require.True(t, ok, "expected a hit after Set")
	assert.Equal(t, "chromaprint", algorithm)
	assert.Equal(t, []uint32(fp), []uint32(got))

	_, _, ok, err = c.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok, "expected a miss for an unset hash")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, "sqlite", stats.Backend)
}

func TestSQLiteCacheClear(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	c, err := OpenSQLiteCache(dbPath)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("hash-1", model.Fingerprint{1, 2}, "chromaprint"))
	require.NoError(t, c.Clear())

	_, _, ok, err := c.Get("hash-1")
	require.NoError(t, err)
	assert.False(t, ok, "expected no entries after Clear")
}

func TestSQLiteCacheCleanupOld(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	c, err := OpenSQLiteCache(dbPath)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("stale", model.Fingerprint{1}, "chromaprint"))

	removed, err := c.CleanupOld(0)
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "expected 1 entry removed with maxAge=0")

	_, _, ok, _ := c.Get("stale")
	assert.False(t, ok, "expected the stale entry to be gone")
}

func TestSQLiteCachePruneMissing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	c, err := OpenSQLiteCache(dbPath)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("still-here", model.Fingerprint{1}, "chromaprint"))
	require.NoError(t, c.Set("gone", model.Fingerprint{2}, "chromaprint"))

	removed, err := c.PruneMissing(map[string]bool{"still-here": true})
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "expected 1 entry pruned")

	_, _, ok, _ := c.Get("still-here")
	assert.True(t, ok, "expected the still-present entry to survive pruning")
	_, _, ok, _ = c.Get("gone")
	assert.False(t, ok, "expected the missing-file entry to be pruned")
}

func TestLegacyCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	c, err := OpenLegacyCache(path)
	require.NoError(t, err)
	defer c.Close()

	fp := model.Fingerprint{9, 8, 7}
	require.NoError(t, c.Set("hash-1", fp, "chromaprint"))
	got, algorithm, ok, err := c.Get("hash-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "chromaprint", algorithm)
	assert.Equal(t, []uint32(fp), []uint32(got))

	// Re-open at the same path after closing: must succeed since the
	// previous handle released its registration.
	reopened, err := OpenLegacyCache(path)
	require.NoError(t, err, "re-opening after Close should succeed")
	defer reopened.Close()

	_, _, ok, err = reopened.Get("hash-1")
	require.NoError(t, err)
	assert.True(t, ok, "expected the persisted entry to survive reopening")
}

func TestLegacyCacheConcurrentOpenRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	first, err := OpenLegacyCache(path)
	require.NoError(t, err)
	defer first.Close()

	_, err = OpenLegacyCache(path)
	assert.ErrorIs(t, err, ErrLegacyCacheConcurrent)
}

func TestLegacyCacheCleanupOld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	c, err := OpenLegacyCache(path)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("stale", model.Fingerprint{1}, "chromaprint"))
	removed, err := c.CleanupOld(0)
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "expected 1 entry removed with maxAge=0")
}

func TestLegacyCachePruneMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	c, err := OpenLegacyCache(path)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("still-here", model.Fingerprint{1}, "chromaprint"))
	require.NoError(t, c.Set("gone", model.Fingerprint{2}, "chromaprint"))

	removed, err := c.PruneMissing(map[string]bool{"still-here": true})
	require.NoError(t, err)
	assert.Equal(t, 1, removed, "expected 1 entry pruned")

	_, _, ok, _ := c.Get("still-here")
	assert.True(t, ok, "expected the still-present entry to survive pruning")
}

func TestSQLiteCacheMigrateLegacy(t *testing.T) {
	legacyPath := filepath.Join(t.TempDir(), "legacy.json")
	legacy, err := OpenLegacyCache(legacyPath)
	require.NoError(t, err)
	require.NoError(t, legacy.Set("hash-1", model.Fingerprint{1, 2, 3}, "chromaprint"))
	require.NoError(t, legacy.Close())

	dbPath := filepath.Join(t.TempDir(), "cache.db")
	sq, err := OpenSQLiteCache(dbPath)
	require.NoError(t, err)
	defer sq.Close()

	imported, err := sq.MigrateLegacy(legacyPath)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	got, algorithm, ok, err := sq.Get("hash-1")
	require.NoError(t, err)
	require.True(t, ok, "expected the migrated entry to be retrievable")
	assert.Equal(t, "chromaprint", algorithm)
	assert.Len(t, got, 3)
}

func TestLegacyCacheSetUpdatesExistingEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	c, err := OpenLegacyCache(path)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("hash-1", model.Fingerprint{1}, "chromaprint"))
	require.NoError(t, c.Set("hash-1", model.Fingerprint{2}, "chromaprint"))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Size, "expected overwriting an existing hash to keep size=1")
}
