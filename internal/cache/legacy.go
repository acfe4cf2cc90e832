package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ohtostado/duperscooper/internal/model"
)

// ErrLegacyCacheConcurrent is returned when the legacy flat-file cache
// detects an attempted second concurrent open. The legacy backend is
// documented as single-writer only; rather than attempt to support
// parallel access, this is treated as a fatal configuration error.
var ErrLegacyCacheConcurrent = errors.New("legacy cache: concurrent access is not supported, use the durable backend")

var legacyOpenPaths = struct {
	sync.Mutex
	paths map[string]bool
}{paths: make(map[string]bool)}

// legacyEntry is a single row of the legacy flat-file document.
type legacyEntry struct {
	ContentHash  string    `json:"content_hash"`
	Fingerprint  []uint32  `json:"fingerprint,omitempty"`
	Algorithm    string    `json:"algorithm,omitempty"`
	InsertedAt   time.Time `json:"inserted_at"`
	LastAccessAt time.Time `json:"last_access_at"`
}

// legacyDocument is the single structured JSON document the legacy backend
// reads and writes as a whole.
type legacyDocument struct {
	Entries []legacyEntry `json:"entries"`
}

// LegacyCache is the flat-file, single-writer cache backend. It holds its
// whole document in memory and rewrites it atomically (temp file + rename)
// on every mutation, matching the teacher's SaveDuplicateCache pattern.
type LegacyCache struct {
	path string
	mu   sync.Mutex
	byID map[string]legacyEntry

	hits   int64
	misses int64
}

// OpenLegacyCache opens (or creates) the flat-file cache at path. Opening
// the same path twice within one process is a fatal configuration error.
func OpenLegacyCache(path string) (*LegacyCache, error) {
	legacyOpenPaths.Lock()
	if legacyOpenPaths.paths[path] {
		legacyOpenPaths.Unlock()
		return nil, ErrLegacyCacheConcurrent
	}
	legacyOpenPaths.paths[path] = true
	legacyOpenPaths.Unlock()

	doc, err := loadLegacyDocument(path)
	if err != nil {
		legacyOpenPaths.Lock()
		delete(legacyOpenPaths.paths, path)
		legacyOpenPaths.Unlock()
		return nil, err
	}
	byID := make(map[string]legacyEntry, len(doc.Entries))
	for _, e := range doc.Entries {
		byID[e.ContentHash] = e
	}
	return &LegacyCache{path: path, byID: byID}, nil
}

func loadLegacyDocument(path string) (legacyDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return legacyDocument{}, nil
		}
		return legacyDocument{}, fmt.Errorf("reading legacy cache: %w", err)
	}
	var doc legacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return legacyDocument{}, fmt.Errorf("parsing legacy cache: %w", err)
	}
	return doc, nil
}

func (c *LegacyCache) Get(hash string) (model.Fingerprint, string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byID[hash]
	if !ok {
		c.misses++
		return nil, "", false, nil
	}
	c.hits++
	e.LastAccessAt = time.Now()
	c.byID[hash] = e
	return model.Fingerprint(e.Fingerprint), e.Algorithm, true, nil
}

func (c *LegacyCache) Set(hash string, fp model.Fingerprint, algorithm string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	insertedAt := now
	if existing, ok := c.byID[hash]; ok {
		insertedAt = existing.InsertedAt
	}
	c.byID[hash] = legacyEntry{
		ContentHash:  hash,
		Fingerprint:  []uint32(fp),
		Algorithm:    algorithm,
		InsertedAt:   insertedAt,
		LastAccessAt: now,
	}
	return c.saveLocked()
}

func (c *LegacyCache) Stats() model.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Size:    int64(len(c.byID)),
		Backend: "legacy",
	}
}

func (c *LegacyCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = make(map[string]legacyEntry)
	return c.saveLocked()
}

func (c *LegacyCache) CleanupOld(maxAge time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for k, e := range c.byID {
		if e.LastAccessAt.Before(cutoff) {
			delete(c.byID, k)
			removed++
		}
	}
	if removed > 0 {
		if err := c.saveLocked(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// PruneMissing removes entries whose content hash is not in stillPresent.
// This supplements cleanup_old with the teacher's PruneDuplicateCache
// behavior: a path-existence sweep in addition to the age-based one.
func (c *LegacyCache) PruneMissing(stillPresent map[string]bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k := range c.byID {
		if !stillPresent[k] {
			delete(c.byID, k)
			removed++
		}
	}
	if removed > 0 {
		if err := c.saveLocked(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func (c *LegacyCache) Close() error {
	legacyOpenPaths.Lock()
	delete(legacyOpenPaths.paths, c.path)
	legacyOpenPaths.Unlock()
	return nil
}

// saveLocked serializes the in-memory document to disk atomically via a
// temp-file-then-rename, matching the teacher's SaveDuplicateCache.
func (c *LegacyCache) saveLocked() error {
	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating legacy cache dir: %w", err)
		}
	}
	entries := make([]legacyEntry, 0, len(c.byID))
	for _, e := range c.byID {
		entries = append(entries, e)
	}
	data, err := json.MarshalIndent(legacyDocument{Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling legacy cache: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp legacy cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomically saving legacy cache: %w", err)
	}
	return nil
}
