package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ohtostado/duperscooper/internal/model"
)

// fingerprintRow is the GORM model backing the durable cache.
type fingerprintRow struct {
	ContentHash  string `gorm:"primaryKey"`
	Fingerprint  string `gorm:"type:text"` // comma-separated uint32 list
	Algorithm    string
	InsertedAt   time.Time
	LastAccessAt time.Time `gorm:"index"`
}

func (fingerprintRow) TableName() string { return "fingerprint_cache" }

// SQLiteCache is the durable, WAL-backed cache backend. One *gorm.DB is
// shared across worker goroutines; the underlying sql.DB pool gives each
// goroutine its own pooled connection, and WAL mode lets readers proceed
// concurrently with a single writer.
type SQLiteCache struct {
	db *gorm.DB

	hits   int64
	misses int64
}

// OpenSQLiteCache opens (creating if absent) the durable cache database at
// dbPath, tunes its connection pool and WAL pragmas, and runs migrations.
func OpenSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&fingerprintRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Get(hash string) (model.Fingerprint, string, bool, error) {
	var row fingerprintRow
	err := c.db.Where("content_hash = ?", hash).First(&row).Error
	if err != nil {
		if gormIsNotFound(err) {
			atomic.AddInt64(&c.misses, 1)
			return nil, "", false, nil
		}
		return nil, "", false, fmt.Errorf("cache get: %w", err)
	}
	atomic.AddInt64(&c.hits, 1)
	if touchErr := c.db.Model(&row).Update("last_access_at", time.Now()).Error; touchErr != nil {
		return nil, "", false, fmt.Errorf("cache touch: %w", touchErr)
	}
	return decodeFingerprint(row.Fingerprint), row.Algorithm, true, nil
}

func (c *SQLiteCache) Set(hash string, fp model.Fingerprint, algorithm string) error {
	now := time.Now()
	row := fingerprintRow{
		ContentHash:  hash,
		Fingerprint:  encodeFingerprint(fp),
		Algorithm:    algorithm,
		InsertedAt:   now,
		LastAccessAt: now,
	}
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var existing fingerprintRow
		err := tx.Where("content_hash = ?", hash).First(&existing).Error
		if err == nil {
			row.InsertedAt = existing.InsertedAt
			return tx.Model(&existing).Updates(map[string]interface{}{
				"fingerprint":    row.Fingerprint,
				"algorithm":      row.Algorithm,
				"last_access_at": row.LastAccessAt,
			}).Error
		}
		if !gormIsNotFound(err) {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Stats() model.CacheStats {
	var size int64
	c.db.Model(&fingerprintRow{}).Count(&size)
	return model.CacheStats{
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
		Size:    size,
		Backend: "sqlite",
	}
}

func (c *SQLiteCache) Clear() error {
	if err := c.db.Where("1 = 1").Delete(&fingerprintRow{}).Error; err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

func (c *SQLiteCache) CleanupOld(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	res := c.db.Where("last_access_at < ?", cutoff).Delete(&fingerprintRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("cache cleanup: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// PruneMissing removes rows whose content hash is not in stillPresent,
// matching LegacyCache's path-existence sweep for the durable backend.
func (c *SQLiteCache) PruneMissing(stillPresent map[string]bool) (int, error) {
	var rows []fingerprintRow
	if err := c.db.Select("content_hash").Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("listing cache entries: %w", err)
	}
	var stale []string
	for _, row := range rows {
		if !stillPresent[row.ContentHash] {
			stale = append(stale, row.ContentHash)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	res := c.db.Where("content_hash IN ?", stale).Delete(&fingerprintRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("pruning missing entries: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (c *SQLiteCache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}

// MigrateLegacy imports every entry from a legacy flat-file cache at
// legacyPath, preserving timestamps where present.
func (c *SQLiteCache) MigrateLegacy(legacyPath string) (int, error) {
	legacy, err := loadLegacyDocument(legacyPath)
	if err != nil {
		return 0, fmt.Errorf("reading legacy cache: %w", err)
	}
	imported := 0
	for _, entry := range legacy.Entries {
		row := fingerprintRow{
			ContentHash:  entry.ContentHash,
			Fingerprint:  encodeFingerprint(entry.Fingerprint),
			Algorithm:    entry.Algorithm,
			InsertedAt:   entry.InsertedAt,
			LastAccessAt: entry.LastAccessAt,
		}
		if row.InsertedAt.IsZero() {
			row.InsertedAt = time.Now()
		}
		if row.LastAccessAt.IsZero() {
			row.LastAccessAt = row.InsertedAt
		}
		if err := c.db.Save(&row).Error; err != nil {
			return imported, fmt.Errorf("importing entry %s: %w", entry.ContentHash, err)
		}
		imported++
	}
	return imported, nil
}

func gormIsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}

func encodeFingerprint(fp model.Fingerprint) string {
	parts := make([]string, len(fp))
	for i, v := range fp {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, ",")
}

func decodeFingerprint(s string) model.Fingerprint {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	fp := make(model.Fingerprint, 0, len(parts))
	for _, p := range parts {
		u, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			continue
		}
		fp = append(fp, uint32(u))
	}
	return fp
}
