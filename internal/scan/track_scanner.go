package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ohtostado/duperscooper/internal/cache"
	"github.com/ohtostado/duperscooper/internal/fingerprint"
	"github.com/ohtostado/duperscooper/internal/logging"
	"github.com/ohtostado/duperscooper/internal/model"
	"github.com/ohtostado/duperscooper/internal/quality"
)

// DefaultWorkers is the default bounded worker-pool size for cooperative
// parallel fingerprinting.
const DefaultWorkers = 8

// CachePolicy controls how the cache is consulted during a scan.
type CachePolicy int

const (
	// CacheUse reads the cache on hit, and writes back on miss (default).
	CacheUse CachePolicy = iota
	// CacheUpdate ignores cache hits, recomputes everything, and writes back.
	CacheUpdate
	// CacheDisable never reads or writes the cache.
	CacheDisable
)

// Progress is a mutex-guarded counter the CLI layer may poll to print plain
// text progress; no lock-free claims are relied upon.
type Progress struct {
	mu        sync.Mutex
	total     int
	completed int
	started   time.Time
	elapsed   time.Duration
}

func newProgress(total int) *Progress {
	return &Progress{total: total, started: time.Now()}
}

func (p *Progress) increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	p.elapsed = time.Since(p.started)
}

// Snapshot returns the current completed/total counts and an ETA computed
// as a running mean of per-item duration.
func (p *Progress) Snapshot() (completed, total int, eta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed == 0 {
		return 0, p.total, 0
	}
	perItem := p.elapsed / time.Duration(p.completed)
	remaining := p.total - p.completed
	return p.completed, p.total, perItem * time.Duration(remaining)
}

// Options configures a track scan.
type Options struct {
	Workers      int // 1 = sequential mode
	CachePolicy  CachePolicy
	NeedFingerprint bool // false for exact-mode scans, which only need content hashes
}

// Result is the output of ScanTracks: the deterministic TrackRecord
// sequence plus an error counter for files excluded due to failures.
type Result struct {
	Tracks       []model.TrackRecord
	ErrorCount   int64
	Progress     *Progress
}

// ScanTracks fingerprints each path in paths (already in discovery order),
// using the cooperative-parallel worker pool when Workers > 1, consulting c
// per the given CachePolicy. The returned TrackRecord sequence is re-sorted
// to discovery order before return, so output is deterministic regardless
// of completion order under parallelism.
func ScanTracks(ctx context.Context, paths []string, c cache.Cache, opts Options) (*Result, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}

	progress := newProgress(len(paths))
	records := make([]model.TrackRecord, len(paths))
	var errCount int64

	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				rec := scanOne(ctx, j.path, c, opts)
				records[j.idx] = rec
				if rec.FingerprintFail != nil {
					atomic.AddInt64(&errCount, 1)
					logging.Warn("fingerprint failure", "path", j.path, "kind", rec.FingerprintFail.Kind, "detail", rec.FingerprintFail.Detail)
				}
				progress.increment()
			}
		}()
	}

feed:
	for i, p := range paths {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{idx: i, path: p}:
		}
	}
	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		return &Result{Tracks: records, ErrorCount: atomic.LoadInt64(&errCount), Progress: progress}, ctx.Err()
	}

	return &Result{Tracks: records, ErrorCount: atomic.LoadInt64(&errCount), Progress: progress}, nil
}

func scanOne(ctx context.Context, path string, c cache.Cache, opts Options) model.TrackRecord {
	rec := model.TrackRecord{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		rec.FingerprintFail = &model.FingerprintFailure{Kind: model.FailureUnreadable, Detail: err.Error()}
		return rec
	}
	rec.Size = info.Size()

	hash, err := HashFile(path)
	if err != nil {
		rec.FingerprintFail = &model.FingerprintFailure{Kind: model.FailureUnreadable, Detail: err.Error()}
		return rec
	}
	rec.ContentHash = hash

	md, durationMs, failure, err := fingerprint.Probe(ctx, path)
	if err != nil {
		rec.FingerprintFail = &model.FingerprintFailure{Kind: model.FailureToolError, Detail: err.Error()}
		return rec
	}
	if failure != nil {
		rec.FingerprintFail = failure
		return rec
	}
	md.QualityScore = quality.Score(quality.Input{
		Codec: md.Codec, Lossless: md.Lossless, SampleRateHz: md.SampleRateHz,
		BitDepth: md.BitDepth, BitrateBitsPerSec: md.BitrateBitsPerSec,
	})
	md.QualityString = quality.FormatString(quality.Input{
		Codec: md.Codec, Lossless: md.Lossless, SampleRateHz: md.SampleRateHz,
		BitDepth: md.BitDepth, BitrateBitsPerSec: md.BitrateBitsPerSec,
	})
	rec.Metadata = md
	rec.DurationMs = durationMs

	if !opts.NeedFingerprint {
		return rec
	}

	if opts.CachePolicy != CacheDisable && opts.CachePolicy != CacheUpdate && c != nil {
		if fp, _, ok, err := c.Get(hash); err == nil && ok {
			rec.Fingerprint = fp
			return rec
		}
	}

	result, ffail, err := fingerprint.Fingerprint(ctx, path)
	if err != nil {
		rec.FingerprintFail = &model.FingerprintFailure{Kind: model.FailureToolError, Detail: err.Error()}
		return rec
	}
	if ffail != nil {
		rec.FingerprintFail = ffail
		return rec
	}
	rec.Fingerprint = result.Fingerprint
	if rec.DurationMs == 0 {
		rec.DurationMs = result.DurationMs
	}

	if opts.CachePolicy != CacheDisable && c != nil {
		if err := c.Set(hash, result.Fingerprint, "chromaprint"); err != nil {
			logging.Warn("cache write-back failed", "path", path, "err", err)
		}
	}

	return rec
}

// HashFile computes the content-addressing SHA-256 hash the cache keys on.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
