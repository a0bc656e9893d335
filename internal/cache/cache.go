package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Tracker decides which corpus files need (re)processing and records
// completed files. It is the durability boundary of an ingestion run:
// anything not committed here is reprocessed from scratch next run.
type Tracker interface {
	// IsStale reports whether source needs reprocessing given its current
	// filesystem metadata. When the decision required hashing the file, the
	// fingerprint is returned so the caller can pass it back to Commit.
	IsStale(source string, modTime time.Time, size int64) (stale bool, fingerprint string, err error)

	// Commit records a successful ingestion of source. Must only be called
	// after the file's vector records are durably written.
	Commit(source string, modTime time.Time, size int64, fingerprint string)

	// Persist writes the tracker state to durable storage atomically.
	Persist() error
}

// Entry is the persisted record for one ingested file. ModTime carries
// millisecond resolution; Fingerprint is the hex SHA-256 of the file
// content at the time its chunks were written to the index.
type Entry struct {
	ModTime     int64  `json:"mtime"`
	Size        int64  `json:"size"`
	Fingerprint string `json:"fileId"`
}

// Cache is the mtime+fingerprint change-detection cache, persisted as a
// flat JSON object mapping source path to Entry.
//
// Invariant: an entry exists for a file if and only if that file's chunks
// are currently present in the vector index under that source key. The
// cache therefore trails the index, never leads it.
type Cache struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]Entry
	dirty   bool
}

// Load reads the cache file at path. A missing or corrupt file is
// non-fatal and yields an empty cache, forcing full reprocessing.
func Load(path string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		path:    path,
		logger:  logger,
		entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("cache unreadable, starting empty", zap.String("path", path), zap.Error(err))
		}
		return c
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		logger.Warn("cache corrupt, starting empty", zap.String("path", path), zap.Error(err))
		c.entries = make(map[string]Entry)
	}
	return c
}

// Len returns the number of tracked files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Lookup returns the entry for source, if any.
func (c *Cache) Lookup(source string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[source]
	return e, ok
}

// IsStale implements Tracker.
//
// A file with no entry is stale. A file whose stored modification time and
// size both match is fresh without reading its content. Otherwise the
// content fingerprint decides: a file touched without a content change is
// recognized as fresh (its entry metadata is refreshed in place, which is
// safe because the index is unchanged), while changed content is stale even
// if the mtime was restored.
func (c *Cache) IsStale(source string, modTime time.Time, size int64) (bool, string, error) {
	c.mu.Lock()
	entry, ok := c.entries[source]
	c.mu.Unlock()

	if !ok {
		return true, "", nil
	}
	if entry.ModTime == modTime.UnixMilli() && entry.Size == size {
		return false, "", nil
	}

	fingerprint, err := Fingerprint(source)
	if err != nil {
		return false, "", fmt.Errorf("fingerprint %s: %w", source, err)
	}

	if fingerprint == entry.Fingerprint {
		c.mu.Lock()
		c.entries[source] = Entry{ModTime: modTime.UnixMilli(), Size: size, Fingerprint: fingerprint}
		c.dirty = true
		c.mu.Unlock()
		return false, fingerprint, nil
	}
	return true, fingerprint, nil
}

// Commit implements Tracker. An empty fingerprint is computed on demand,
// but only after re-checking that the file still matches the metadata it
// was indexed under: a file that vanished or changed between processing and
// commit gets no entry, so it stays stale and is reprocessed next run.
// Hashing a changed file here would store a fingerprint describing content
// the index does not hold.
func (c *Cache) Commit(source string, modTime time.Time, size int64, fingerprint string) {
	if fingerprint == "" {
		info, err := os.Stat(source)
		if err != nil {
			c.logger.Warn("commit skipped, file unreadable", zap.String("path", source), zap.Error(err))
			return
		}
		if info.ModTime().UnixMilli() != modTime.UnixMilli() || info.Size() != size {
			c.logger.Warn("commit skipped, file changed during processing", zap.String("path", source))
			return
		}
		fp, err := Fingerprint(source)
		if err != nil {
			c.logger.Warn("commit skipped, file unreadable", zap.String("path", source), zap.Error(err))
			return
		}
		fingerprint = fp
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[source] = Entry{
		ModTime:     modTime.UnixMilli(),
		Size:        size,
		Fingerprint: fingerprint,
	}
	c.dirty = true
}

// Persist implements Tracker. The cache is written to a temporary file in
// the same directory and renamed over the target, so readers never observe
// a partially written cache.
func (c *Cache) Persist() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := writeAtomic(c.path, data); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Fingerprint computes the hex SHA-256 of a file's content.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// writeAtomic writes data to path via a same-directory temp file + rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close cache: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename cache: %w", err)
	}
	return nil
}
