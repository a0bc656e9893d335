package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Log is the legacy processed-files log: a JSON array of paths with set
// semantics and no modification times. A file is reprocessed only if it has
// never been seen. It remains supported for deployments created by the
// older pipeline variant and must not share a file with the mtime cache.
type Log struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	seen  map[string]struct{}
	dirty bool
}

// LoadLog reads the processed-files log at path. Missing or corrupt logs
// are non-fatal and yield an empty set.
func LoadLog(path string, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Log{
		path:   path,
		logger: logger,
		seen:   make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("processed log unreadable, starting empty", zap.String("path", path), zap.Error(err))
		}
		return l
	}

	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		logger.Warn("processed log corrupt, starting empty", zap.String("path", path), zap.Error(err))
		return l
	}
	for _, p := range paths {
		l.seen[p] = struct{}{}
	}
	return l
}

// Contains reports whether source has been processed.
func (l *Log) Contains(source string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[source]
	return ok
}

// IsStale implements Tracker. Without modification times, only unseen files
// are stale.
func (l *Log) IsStale(source string, _ time.Time, _ int64) (bool, string, error) {
	return !l.Contains(source), "", nil
}

// Commit implements Tracker.
func (l *Log) Commit(source string, _ time.Time, _ int64, _ string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[source]; ok {
		return
	}
	l.seen[source] = struct{}{}
	l.dirty = true
}

// Persist implements Tracker. Paths are sorted so the log is stable across
// runs.
func (l *Log) Persist() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.dirty {
		return nil
	}

	paths := make([]string, 0, len(l.seen))
	for p := range l.seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	data, err := json.MarshalIndent(paths, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal processed log: %w", err)
	}
	if err := writeAtomic(l.path, data); err != nil {
		return err
	}
	l.dirty = false
	return nil
}
