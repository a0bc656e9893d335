package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/corpusidx/corpusidx/internal/cache"
	"github.com/corpusidx/corpusidx/internal/chunker"
	"github.com/corpusidx/corpusidx/internal/embedder"
	"github.com/corpusidx/corpusidx/internal/extract"
	"github.com/corpusidx/corpusidx/internal/vectorstore"
)

// Common errors
var (
	// ErrRunInProgress is returned when a second ingestion run is started
	// on the same Indexer before the first finishes.
	ErrRunInProgress = errors.New("ingestion run already in progress")

	// ErrBootstrap wraps fatal setup failures: the sample embedding or the
	// index open. Everything else degrades per file.
	ErrBootstrap = errors.New("ingestion bootstrap failed")

	// errAllChunksDropped marks a file whose every chunk failed to embed.
	errAllChunksDropped = errors.New("all chunks failed to embed")
)

// defaultSkipDirs are directories never traversed during the walk. They
// hold dependencies, build output, or VCS data, not corpus content.
var defaultSkipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
	".cache":       true,
}

// Indexer coordinates the ingestion pipeline:
// walk -> diff -> extract -> chunk -> embed -> index -> commit.
type Indexer struct {
	registry *extract.Registry
	chunker  chunker.Chunker
	embedder embedder.Embedder
	store    vectorstore.Store
	tracker  cache.Tracker
	logger   *zap.Logger
	workers  int

	lock IngestLock
}

// Config contains construction parameters for the Indexer.
type Config struct {
	// Workers bounds concurrent file processing. The default of 1 processes
	// files sequentially; higher values process files in parallel. Each
	// source path is still owned by exactly one worker per run, so
	// delete-then-insert sequences never interleave for the same source.
	Workers int
}

// Statistics describes the outcome of one ingestion run.
type Statistics struct {
	FilesWalked    int
	FilesProcessed int
	FilesSkipped   int // no extractor; retried next run
	FilesFresh     int // unchanged since last run
	FilesFailed    int
	ChunksIndexed  int
	ChunksDropped  int
	Cancelled      bool
	Duration       time.Duration
	ErrorMessages  []string
}

// New creates an Indexer. A nil logger is replaced with a no-op logger and
// non-positive workers fall back to 1.
func New(registry *extract.Registry, ch chunker.Chunker, emb embedder.Embedder,
	store vectorstore.Store, tracker cache.Tracker, logger *zap.Logger, cfg Config) *Indexer {

	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Indexer{
		registry: registry,
		chunker:  ch,
		embedder: emb,
		store:    store,
		tracker:  tracker,
		logger:   logger,
		workers:  workers,
	}
}

// sourceFile is one walked corpus file with the metadata the diff needs.
type sourceFile struct {
	path        string
	modTime     time.Time
	size        int64
	fingerprint string // set when the diff had to hash the content
}

// Run executes one ingestion pass over the corpus root. Per-file failures
// are recorded in the statistics and leave the file stale; only bootstrap
// failures (sample embedding, index open) abort the run. Cancellation is
// observed between files, never mid-file.
func (idx *Indexer) Run(ctx context.Context, root string) (*Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, ErrRunInProgress
	}
	defer idx.lock.Release()

	startTime := time.Now()
	stats := &Statistics{}

	// Walking
	files, err := idx.discoverFiles(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	stats.FilesWalked = len(files)

	// Diffing
	work := idx.diff(files, stats)
	if len(work) == 0 {
		// Nothing to do; the index is not even opened. Metadata refreshes
		// from the diff still need persisting.
		if err := idx.tracker.Persist(); err != nil {
			return stats, fmt.Errorf("persist cache: %w", err)
		}
		stats.Duration = time.Since(startTime)
		idx.logger.Info("corpus unchanged", zap.Int("files", len(files)))
		return stats, nil
	}

	// Bootstrap: one sample embedding fixes the index dimensionality. A
	// failure here means the embedding service is down, which is fatal.
	sample, err := idx.embedder.Embed(ctx, embedder.SampleText)
	if err != nil {
		return nil, fmt.Errorf("%w: sample embedding: %v", ErrBootstrap, err)
	}
	existed, err := idx.store.Open(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("%w: open index: %v", ErrBootstrap, err)
	}

	// ProcessingFile, one state per work-set entry in traversal order
	idx.processFiles(ctx, work, existed, stats)

	// Finalizing: commits made before a cancellation or failure are still
	// durable state and must be persisted.
	if err := idx.tracker.Persist(); err != nil {
		return stats, fmt.Errorf("persist cache: %w", err)
	}

	stats.Duration = time.Since(startTime)
	idx.logger.Info("ingestion finished",
		zap.Int("processed", stats.FilesProcessed),
		zap.Int("fresh", stats.FilesFresh),
		zap.Int("skipped", stats.FilesSkipped),
		zap.Int("failed", stats.FilesFailed),
		zap.Int("chunks", stats.ChunksIndexed),
		zap.Int("dropped_chunks", stats.ChunksDropped),
		zap.Bool("cancelled", stats.Cancelled),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// discoverFiles enumerates every regular file under root in traversal
// order. Hidden directories and well-known dependency directories are
// skipped; directories themselves are traversed, not recorded.
func (idx *Indexer) discoverFiles(root string) ([]sourceFile, error) {
	var files []sourceFile

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			name := info.Name()
			if path != root && (strings.HasPrefix(name, ".") || defaultSkipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		files = append(files, sourceFile{
			path:    path,
			modTime: info.ModTime(),
			size:    info.Size(),
		})
		return nil
	})

	return files, err
}

// diff consults the change-detection cache and returns the stale work set
// in traversal order.
func (idx *Indexer) diff(files []sourceFile, stats *Statistics) []sourceFile {
	var work []sourceFile
	for _, f := range files {
		stale, fingerprint, err := idx.tracker.IsStale(f.path, f.modTime, f.size)
		if err != nil {
			stats.FilesFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", f.path, err))
			idx.logger.Warn("staleness check failed", zap.String("path", f.path), zap.Error(err))
			continue
		}
		if !stale {
			stats.FilesFresh++
			continue
		}
		f.fingerprint = fingerprint
		work = append(work, f)
	}
	return work
}

// processFiles runs the per-file pipeline over the work set with a bounded
// worker pool. Cancellation is polled at file granularity: in-flight files
// finish (success or failure) before the run reports Cancelled.
func (idx *Indexer) processFiles(ctx context.Context, work []sourceFile, existed bool, stats *Statistics) {
	var (
		processed int32
		skipped   int32
		failed    int32
		indexed   int32
		dropped   int32
	)

	var mu sync.Mutex // protects stats.ErrorMessages
	var cancelled atomic.Bool

	var g errgroup.Group
	g.SetLimit(idx.workers)

	for _, f := range work {
		f := f
		if ctx.Err() != nil {
			cancelled.Store(true)
			break
		}

		g.Go(func() error {
			// A file scheduled before cancellation but not yet started is
			// left stale; only in-flight files run to completion.
			if ctx.Err() != nil {
				cancelled.Store(true)
				return nil
			}
			// Shield the file from run cancellation: once started, its
			// embedding calls and index writes finish or fail on their own
			// terms, never with a mid-file context error.
			fileCtx := context.WithoutCancel(ctx)
			err := idx.processFile(fileCtx, f, existed, &processed, &skipped, &indexed, &dropped)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", f.path, err))
				mu.Unlock()
				idx.logger.Warn("file left stale", zap.String("path", f.path), zap.Error(err))
			}
			return nil
		})
	}

	_ = g.Wait()

	stats.Cancelled = cancelled.Load()
	stats.FilesProcessed = int(processed)
	stats.FilesSkipped = int(skipped)
	stats.FilesFailed += int(failed)
	stats.ChunksIndexed = int(indexed)
	stats.ChunksDropped = int(dropped)
}

// processFile runs extract -> chunk -> embed -> delete -> insert -> commit
// for a single stale file. A returned error means the file's cache entry
// was not committed, so it stays stale for the next run.
func (idx *Indexer) processFile(ctx context.Context, f sourceFile, existed bool,
	processed, skipped, indexed, dropped *int32) error {

	// Resolve and extract. No extractor: skip with a warning and without a
	// cache entry, so the file is re-evaluated next run.
	text, ok := idx.registry.Extract(f.path)
	if !ok {
		idx.logger.Warn("no extractor, skipping", zap.String("path", f.path))
		atomic.AddInt32(skipped, 1)
		return nil
	}

	// Empty text is semantically "no content": mark processed so the file
	// is not retried indefinitely, and leave the index untouched.
	if strings.TrimSpace(text) == "" {
		idx.tracker.Commit(f.path, f.modTime, f.size, f.fingerprint)
		atomic.AddInt32(processed, 1)
		return nil
	}

	chunks := chunker.Cut(idx.chunker, f.path, text)
	if len(chunks) == 0 {
		idx.tracker.Commit(f.path, f.modTime, f.size, f.fingerprint)
		atomic.AddInt32(processed, 1)
		return nil
	}

	// Embed chunk by chunk. A chunk that exhausts the client's retry
	// budget is dropped and logged; its siblings are unaffected.
	records := make([]vectorstore.Record, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := idx.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			atomic.AddInt32(dropped, 1)
			idx.logger.Warn("chunk dropped",
				zap.String("path", f.path),
				zap.Int("ordinal", chunk.Ordinal),
				zap.Error(err),
			)
			continue
		}
		records = append(records, vectorstore.Record{
			Source:  chunk.Source,
			Ordinal: chunk.Ordinal,
			Text:    chunk.Text,
			Vector:  vector,
		})
	}

	// Nothing embeddable survived: leave the file stale so a healthier
	// service can pick it up next run.
	if len(records) == 0 {
		return errAllChunksDropped
	}

	// Replace the file's prior records before inserting the fresh batch,
	// so stale and fresh chunks never coexist under one source.
	if existed {
		if err := idx.store.DeleteBySource(ctx, f.path); err != nil {
			return err
		}
	}
	if err := idx.store.Insert(ctx, records); err != nil {
		return err
	}

	// The insert is durable; only now may the cache learn about it.
	idx.tracker.Commit(f.path, f.modTime, f.size, f.fingerprint)
	atomic.AddInt32(processed, 1)
	atomic.AddInt32(indexed, int32(len(records)))
	return nil
}
