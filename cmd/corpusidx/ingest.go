package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpusidx/corpusidx/internal/cache"
	"github.com/corpusidx/corpusidx/internal/chunker"
	"github.com/corpusidx/corpusidx/internal/embedder"
	"github.com/corpusidx/corpusidx/internal/extract"
	"github.com/corpusidx/corpusidx/internal/indexer"
	"github.com/corpusidx/corpusidx/internal/vectorstore"
)

func newIngestCmd(configPath *string) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest the corpus into the vector index",
		Long: `Walk the corpus root, detect added and modified files, and bring the
vector index in sync with them. Unchanged files are skipped; interrupting
the run is safe and the next run resumes where this one stopped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if root != "" {
				cfg.Corpus.Root = root
			}
			if cfg.Corpus.Root == "" {
				return fmt.Errorf("corpus root is required (corpus.root or --root)")
			}
			if _, err := os.Stat(cfg.Corpus.Root); err != nil {
				return fmt.Errorf("corpus root: %w", err)
			}

			emb, err := embedder.New(embedder.Config{
				Backend:     cfg.Embedding.Backend,
				Host:        cfg.Embedding.Host,
				Model:       cfg.Embedding.Model,
				APIKey:      cfg.Embedding.APIKey,
				RetryBudget: cfg.Embedding.RetryBudget,
				CacheSize:   cfg.Embedding.CacheSize,
			})
			if err != nil {
				return err
			}
			defer func() { _ = emb.Close() }()

			store, err := vectorstore.New(vectorstore.Config{
				Backend:    cfg.Store.Backend,
				Path:       cfg.Store.Path,
				Collection: cfg.Store.Collection,
			}, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var tracker cache.Tracker
			if cfg.Cache.Format == "log" {
				tracker = cache.LoadLog(cfg.Cache.Path, logger)
			} else {
				tracker = cache.Load(cfg.Cache.Path, logger)
			}

			var ch chunker.Chunker
			if cfg.Chunking.Strategy == "window" {
				ch = chunker.NewWindow(cfg.Chunking.WindowSize, cfg.Chunking.WindowOverlap)
			} else {
				ch = chunker.NewSentence(cfg.Chunking.TargetSize)
			}

			registry := extract.NewRegistry(logger)

			idx := indexer.New(registry, ch, emb, store, tracker, logger, indexer.Config{
				Workers: cfg.Ingest.Workers,
			})

			// Cancellation takes effect between files; the file in flight
			// finishes before the run winds down.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stats, err := idx.Run(ctx, cfg.Corpus.Root)
			if err != nil {
				return err
			}

			fmt.Printf("Walked %d files: %d processed, %d unchanged, %d skipped, %d failed\n",
				stats.FilesWalked, stats.FilesProcessed, stats.FilesFresh, stats.FilesSkipped, stats.FilesFailed)
			fmt.Printf("Indexed %d chunks (%d dropped) in %s\n",
				stats.ChunksIndexed, stats.ChunksDropped, stats.Duration.Round(time.Millisecond))
			if stats.Cancelled {
				fmt.Println("Run cancelled; remaining files will be picked up next run")
			}
			for _, msg := range stats.ErrorMessages {
				fmt.Fprintln(os.Stderr, "  error:", msg)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "corpus root directory (overrides corpus.root)")
	return cmd
}
