package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpusidx/corpusidx/internal/embedder"
	"github.com/corpusidx/corpusidx/internal/searcher"
	"github.com/corpusidx/corpusidx/internal/vectorstore"
)

func newQueryCmd(configPath *string) *cobra.Command {
	var (
		limit       int
		showContext bool
	)

	cmd := &cobra.Command{
		Use:   "query <text>...",
		Short: "Search the vector index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			query := strings.Join(args, " ")

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

			ctx := cmd.Context()

			sample, err := emb.Embed(ctx, embedder.SampleText)
			if err != nil {
				return fmt.Errorf("embedding service unreachable: %w", err)
			}
			if _, err := store.Open(ctx, sample); err != nil {
				return err
			}

			s := searcher.New(store, emb, logger)
			resp, err := s.Search(ctx, searcher.Request{Query: query, Limit: limit})
			if err != nil {
				return err
			}

			if len(resp.Results) == 0 {
				fmt.Println("No matches; has the corpus been ingested?")
				return nil
			}

			if showContext {
				fmt.Println(searcher.BuildContext(resp.Results, query))
				return nil
			}

			for _, r := range resp.Results {
				fmt.Printf("%2d. [%.3f] %s\n", r.Rank, r.Score, r.Source)
				fmt.Printf("    %s\n", firstLine(r.Text, 160))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "k", searcher.DefaultLimit, "number of chunks to retrieve")
	cmd.Flags().BoolVar(&showContext, "context", false, "print the assembled context block instead of a result list")
	return cmd
}

// firstLine returns the first line of s truncated to max runes.
func firstLine(s string, max int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return s
}
