package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/corpusidx/corpusidx/internal/embedder"
	"github.com/corpusidx/corpusidx/internal/vectorstore"
	"github.com/corpusidx/corpusidx/pkg/types"
)

const (
	// DefaultLimit is the default number of chunks retrieved per query.
	DefaultLimit = 5

	// DefaultCacheTTL bounds how long a cached query response is served.
	DefaultCacheTTL = 5 * time.Minute

	// contextSeparator joins retrieved chunks in the context block.
	contextSeparator = "\n---\n"
)

// Request contains parameters for one retrieval query.
type Request struct {
	Query    string
	Limit    int           // default DefaultLimit
	UseCache bool          // serve repeated queries from the LRU cache
	CacheTTL time.Duration // default DefaultCacheTTL
}

// Response contains ranked results and query metadata.
type Response struct {
	Results  []types.SearchResult
	Duration time.Duration
	CacheHit bool
}

// cacheEntry is a cached response with its expiration time.
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// Searcher embeds a query and runs similarity search over the vector
// index. It is the read-side counterpart of the ingestion pipeline and
// never mutates the index.
type Searcher struct {
	store    vectorstore.Store
	embedder embedder.Embedder
	logger   *zap.Logger
	cache    *lru.Cache[[32]byte, *cacheEntry]
}

// New creates a Searcher.
func New(store vectorstore.Store, emb embedder.Embedder, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := lru.New[[32]byte, *cacheEntry](1000)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(fmt.Sprintf("create query cache: %v", err))
	}
	return &Searcher{
		store:    store,
		embedder: emb,
		logger:   logger,
		cache:    cache,
	}
}

// Search embeds the query text and returns the most similar chunks.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.CacheTTL <= 0 {
		req.CacheTTL = DefaultCacheTTL
	}

	key := cacheKey(req.Query, req.Limit)
	if req.UseCache {
		if entry, ok := s.cache.Get(key); ok && time.Now().Before(entry.expiresAt) {
			hit := *entry.response
			hit.CacheHit = true
			return &hit, nil
		}
	}

	start := time.Now()

	vector, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.store.Search(ctx, vector, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	resp := &Response{
		Results:  results,
		Duration: time.Since(start),
	}

	if req.UseCache {
		s.cache.Add(key, &cacheEntry{
			response:  resp,
			expiresAt: time.Now().Add(req.CacheTTL),
		})
	}

	s.logger.Debug("query served",
		zap.Int("results", len(results)),
		zap.Duration("duration", resp.Duration),
	)
	return resp, nil
}

// BuildContext assembles the retrieval context block handed to the
// downstream answering step:
//
//	Context:
//	<chunk1>
//	---
//	<chunk2>
//
//	Question: <original query>
func BuildContext(results []types.SearchResult, query string) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(texts, contextSeparator))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	return b.String()
}

// cacheKey hashes the query and limit into a fixed-size key.
func cacheKey(query string, limit int) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%d:%s", limit, query)))
}
