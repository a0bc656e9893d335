package searcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corpusidx/corpusidx/internal/vectorstore"
	"github.com/corpusidx/corpusidx/pkg/types"
)

type stubEmbedder struct {
	calls atomic.Int32
	err   error
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2}, nil
}

func (s *stubEmbedder) Backend() string { return "stub" }
func (s *stubEmbedder) Model() string   { return "stub" }
func (s *stubEmbedder) Close() error    { return nil }

type stubStore struct {
	results   []types.SearchResult
	err       error
	lastLimit int
	calls     atomic.Int32
}

func (s *stubStore) Open(context.Context, []float32) (bool, error) { return true, nil }

func (s *stubStore) DeleteBySource(context.Context, string) error { return nil }

func (s *stubStore) Insert(context.Context, []vectorstore.Record) error { return nil }

func (s *stubStore) Count(context.Context) (int, error) { return len(s.results), nil }

func (s *stubStore) Close() error { return nil }

func (s *stubStore) Search(_ context.Context, _ []float32, limit int) ([]types.SearchResult, error) {
	s.calls.Add(1)
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	if limit > len(s.results) {
		limit = len(s.results)
	}
	return s.results[:limit], nil
}

func sampleResults() []types.SearchResult {
	return []types.SearchResult{
		{Source: "a.txt", Text: "first chunk", Score: 0.9, Rank: 1},
		{Source: "b.txt", Text: "second chunk", Score: 0.7, Rank: 2},
		{Source: "c.txt", Text: "third chunk", Score: 0.5, Rank: 3},
	}
}

func TestSearch(t *testing.T) {
	t.Run("empty query rejected", func(t *testing.T) {
		s := New(&stubStore{}, &stubEmbedder{}, zap.NewNop())
		_, err := s.Search(context.Background(), Request{Query: "   "})
		assert.Error(t, err)
	})

	t.Run("default limit applied", func(t *testing.T) {
		store := &stubStore{results: sampleResults()}
		s := New(store, &stubEmbedder{}, zap.NewNop())
		resp, err := s.Search(context.Background(), Request{Query: "what is alpha"})
		require.NoError(t, err)
		assert.Equal(t, DefaultLimit, store.lastLimit)
		assert.Len(t, resp.Results, 3)
		assert.False(t, resp.CacheHit)
	})

	t.Run("explicit limit passed through", func(t *testing.T) {
		store := &stubStore{results: sampleResults()}
		s := New(store, &stubEmbedder{}, zap.NewNop())
		resp, err := s.Search(context.Background(), Request{Query: "q", Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, store.lastLimit)
		assert.Len(t, resp.Results, 2)
	})

	t.Run("embed failure surfaces", func(t *testing.T) {
		emb := &stubEmbedder{err: errors.New("service down")}
		s := New(&stubStore{}, emb, zap.NewNop())
		_, err := s.Search(context.Background(), Request{Query: "q"})
		assert.Error(t, err)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		s := New(&stubStore{err: errors.New("index broken")}, &stubEmbedder{}, zap.NewNop())
		_, err := s.Search(context.Background(), Request{Query: "q"})
		assert.Error(t, err)
	})
}

func TestSearchCache(t *testing.T) {
	store := &stubStore{results: sampleResults()}
	emb := &stubEmbedder{}
	s := New(store, emb, zap.NewNop())

	req := Request{Query: "repeated question", UseCache: true, CacheTTL: time.Minute}

	first, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, int32(1), emb.calls.Load(), "cache hits skip embedding")
	assert.Equal(t, int32(1), store.calls.Load())

	// a different limit is a different cache key
	_, err = s.Search(context.Background(), Request{Query: "repeated question", Limit: 2, UseCache: true})
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.calls.Load())
}

func TestBuildContext(t *testing.T) {
	t.Run("exact block shape", func(t *testing.T) {
		got := BuildContext(sampleResults()[:2], "what is alpha?")
		want := "Context:\nfirst chunk\n---\nsecond chunk\n\nQuestion: what is alpha?"
		assert.Equal(t, want, got)
	})

	t.Run("single result has no separator", func(t *testing.T) {
		got := BuildContext(sampleResults()[:1], "q")
		assert.Equal(t, "Context:\nfirst chunk\n\nQuestion: q", got)
	})

	t.Run("no results still yields the frame", func(t *testing.T) {
		got := BuildContext(nil, "q")
		assert.Equal(t, "Context:\n\n\nQuestion: q", got)
	})
}
