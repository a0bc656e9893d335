package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestChromemStore(t *testing.T, path string) *ChromemStore {
	t.Helper()
	s, err := NewChromemStore(path, "corpus", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestChromemStoreOpen(t *testing.T) {
	t.Run("path required", func(t *testing.T) {
		_, err := NewChromemStore("", "corpus", zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("lazy creation and existed flag", func(t *testing.T) {
		dir := t.TempDir()
		ctx := context.Background()
		sample := []float32{0.6, 0.8}

		s1 := newTestChromemStore(t, dir)
		existed, err := s1.Open(ctx, sample)
		require.NoError(t, err)
		assert.False(t, existed, "fresh directory, no collection yet")

		// a record must be written for the collection to persist
		require.NoError(t, s1.Insert(ctx, []Record{
			{Source: "a.txt", Ordinal: 0, Text: "seed", Vector: sample},
		}))
		require.NoError(t, s1.Close())

		s2 := newTestChromemStore(t, dir)
		existed, err = s2.Open(ctx, sample)
		require.NoError(t, err)
		assert.True(t, existed)

		count, err := s2.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestChromemStoreInsertAndSearch(t *testing.T) {
	s := newTestChromemStore(t, t.TempDir())
	ctx := context.Background()
	_, err := s.Open(ctx, []float32{1, 0, 0})
	require.NoError(t, err)

	require.NoError(t, s.Insert(ctx, []Record{
		{Source: "a.txt", Ordinal: 0, Text: "north", Vector: []float32{1, 0, 0}},
		{Source: "a.txt", Ordinal: 1, Text: "northeast", Vector: []float32{0.7, 0.7, 0}},
		{Source: "b.txt", Ordinal: 0, Text: "east", Vector: []float32{0, 1, 0}},
	}))

	results, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "north", results[0].Text)
	assert.Equal(t, "a.txt", results[0].Source)
	assert.Equal(t, 1, results[0].Rank)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestChromemStoreSearchClamps(t *testing.T) {
	s := newTestChromemStore(t, t.TempDir())
	ctx := context.Background()
	_, err := s.Open(ctx, []float32{1, 0})
	require.NoError(t, err)

	t.Run("empty index returns nothing", func(t *testing.T) {
		results, err := s.Search(ctx, []float32{1, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	require.NoError(t, s.Insert(ctx, []Record{
		{Source: "a.txt", Ordinal: 0, Text: "only", Vector: []float32{1, 0}},
	}))

	t.Run("limit clamped to stored count", func(t *testing.T) {
		results, err := s.Search(ctx, []float32{1, 0}, 5)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestChromemStoreDeleteBySource(t *testing.T) {
	s := newTestChromemStore(t, t.TempDir())
	ctx := context.Background()
	_, err := s.Open(ctx, []float32{1, 0})
	require.NoError(t, err)

	tricky := `notes/it's "tricky".md`
	require.NoError(t, s.Insert(ctx, []Record{
		{Source: tricky, Ordinal: 0, Text: "one", Vector: []float32{1, 0}},
		{Source: "plain.md", Ordinal: 0, Text: "two", Vector: []float32{0, 1}},
	}))

	require.NoError(t, s.DeleteBySource(ctx, tricky))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := s.Search(ctx, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "plain.md", results[0].Source)
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	t.Run("default backend is chromem", func(t *testing.T) {
		s, err := New(Config{Path: dir}, zap.NewNop())
		require.NoError(t, err)
		_, ok := s.(*ChromemStore)
		assert.True(t, ok)
	})

	t.Run("sqlite backend", func(t *testing.T) {
		s, err := New(Config{Backend: "sqlite", Path: dir + "/x.db"}, zap.NewNop())
		require.NoError(t, err)
		_, ok := s.(*SQLiteStore)
		assert.True(t, ok)
	})

	t.Run("unknown backend rejected", func(t *testing.T) {
		_, err := New(Config{Backend: "pinecone", Path: dir}, zap.NewNop())
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})
}
