package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/corpusidx/corpusidx/pkg/types"
)

// metadataSourceKey is the record metadata field carrying the source path.
const metadataSourceKey = "source"

// ChromemStore implements Store over chromem-go, an embeddable pure-Go
// vector database persisting to disk. It is the default backend: no
// external service, automatic persistence on every mutation.
type ChromemStore struct {
	path       string
	collection string
	logger     *zap.Logger

	db  *chromem.DB
	col *chromem.Collection
}

// NewChromemStore creates a ChromemStore rooted at the given directory.
// The index itself is opened lazily by Open.
func NewChromemStore(path, collection string, logger *zap.Logger) (*ChromemStore, error) {
	if path == "" {
		return nil, fmt.Errorf("chromem store path is required")
	}
	return &ChromemStore{
		path:       path,
		collection: collection,
		logger:     logger,
	}, nil
}

// noQueryEmbedding is installed as the collection's embedding function.
// Every document and query carries an explicit vector, so chromem should
// never need to embed on its own.
func noQueryEmbedding(context.Context, string) ([]float32, error) {
	return nil, errors.New("store does not embed; vectors must be provided")
}

// Open implements Store.
func (s *ChromemStore) Open(_ context.Context, sampleVector []float32) (bool, error) {
	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return false, fmt.Errorf("create store dir: %w", err)
	}

	db, err := chromem.NewPersistentDB(s.path, false)
	if err != nil {
		return false, fmt.Errorf("open chromem db: %w", err)
	}
	s.db = db

	existed := db.GetCollection(s.collection, noQueryEmbedding) != nil

	metadata := map[string]string{
		"dimension": strconv.Itoa(len(sampleVector)),
	}
	col, err := db.GetOrCreateCollection(s.collection, metadata, noQueryEmbedding)
	if err != nil {
		return false, fmt.Errorf("open collection %s: %w", s.collection, err)
	}
	s.col = col

	s.logger.Info("vector index open",
		zap.String("backend", BackendChromem),
		zap.String("path", s.path),
		zap.String("collection", s.collection),
		zap.Bool("existed", existed),
		zap.Int("records", col.Count()),
	)
	return existed, nil
}

// DeleteBySource implements Store. The source is passed as a structured
// metadata filter, never interpolated into an expression string, so paths
// containing quotes cannot malform the query.
func (s *ChromemStore) DeleteBySource(ctx context.Context, source string) error {
	if s.col == nil {
		return ErrNotOpen
	}
	where := map[string]string{metadataSourceKey: source}
	if err := s.col.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("delete by source %s: %w", source, err)
	}
	return nil
}

// Insert implements Store.
func (s *ChromemStore) Insert(ctx context.Context, records []Record) error {
	if s.col == nil {
		return ErrNotOpen
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		docs[i] = chromem.Document{
			ID:        id,
			Content:   rec.Text,
			Embedding: rec.Vector,
			Metadata: map[string]string{
				metadataSourceKey: rec.Source,
				"ordinal":         strconv.Itoa(rec.Ordinal),
			},
		}
	}

	if err := s.col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("insert %d records: %w", len(records), err)
	}
	return nil
}

// Search implements Store.
func (s *ChromemStore) Search(ctx context.Context, vector []float32, limit int) ([]types.SearchResult, error) {
	if s.col == nil {
		return nil, ErrNotOpen
	}

	// chromem rejects queries asking for more results than stored.
	count := s.col.Count()
	if count == 0 || limit <= 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	hits, err := s.col.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	results := make([]types.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = types.SearchResult{
			Source: hit.Metadata[metadataSourceKey],
			Text:   hit.Content,
			Score:  float64(hit.Similarity),
			Rank:   i + 1,
		}
	}
	return results, nil
}

// Count implements Store.
func (s *ChromemStore) Count(_ context.Context) (int, error) {
	if s.col == nil {
		return 0, ErrNotOpen
	}
	return s.col.Count(), nil
}

// Close implements Store. chromem persists on every mutation, so there is
// nothing to flush.
func (s *ChromemStore) Close() error {
	s.db = nil
	s.col = nil
	return nil
}
