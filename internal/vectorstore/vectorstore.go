package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/corpusidx/corpusidx/pkg/types"
)

// Common errors
var (
	ErrNotOpen        = errors.New("index not open")
	ErrUnknownBackend = errors.New("unknown vector store backend")
	ErrDimension      = errors.New("vector dimension mismatch")
)

// Backend names
const (
	BackendChromem = "chromem"
	BackendSQLite  = "sqlite"
)

// Record is one persisted (vector, text, source) triple.
type Record struct {
	ID      string
	Source  string
	Ordinal int
	Text    string
	Vector  []float32
}

// Store is the adapter over the vector index engine. The ingestion
// orchestrator exclusively owns the mutating operations during a run;
// Search is the contract consumed by the retrieval layer.
type Store interface {
	// Open prepares the index. If it does not exist yet it is created with
	// the sample vector's dimensionality; if it does, it is opened as-is.
	// The return value reports whether the index existed beforehand, which
	// the orchestrator uses to decide whether delete-by-source is needed.
	Open(ctx context.Context, sampleVector []float32) (existed bool, err error)

	// DeleteBySource removes every record whose source equals the given
	// path. The source value must never be spliced into a textual filter
	// expression; backends use parameterized queries or structured filters.
	DeleteBySource(ctx context.Context, source string) error

	// Insert writes records atomically: a mid-batch failure leaves none of
	// the batch visible.
	Insert(ctx context.Context, records []Record) error

	// Search returns the limit most similar records by cosine similarity.
	Search(ctx context.Context, vector []float32, limit int) ([]types.SearchResult, error)

	// Count returns the number of records in the index.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Config selects and configures a Store backend.
type Config struct {
	Backend    string // "chromem" (default) or "sqlite"
	Path       string // Directory (chromem) or database file (sqlite)
	Collection string // Logical index name (default "corpus")
}

// New creates a Store from configuration.
func New(cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Collection == "" {
		cfg.Collection = "corpus"
	}

	backend := strings.ToLower(cfg.Backend)
	if backend == "" {
		backend = BackendChromem
	}

	switch backend {
	case BackendChromem:
		return NewChromemStore(cfg.Path, cfg.Collection, logger)
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
