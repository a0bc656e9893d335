package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrEmptyText      = errors.New("text cannot be empty")
	ErrInvalidVector  = errors.New("invalid embedding vector")
	ErrEmbedFailed    = errors.New("embedding failed")
	ErrUnknownBackend = errors.New("unknown embedding backend")
)

// SampleText is embedded once to fix the vector index dimensionality before
// any real data is written. Failure to embed it means the service is down,
// which is fatal for an ingestion run.
const SampleText = "sample"

// Embedder generates a vector embedding for a single text. An exhausted
// retry budget surfaces as an error wrapping ErrEmbedFailed so callers can
// drop the one chunk without aborting the file or the run.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Backend returns the provider name ("ollama", "openai").
	Backend() string

	// Model returns the embedding model identifier.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}

// ValidateVector checks that an embedding is a non-empty sequence of finite
// floats. A NaN or infinity anywhere makes the whole vector invalid.
func ValidateVector(vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidVector)
	}
	for i, v := range vector {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite value at index %d", ErrInvalidVector, i)
		}
	}
	return nil
}

// ComputeHash computes the SHA-256 hash of text for cache keying.
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Cache provides in-memory LRU caching of embeddings by content hash.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates an embedding cache with LRU eviction. A non-positive
// size falls back to 10000 entries.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		// Only reachable with a non-positive size, which is handled above.
		cache, _ = lru.New[string, []float32](10000)
	}
	return &Cache{cache: cache}
}

// Get retrieves a copy of a cached vector. A copy is returned so caller
// mutations cannot pollute the cache.
func (c *Cache) Get(hash string) ([]float32, bool) {
	v, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// Set stores a vector, evicting the least recently used entry at capacity.
func (c *Cache) Set(hash string, vector []float32) {
	c.cache.Add(hash, vector)
}

// Len returns the current cache size.
func (c *Cache) Len() int {
	return c.cache.Len()
}
