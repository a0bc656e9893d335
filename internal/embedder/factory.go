package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Config holds embedder construction parameters.
type Config struct {
	Backend     string // "ollama" (default) or "openai"
	Host        string // Service host; base URL for openai-compatible hosts
	Model       string // Embedding model identifier
	APIKey      string // Required for the openai backend
	RetryBudget int    // Attempts per embedding call (default 3)
	CacheSize   int    // LRU entries; 0 disables caching
}

// New creates an embedder from explicit configuration. No environment
// variables are consulted except the OpenAI API key fallback.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	backend := strings.ToLower(cfg.Backend)
	if backend == "" {
		backend = BackendOllama
	}

	switch backend {
	case BackendOllama:
		return NewOllamaProvider(cfg.Host, cfg.Model, cfg.RetryBudget, cache), nil
	case BackendOpenAI:
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		return NewOpenAIProvider(key, cfg.Host, cfg.Model, cfg.RetryBudget, cache)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
