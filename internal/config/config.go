package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces environment overrides. A double underscore maps to
// one level of nesting: CORPUSIDX_EMBEDDING__MODEL sets embedding.model.
const envPrefix = "CORPUSIDX_"

// Config is the explicit configuration passed into every component at
// construction. There is no process-wide configuration state.
type Config struct {
	Corpus    CorpusConfig    `koanf:"corpus"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Chat      ChatConfig      `koanf:"chat"`
	Chunking  ChunkingConfig  `koanf:"chunking"`
	Cache     CacheConfig     `koanf:"cache"`
	Store     StoreConfig     `koanf:"store"`
	Ingest    IngestConfig    `koanf:"ingest"`
	LogLevel  string          `koanf:"log_level"`
}

// CorpusConfig locates the files to ingest.
type CorpusConfig struct {
	Root string `koanf:"root"`
}

// EmbeddingConfig configures the embedding client.
type EmbeddingConfig struct {
	Backend     string `koanf:"backend"`      // "ollama" or "openai"
	Host        string `koanf:"host"`         // service host / base URL
	Model       string `koanf:"model"`        // embedding model identifier
	APIKey      string `koanf:"api_key"`      // openai backend only
	RetryBudget int    `koanf:"retry_budget"` // attempts per call
	CacheSize   int    `koanf:"cache_size"`   // LRU entries, 0 disables
}

// ChatConfig names the chat model used by the downstream answering step.
// The pipeline itself never calls it; it is carried so one config file
// serves both sides.
type ChatConfig struct {
	Model string `koanf:"model"`
}

// ChunkingConfig selects and sizes the chunking strategy.
type ChunkingConfig struct {
	Strategy      string `koanf:"strategy"`       // "sentence" (default) or "window"
	TargetSize    int    `koanf:"target_size"`    // sentence strategy
	WindowSize    int    `koanf:"window_size"`    // window strategy
	WindowOverlap int    `koanf:"window_overlap"` // window strategy
}

// CacheConfig locates the change-detection cache.
type CacheConfig struct {
	Path   string `koanf:"path"`
	Format string `koanf:"format"` // "mtime" (default) or "log"
}

// StoreConfig selects and locates the vector index backend.
type StoreConfig struct {
	Backend    string `koanf:"backend"` // "chromem" (default) or "sqlite"
	Path       string `koanf:"path"`
	Collection string `koanf:"collection"`
}

// IngestConfig tunes the ingestion run.
type IngestConfig struct {
	Workers int `koanf:"workers"`
}

// Default returns the configuration used when a field is not set by file
// or environment.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Backend:     "ollama",
			Host:        "http://localhost:11434",
			Model:       "nomic-embed-text",
			RetryBudget: 3,
			CacheSize:   10000,
		},
		Chat: ChatConfig{
			Model: "llama3",
		},
		Chunking: ChunkingConfig{
			Strategy:      "sentence",
			TargetSize:    1000,
			WindowSize:    1000,
			WindowOverlap: 200,
		},
		Cache: CacheConfig{
			Path:   "data/ingest-cache.json",
			Format: "mtime",
		},
		Store: StoreConfig{
			Backend:    "chromem",
			Path:       "data/index",
			Collection: "corpus",
		},
		Ingest: IngestConfig{
			Workers: 1,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// CORPUSIDX_* environment overrides, in that precedence order. A missing
// file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations no component could act on.
func (c *Config) Validate() error {
	switch c.Embedding.Backend {
	case "", "ollama", "openai":
	default:
		return fmt.Errorf("embedding.backend %q is not supported", c.Embedding.Backend)
	}
	switch c.Chunking.Strategy {
	case "", "sentence", "window":
	default:
		return fmt.Errorf("chunking.strategy %q is not supported", c.Chunking.Strategy)
	}
	switch c.Cache.Format {
	case "", "mtime", "log":
	default:
		return fmt.Errorf("cache.format %q is not supported", c.Cache.Format)
	}
	switch c.Store.Backend {
	case "", "chromem", "sqlite":
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}
	if c.Store.Path == "" {
		return errors.New("store.path is required")
	}
	if c.Cache.Path == "" {
		return errors.New("cache.path is required")
	}
	return nil
}
