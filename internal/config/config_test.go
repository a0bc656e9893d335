package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "ollama", cfg.Embedding.Backend)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, 3, cfg.Embedding.RetryBudget)
	assert.Equal(t, "sentence", cfg.Chunking.Strategy)
	assert.Equal(t, 1000, cfg.Chunking.TargetSize)
	assert.Equal(t, "chromem", cfg.Store.Backend)
	assert.Equal(t, "corpus", cfg.Store.Collection)
	assert.Equal(t, 1, cfg.Ingest.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err, "a missing config file falls back to defaults")
	assert.Equal(t, "ollama", cfg.Embedding.Backend)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpusidx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
corpus:
  root: /data/docs
embedding:
  backend: openai
  model: text-embedding-3-large
  retry_budget: 5
chunking:
  strategy: window
  window_size: 800
store:
  backend: sqlite
  path: /data/index.db
ingest:
  workers: 4
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/docs", cfg.Corpus.Root)
	assert.Equal(t, "openai", cfg.Embedding.Backend)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedding.Model)
	assert.Equal(t, 5, cfg.Embedding.RetryBudget)
	assert.Equal(t, "window", cfg.Chunking.Strategy)
	assert.Equal(t, 800, cfg.Chunking.WindowSize)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/data/index.db", cfg.Store.Path)
	assert.Equal(t, 4, cfg.Ingest.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)

	// untouched fields keep their defaults
	assert.Equal(t, 1000, cfg.Chunking.TargetSize)
	assert.Equal(t, "corpus", cfg.Store.Collection)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corpus: [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpusidx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
embedding:
  model: from-file
`), 0o644))

	t.Setenv("CORPUSIDX_EMBEDDING__MODEL", "from-env")
	t.Setenv("CORPUSIDX_EMBEDDING__RETRY_BUDGET", "7")
	t.Setenv("CORPUSIDX_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Embedding.Model, "environment beats the file")
	assert.Equal(t, 7, cfg.Embedding.RetryBudget)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad embedding backend", func(c *Config) { c.Embedding.Backend = "cohere" }},
		{"bad chunking strategy", func(c *Config) { c.Chunking.Strategy = "paragraph" }},
		{"bad cache format", func(c *Config) { c.Cache.Format = "xml" }},
		{"bad store backend", func(c *Config) { c.Store.Backend = "weaviate" }},
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"empty cache path", func(c *Config) { c.Cache.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
