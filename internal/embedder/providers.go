package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Provider configuration
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"

	// DefaultOllamaHost is the default local embedding service address.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is used when no model is configured.
	DefaultOllamaModel = "nomic-embed-text"

	// DefaultOpenAIModel is used when no model is configured.
	DefaultOpenAIModel = "text-embedding-3-small"

	// Retry configuration
	DefaultRetryBudget = 3
	initialBackoffMs   = 100
	maxBackoffMs       = 5000
	backoffMultiplier  = 2.0
)

// OllamaProvider implements Embedder against an Ollama-compatible
// embeddings endpoint: POST {host}/api/embeddings with {model, prompt},
// returning {embedding}.
type OllamaProvider struct {
	host       string
	model      string
	retry      RetryConfig
	httpClient *http.Client
	cache      *Cache
}

// NewOllamaProvider creates an Ollama-backed embedder. Empty host and model
// fall back to defaults; a non-positive retryBudget keeps the default of 3.
func NewOllamaProvider(host, model string, retryBudget int, cache *Cache) *OllamaProvider {
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaProvider{
		host:  strings.TrimRight(host, "/"),
		model: model,
		retry: DefaultRetryConfig().withBudget(retryBudget),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		cache: cache,
	}
}

// Embed implements Embedder.
func (o *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if o.cache != nil {
		if v, ok := o.cache.Get(hash); ok {
			return v, nil
		}
	}

	vector, err := retryWithBackoff(ctx, o.retry, func() ([]float32, error) {
		return o.callAPI(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrEmbedFailed, o.retry.MaxAttempts, err)
	}

	if o.cache != nil {
		o.cache.Set(hash, vector)
	}
	return vector, nil
}

// callAPI performs one embedding attempt. A malformed or non-finite vector
// counts as a failed attempt, same as a transport error.
func (o *OllamaProvider) callAPI(ctx context.Context, text string) ([]float32, error) {
	reqBody := map[string]any{
		"model":  o.model,
		"prompt": text,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if err := ValidateVector(apiResp.Embedding); err != nil {
		return nil, err
	}
	return apiResp.Embedding, nil
}

// Backend implements Embedder.
func (o *OllamaProvider) Backend() string { return BackendOllama }

// Model implements Embedder.
func (o *OllamaProvider) Model() string { return o.model }

// Close implements Embedder.
func (o *OllamaProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// OpenAIProvider implements Embedder using the OpenAI embeddings API, or
// any OpenAI-compatible service when a base URL is configured.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	retry  RetryConfig
	cache  *Cache
}

// NewOpenAIProvider creates an OpenAI-backed embedder.
func NewOpenAIProvider(apiKey, baseURL, model string, retryBudget int, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrUnknownBackend)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		retry:  DefaultRetryConfig().withBudget(retryBudget),
		cache:  cache,
	}, nil
}

// Embed implements Embedder.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if p.cache != nil {
		if v, ok := p.cache.Get(hash); ok {
			return v, nil
		}
	}

	vector, err := retryWithBackoff(ctx, p.retry, func() ([]float32, error) {
		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(p.model),
			Input: []string{text},
		})
		if err != nil {
			return nil, fmt.Errorf("api call: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("no embedding data returned")
		}

		v := make([]float32, len(resp.Data[0].Embedding))
		copy(v, resp.Data[0].Embedding)
		if err := ValidateVector(v); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrEmbedFailed, p.retry.MaxAttempts, err)
	}

	if p.cache != nil {
		p.cache.Set(hash, vector)
	}
	return vector, nil
}

// Backend implements Embedder.
func (p *OpenAIProvider) Backend() string { return BackendOpenAI }

// Model implements Embedder.
func (p *OpenAIProvider) Model() string { return p.model }

// Close implements Embedder.
func (p *OpenAIProvider) Close() error { return nil }
