// Package embedder wraps remote embedding services with bounded retry,
// response validation, and caching.
//
// Two backends are supported: an Ollama-compatible endpoint speaking
// {model, prompt} -> {embedding}, and the OpenAI embeddings API (or any
// compatible service via a base URL override). Every attempt's response is
// validated to be a non-empty vector of finite floats; a NaN or infinity is
// treated as a failed attempt and retried, not as a fatal error.
//
// When the retry budget (default 3 attempts) is exhausted, Embed returns an
// error wrapping ErrEmbedFailed. Callers are expected to drop the single
// chunk and continue, so one flaky call never fails a whole file or run.
//
// # Basic Usage
//
//	emb, err := embedder.New(embedder.Config{
//	    Backend:   "ollama",
//	    Host:      "http://localhost:11434",
//	    Model:     "nomic-embed-text",
//	    CacheSize: 10000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	vector, err := emb.Embed(ctx, chunk.Text)
//	if errors.Is(err, embedder.ErrEmbedFailed) {
//	    // drop this chunk, keep going
//	}
//
// An in-memory LRU cache keyed by the SHA-256 of the text avoids repeat
// calls for identical chunks within a run.
package embedder
