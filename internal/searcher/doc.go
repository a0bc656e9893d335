// Package searcher serves similarity queries over the vector index built
// by the ingestion pipeline.
//
// A query is embedded with the same model the corpus was indexed with,
// the top-k most similar chunks are fetched from the store (k defaults to
// 5), and BuildContext formats them into the context block consumed by
// the downstream answering step. Repeated queries can be served from an
// LRU cache with a TTL.
package searcher
