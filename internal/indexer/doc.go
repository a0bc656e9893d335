// Package indexer orchestrates resumable corpus ingestion.
//
// A run moves through walking the corpus root, diffing the walked files
// against the change-detection cache, processing each stale file through
// extract -> chunk -> embed -> index, and finally persisting the cache.
// The cache entry for a file is committed only after its vector records
// are durably inserted, so a crash at any point leaves a state the next
// run repairs by reprocessing whatever was not committed.
//
// Failure handling is layered: a single chunk that exhausts the embedding
// retry budget is dropped; a file whose extraction or index write fails is
// left stale and the run continues; only the bootstrap sample embedding
// and the index open are fatal. Cancellation is cooperative and observed
// between files: an in-flight file always completes or fails before the
// run reports itself cancelled.
//
// Files are processed by a bounded worker pool, sequential by default.
// Correctness under parallelism relies on
// two invariants: each source path appears at most once in a run's work
// set, so no two workers ever interleave delete-then-insert for the same
// source, and cache commits are serialized by the tracker.
package indexer
