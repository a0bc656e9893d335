// Package cache tracks which corpus files have been ingested into the
// vector index, so re-runs skip unchanged files.
//
// The cache is the index's write-ahead commit log, inverted: an entry is
// only written after a file's vector records are durable, so the on-disk
// cache is never ahead of the index. A crash mid-run loses at most the
// uncommitted files, which are simply reprocessed next run.
//
// Two representations implement Tracker. Cache is the current format, a
// JSON object mapping path to {mtime, size, fileId} where fileId is the
// content SHA-256; staleness uses the fingerprint with an mtime+size fast
// path. Log is the legacy format, a JSON array of paths with set semantics.
// The two must not be pointed at the same file in one deployment.
//
// Loading a missing or corrupt file of either format is non-fatal and
// yields an empty state, i.e. full reprocessing.
package cache
