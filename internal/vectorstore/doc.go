// Package vectorstore persists (vector, text, source) records and serves
// similarity search over them.
//
// Two backends implement the Store interface. ChromemStore wraps
// chromem-go, an embeddable pure-Go vector database that persists every
// mutation to disk; it is the default. SQLiteStore keeps records in a
// single SQLite file (pure-Go driver by default, C driver behind the
// sqlite_cgo build tag) with vectors as float32 blobs and a brute-force
// cosine scan for search.
//
// The index is created lazily: Open fixes the schema dimensionality from a
// sample vector the first time, and opens an existing index as-is without
// re-checking dimensions against it.
//
// Delete-by-source is injection-proof by construction: the sqlite backend
// binds the source path as a query parameter and the chromem backend passes
// it as a structured metadata filter, so paths containing quote characters
// cannot terminate a filter expression early.
package vectorstore
