//go:build !sqlite_cgo
// +build !sqlite_cgo

package vectorstore

// This file is compiled by default and when CGO is unavailable.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// The pure Go driver needs no C compiler and cross-compiles cleanly,
// at the cost of slower scans on large corpora.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
