package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Chunk represents a bounded span of a document's text, the unit of
// embedding and retrieval. Chunks are derived fresh on every (re)processing
// of a file and are never mutated.
type Chunk struct {
	// Source is the path of the file the chunk was cut from. It is the
	// stable join key between cache entries and vector records.
	Source string

	// Ordinal is the chunk's position within its source file, starting at 0.
	Ordinal int

	// Text is the chunk content, trimmed of surrounding whitespace.
	Text string
}

// Validate checks that the chunk is well-formed.
func (c *Chunk) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyContent
	}
	if c.Source == "" {
		return ErrMissingSource
	}
	if c.Ordinal < 0 {
		return errors.New("chunk ordinal must be >= 0")
	}
	return nil
}

// Hash returns the hex-encoded SHA-256 of the chunk text. Used as the
// embedding cache key.
func (c *Chunk) Hash() string {
	sum := sha256.Sum256([]byte(c.Text))
	return hex.EncodeToString(sum[:])
}
