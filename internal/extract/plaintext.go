package extract

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"
)

const (
	// nulWindowBytes is the size of the leading window inspected for NUL
	// bytes before treating a file as text.
	nulWindowBytes = 8192

	// maxReplacementRatio is the fraction of invalid-encoding replacement
	// runes above which content is treated as binary.
	maxReplacementRatio = 0.10
)

// plainText reads a file verbatim, guarding against binary content that
// happens to carry a text extension.
type plainText struct{}

// Extract implements Extractor.
func (p *plainText) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return "", nil
	}

	if looksBinary(data) {
		return "", fmt.Errorf("%s: %w", path, ErrBinaryContent)
	}

	return string(data), nil
}

// looksBinary applies two heuristics: a NUL byte in the leading window, or
// a replacement-rune ratio at or above maxReplacementRatio across a full
// UTF-8 decode.
func looksBinary(data []byte) bool {
	window := data
	if len(window) > nulWindowBytes {
		window = window[:nulWindowBytes]
	}
	if bytes.IndexByte(window, 0) >= 0 {
		return true
	}

	total := 0
	invalid := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		total++
		i += size
	}
	if total == 0 {
		return false
	}
	return float64(invalid)/float64(total) >= maxReplacementRatio
}
