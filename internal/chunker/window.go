package chunker

import "strings"

const (
	// DefaultWindowSize is the default fixed-window chunk size in runes.
	DefaultWindowSize = 1000

	// DefaultWindowOverlap is the default overlap between adjacent windows.
	DefaultWindowOverlap = 200
)

// Window splits text into fixed-size rune windows with a configurable
// overlap between adjacent windows. It is the directory-pipeline
// alternative to the sentence-greedy strategy and obeys the same contract:
// finite, deterministic, order-preserving.
type Window struct {
	size    int
	overlap int
}

// NewWindow creates a fixed-window chunker. Non-positive size falls back to
// DefaultWindowSize; overlap is clamped to size-1 so the window always
// advances.
func NewWindow(size, overlap int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &Window{size: size, overlap: overlap}
}

// Split implements Chunker.
func (w *Window) Split(text string) []string {
	runes := []rune(text)
	step := w.size - w.overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + w.size
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
