package chunker

import (
	"regexp"
	"strings"

	"github.com/corpusidx/corpusidx/pkg/types"
)

const (
	// DefaultTargetSize is the default chunk size in characters.
	DefaultTargetSize = 1000
)

// Chunker decomposes text into a finite, deterministic, order-preserving
// sequence of bounded chunks. Chunk boundaries depend only on the text and
// the chunker's configuration, never on run history.
type Chunker interface {
	Split(text string) []string
}

// Cut splits text and tags each resulting chunk with its source path and
// ordinal position.
func Cut(c Chunker, source, text string) []types.Chunk {
	pieces := c.Split(text)
	chunks := make([]types.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = types.Chunk{
			Source:  source,
			Ordinal: i,
			Text:    p,
		}
	}
	return chunks
}

// sentenceRE matches one sentence: a run of non-terminator characters
// followed by one or more terminators.
var sentenceRE = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Sentence splits text into sentences and greedily packs them into chunks
// of roughly targetSize characters. Explicit newlines are treated as
// sentence boundaries as well.
type Sentence struct {
	targetSize int
}

// NewSentence creates a sentence-greedy chunker. A non-positive targetSize
// falls back to DefaultTargetSize.
func NewSentence(targetSize int) *Sentence {
	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}
	return &Sentence{targetSize: targetSize}
}

// Split implements Chunker. Sentences accumulate into a buffer separated by
// single spaces; when appending the next sentence would make the buffer
// reach or exceed the target size, the buffer is flushed as one chunk and
// the sentence starts a new buffer. Empty or whitespace-only input yields
// zero chunks.
func (s *Sentence) Split(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var buf strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(buf.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		buf.Reset()
	}

	for _, sentence := range sentences {
		projected := buf.Len() + len(sentence)
		if buf.Len() > 0 {
			projected++ // joining space
		}
		if projected >= s.targetSize {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(sentence)
	}
	flush()

	return chunks
}

// splitSentences segments text into trimmed sentences, honoring newlines as
// hard boundaries. Text after the last terminator on a line is kept as a
// trailing sentence.
func splitSentences(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		end := 0
		for _, loc := range sentenceRE.FindAllStringIndex(line, -1) {
			if s := strings.TrimSpace(line[loc[0]:loc[1]]); s != "" {
				sentences = append(sentences, s)
			}
			end = loc[1]
		}
		if tail := strings.TrimSpace(line[end:]); tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}
