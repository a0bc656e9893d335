package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentenceSplit(t *testing.T) {
	tests := []struct {
		name       string
		targetSize int
		text       string
		want       []string
	}{
		{
			name:       "empty input yields no chunks",
			targetSize: 100,
			text:       "",
			want:       nil,
		},
		{
			name:       "whitespace only yields no chunks",
			targetSize: 100,
			text:       "   \n\t  \n",
			want:       nil,
		},
		{
			name:       "short text stays one chunk",
			targetSize: 1000,
			text:       "First sentence. Second sentence. Third sentence.",
			want:       []string{"First sentence. Second sentence. Third sentence."},
		},
		{
			name:       "greedy flush at target",
			targetSize: 15,
			text:       "Sentence one. Sentence two. Sentence three.",
			want:       []string{"Sentence one.", "Sentence two.", "Sentence three."},
		},
		{
			name:       "text without terminators is one sentence",
			targetSize: 1000,
			text:       "no terminators here at all",
			want:       []string{"no terminators here at all"},
		},
		{
			name:       "newline is a hard boundary",
			targetSize: 1000,
			text:       "heading without period\nBody sentence.",
			want:       []string{"heading without period Body sentence."},
		},
		{
			// "Really?" + joining space + "Yes!" projects to exactly the
			// target, which flushes before the append.
			name:       "reaching the target exactly flushes",
			targetSize: 12,
			text:       "Really? Yes! Okay then.",
			want:       []string{"Really?", "Yes!", "Okay then."},
		},
		{
			name:       "question and exclamation terminate",
			targetSize: 13,
			text:       "Really? Yes! Okay then.",
			want:       []string{"Really? Yes!", "Okay then."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSentence(tt.targetSize).Split(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSentenceSplitDeterministic(t *testing.T) {
	text := strings.Repeat("One short sentence here. Another sentence follows it. ", 50)
	c := NewSentence(120)

	first := c.Split(text)
	require.NotEmpty(t, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Split(text))
	}
}

func TestSentenceSplitBounds(t *testing.T) {
	// Chunks stay near the target: each chunk is below target plus the
	// length of the longest single sentence.
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&sb, "Sentence number %d carries a bit of filler text. ", i)
	}
	target := 300
	chunks := NewSentence(target).Split(sb.String())
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), target+60, "chunk overflows target by more than one sentence")
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestSentenceDefaultTarget(t *testing.T) {
	c := NewSentence(0)
	assert.Equal(t, DefaultTargetSize, c.targetSize)
	c = NewSentence(-5)
	assert.Equal(t, DefaultTargetSize, c.targetSize)
}

func TestSentenceOversizedSentence(t *testing.T) {
	// A single sentence longer than the target still comes out whole; the
	// chunker never cuts inside a sentence.
	long := strings.Repeat("word ", 100) + "end."
	chunks := NewSentence(50).Split(long)
	require.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(long), chunks[0])
}

func TestCut(t *testing.T) {
	chunks := Cut(NewSentence(15), "docs/a.txt", "Sentence one. Sentence two. Sentence three.")
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, "docs/a.txt", c.Source)
		assert.Equal(t, i, c.Ordinal)
		require.NoError(t, c.Validate())
	}
	assert.Equal(t, "Sentence one.", chunks[0].Text)
	assert.Equal(t, "Sentence three.", chunks[2].Text)
}

func TestWindowSplit(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, NewWindow(10, 2).Split(""))
	})

	t.Run("exact windows with overlap", func(t *testing.T) {
		text := "abcdefghij" // 10 runes
		chunks := NewWindow(4, 2).Split(text)
		assert.Equal(t, []string{"abcd", "cdef", "efgh", "ghij"}, chunks)
	})

	t.Run("short tail kept", func(t *testing.T) {
		chunks := NewWindow(4, 0).Split("abcdefghijk")
		assert.Equal(t, []string{"abcd", "efgh", "ijk"}, chunks)
	})

	t.Run("overlap clamped below size", func(t *testing.T) {
		w := NewWindow(3, 10)
		chunks := w.Split("abcdef")
		// step is forced to 1, the window always advances
		assert.NotEmpty(t, chunks)
		assert.Equal(t, "abc", chunks[0])
	})

	t.Run("multibyte runes not split", func(t *testing.T) {
		chunks := NewWindow(2, 0).Split("héllo")
		assert.Equal(t, []string{"hé", "ll", "o"}, chunks)
	})
}
