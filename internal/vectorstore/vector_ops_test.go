package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorSerialization(t *testing.T) {
	original := []float32{0.1, -0.5, 3.14159, 0, -0}
	blob := serializeVector(original)
	require.Len(t, blob, len(original)*4)
	assert.Equal(t, original, deserializeVector(blob))

	assert.Empty(t, deserializeVector(nil))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"scaled is still identical", []float32{1, 2}, []float32{2, 4}, 1.0},
		{"mismatched lengths", []float32{1, 0}, []float32{1}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSortCandidates(t *testing.T) {
	cands := []candidate{
		{source: "b", score: 0.2},
		{source: "a", score: 0.9},
		{source: "c", score: 0.5},
	}
	sortCandidates(cands)
	assert.Equal(t, "a", cands[0].source)
	assert.Equal(t, "c", cands[1].source)
	assert.Equal(t, "b", cands[2].source)
}
