package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkValidate(t *testing.T) {
	tests := []struct {
		name    string
		chunk   Chunk
		wantErr error
	}{
		{"valid", Chunk{Source: "a.txt", Ordinal: 0, Text: "hello"}, nil},
		{"empty text", Chunk{Source: "a.txt", Text: "   "}, ErrEmptyContent},
		{"missing source", Chunk{Text: "hello"}, ErrMissingSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chunk.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("negative ordinal", func(t *testing.T) {
		c := Chunk{Source: "a.txt", Ordinal: -1, Text: "hello"}
		assert.Error(t, c.Validate())
	})
}

func TestChunkHash(t *testing.T) {
	a := Chunk{Source: "a.txt", Ordinal: 0, Text: "same"}
	b := Chunk{Source: "b.txt", Ordinal: 3, Text: "same"}
	c := Chunk{Source: "a.txt", Ordinal: 0, Text: "different"}

	assert.Equal(t, a.Hash(), b.Hash(), "hash depends on text only")
	assert.NotEqual(t, a.Hash(), c.Hash())
	assert.Len(t, a.Hash(), 64)
}

func TestSearchResultValidate(t *testing.T) {
	valid := SearchResult{Source: "a.txt", Text: "hit", Score: 0.8, Rank: 1}
	assert.NoError(t, valid.Validate())

	noText := SearchResult{Source: "a.txt", Rank: 1}
	assert.ErrorIs(t, noText.Validate(), ErrEmptyContent)

	noSource := SearchResult{Text: "hit", Rank: 1}
	assert.ErrorIs(t, noSource.Validate(), ErrMissingSource)

	zeroRank := SearchResult{Source: "a.txt", Text: "hit"}
	assert.ErrorIs(t, zeroRank.Validate(), ErrInvalidLimit)

	nanScore := SearchResult{Source: "a.txt", Text: "hit", Score: math.NaN(), Rank: 1}
	assert.ErrorIs(t, nanScore.Validate(), ErrInvalidScore)
}
