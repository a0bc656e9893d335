package types

import "math"

// SearchResult is one ranked hit from a similarity search over the vector
// index, consumed by the retrieval layer.
type SearchResult struct {
	// Source is the originating file path of the matched chunk.
	Source string

	// Text is the matched chunk content.
	Text string

	// Score is the cosine similarity against the query vector, in [0, 1]
	// for normalized vectors.
	Score float64

	// Rank is the 1-based position in the result list.
	Rank int
}

// Validate checks that the search result is well-formed.
func (r *SearchResult) Validate() error {
	if r.Text == "" {
		return ErrEmptyContent
	}
	if r.Source == "" {
		return ErrMissingSource
	}
	if r.Rank < 1 {
		return ErrInvalidLimit
	}
	if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) {
		return ErrInvalidScore
	}
	return nil
}
