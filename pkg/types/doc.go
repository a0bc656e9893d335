// Package types provides shared type definitions for the corpusidx pipeline.
//
// This package defines the domain types that cross component boundaries:
// chunks produced by the chunker and consumed by the embedder and vector
// store, and search results returned to the retrieval layer.
//
// Chunk is the unit of embedding and retrieval:
//
//	chunk := types.Chunk{
//	    Source:  "docs/guide.txt",
//	    Ordinal: 0,
//	    Text:    "Sentence one. Sentence two.",
//	}
//
// SearchResult is one ranked similarity hit:
//
//	result := types.SearchResult{
//	    Source: "docs/guide.txt",
//	    Text:   "Sentence one. Sentence two.",
//	    Score:  0.87,
//	    Rank:   1,
//	}
package types
