// Package chunker divides extracted document text into bounded chunks for
// embedding and search.
//
// Two strategies are provided. Sentence packs whole sentences greedily into
// chunks of roughly a target character size, treating newlines as sentence
// boundaries. Window cuts fixed-size rune windows with a configurable
// overlap. Both are deterministic: splitting identical text with identical
// configuration always yields byte-identical chunk sequences, which the
// pipeline's idempotence guarantee depends on.
//
// # Basic Usage
//
//	c := chunker.NewSentence(1000)
//	for i, text := range c.Split(document) {
//	    fmt.Printf("chunk %d: %d chars\n", i, len(text))
//	}
//
// Cut tags each chunk with its source path and ordinal:
//
//	chunks := chunker.Cut(c, "docs/guide.txt", document)
package chunker
