// Package extract maps corpus files to text extraction capabilities.
//
// Dispatch is by file extension, case-insensitive, over a closed variant
// set: plain text (the fallback), PDF, DOCX, and a fixed list of binary
// formats that are skipped outright. PDF and DOCX extraction are external
// collaborators injected into the Registry; the plain-text extractor is
// built in and guards against binary content disguised with a text
// extension (NUL bytes in the leading window, or a >=10% replacement-rune
// ratio in a full decode).
//
// Extraction failures never escape the registry: they are logged and
// converted to empty text, which the ingestion pipeline treats as "no
// content" rather than a fatal error.
package extract
