package extract

import (
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Common errors
var (
	// ErrBinaryContent is returned when a file claiming a text extension
	// fails the binary-content heuristics.
	ErrBinaryContent = errors.New("binary content")

	// ErrUnsupported is returned when no extractor exists for a file type.
	ErrUnsupported = errors.New("unsupported file type")
)

// Kind is the closed set of extraction variants. Dispatch is a pure mapping
// from file extension to Kind; adding a format means adding a variant, not
// registering dynamic handlers.
type Kind int

const (
	// KindText is the plain-text fallback for any extension that is not
	// explicitly binary and has no specialized extractor.
	KindText Kind = iota
	// KindPDF dispatches to the injected PDF extractor.
	KindPDF
	// KindDOCX dispatches to the injected DOCX extractor.
	KindDOCX
	// KindUnsupported marks known-binary formats that are skipped outright.
	KindUnsupported
)

// String returns the variant name for logging.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPDF:
		return "pdf"
	case KindDOCX:
		return "docx"
	default:
		return "unsupported"
	}
}

// binaryExtensions are formats that never yield text and are skipped
// without error: images, audio/video, archives, executables, fonts,
// office/container formats with their own extractors, and databases.
var binaryExtensions = map[string]bool{
	// Images
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".webp": true, ".tiff": true, ".svgz": true,
	// Audio / video
	".mp3": true, ".wav": true, ".flac": true, ".ogg": true, ".m4a": true,
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".webm": true,
	// Archives
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".7z": true, ".rar": true, ".zst": true,
	// Executables and libraries
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".wasm": true, ".o": true, ".a": true,
	// Fonts
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true, ".eot": true,
	// Office/container formats handled by specialized extractors elsewhere
	".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true, ".doc": true,
	".odt": true, ".ods": true, ".odp": true,
	// Databases
	".db": true, ".sqlite": true, ".sqlite3": true, ".mdb": true,
}

// KindFor maps a file path to its extraction variant. The mapping is by
// extension, case-insensitive, and depends only on the path.
func KindFor(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	}
	if binaryExtensions[ext] {
		return KindUnsupported
	}
	return KindText
}

// Extractor converts a file into plain text. Implementations must confine
// failures to their error return; an empty string with a nil error means
// the file genuinely has no content.
type Extractor interface {
	Extract(path string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(path string) (string, error)

// Extract implements Extractor.
func (f ExtractorFunc) Extract(path string) (string, error) {
	return f(path)
}

// Registry resolves a file path to its extraction capability. PDF and DOCX
// extraction are external collaborators injected at construction; when they
// are absent those files resolve to nothing and are skipped.
type Registry struct {
	logger *zap.Logger
	text   Extractor
	pdf    Extractor
	docx   Extractor
}

// Option configures a Registry.
type Option func(*Registry)

// WithPDF injects the PDF extraction collaborator.
func WithPDF(e Extractor) Option {
	return func(r *Registry) { r.pdf = e }
}

// WithDOCX injects the DOCX extraction collaborator.
func WithDOCX(e Extractor) Option {
	return func(r *Registry) { r.docx = e }
}

// NewRegistry creates a Registry with the built-in plain-text extractor.
func NewRegistry(logger *zap.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		logger: logger,
		text:   &plainText{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the extractor for path, or nil when the file should be
// skipped (known-binary format, or a specialized format whose collaborator
// was not injected).
func (r *Registry) Resolve(path string) Extractor {
	switch KindFor(path) {
	case KindText:
		return r.text
	case KindPDF:
		return r.pdf
	case KindDOCX:
		return r.docx
	default:
		return nil
	}
}

// Extract resolves and runs the extractor for path. Extraction failures are
// caught here and converted to empty text with a logged warning, so they
// never propagate past the registry boundary. The boolean reports whether
// an extractor existed at all.
func (r *Registry) Extract(path string) (string, bool) {
	ex := r.Resolve(path)
	if ex == nil {
		return "", false
	}

	text, err := ex.Extract(path)
	if err != nil {
		r.logger.Warn("extraction failed, treating as empty",
			zap.String("path", path),
			zap.String("kind", KindFor(path).String()),
			zap.Error(err),
		)
		return "", true
	}
	return text, true
}
