package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// TextExtractor pulls plain text out of an uploaded document.
// Each extractor handles specific MIME types (e.g., PDF, plain text).
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Pages returns the text of each page in order. The sequence is finite
	// and may be ranged over more than once. A page whose text cannot be
	// extracted yields "" instead of stopping the sequence.
	Pages(ctx context.Context, doc domain.PlanDocument) iter.Seq[string]
}

// ExtractorRegistry selects the appropriate extractor for a document.
type ExtractorRegistry interface {
	// Pages extracts the document with the best matching extractor.
	// Returns domain.ErrUnsupportedType if no extractor handles it.
	Pages(ctx context.Context, doc domain.PlanDocument) (iter.Seq[string], error)

	// Register adds an extractor to the registry.
	Register(extractor TextExtractor)

	// SupportedMIMETypes returns all MIME types that can be extracted.
	SupportedMIMETypes() []string
}

// Segmenter splits extracted text into bounded segments for embedding.
type Segmenter interface {
	// Name returns the segmenter name for logging.
	Name() string

	// Split returns the segments in order. Joining them reproduces text.
	Split(text string) []string
}
