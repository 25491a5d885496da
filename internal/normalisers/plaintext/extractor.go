// Package plaintext extracts text documents as a single page.
package plaintext

import (
	"context"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Pages yields the whole document as one page. Invalid UTF-8 sequences are
// replaced so that downstream segmenting stays rune-safe. A form feed
// starts a new page.
func (e *Extractor) Pages(_ context.Context, doc domain.PlanDocument) iter.Seq[string] {
	return func(yield func(string) bool) {
		if len(doc.Data) == 0 {
			return
		}
		text := string(doc.Data)
		if !utf8.ValidString(text) {
			text = strings.ToValidUTF8(text, "�")
		}
		for page := range strings.SplitSeq(text, "\f") {
			if !yield(page) {
				return
			}
		}
	}
}
