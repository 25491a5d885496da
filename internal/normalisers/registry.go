package normalisers

import (
	"context"
	"fmt"
	"iter"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
	"github.com/custodia-labs/houseplan-cli/internal/normalisers/docx"
	"github.com/custodia-labs/houseplan-cli/internal/normalisers/html"
	"github.com/custodia-labs/houseplan-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/houseplan-cli/internal/normalisers/pdf"
	"github.com/custodia-labs/houseplan-cli/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry dispatches documents to the highest-priority extractor that
// supports their MIME type.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.TextExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(html.New())
	r.Register(markdown.New())
	r.Register(plaintext.New())
	return r
}

// Register adds an extractor to the registry.
func (r *Registry) Register(extractor driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.extractors = append(r.extractors, extractor)
	slices.SortStableFunc(r.extractors, func(a, b driven.TextExtractor) int {
		return b.Priority() - a.Priority()
	})
}

// Pages extracts the document with the best matching extractor.
func (r *Registry) Pages(ctx context.Context, doc domain.PlanDocument) (iter.Seq[string], error) {
	mimeType := DetectMIMEType(doc)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.extractors {
		if slices.Contains(e.SupportedMIMETypes(), mimeType) {
			return e.Pages(ctx, doc), nil
		}
	}
	return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedType, doc.Filename, mimeType)
}

// SupportedMIMETypes returns all MIME types that can be extracted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var types []string
	for _, e := range r.extractors {
		for _, t := range e.SupportedMIMETypes() {
			if !slices.Contains(types, t) {
				types = append(types, t)
			}
		}
	}
	return types
}

// knownExtensions covers types missing from minimal mime.types tables.
var knownExtensions = map[string]string{
	".pdf":  "application/pdf",
	".docx": docx.MIMEType,
	".txt":  "text/plain",
	".md":   "text/markdown",
	".htm":  "text/html",
	".html": "text/html",
}

// DetectMIMEType returns the document's declared content type without
// parameters, falling back to the filename extension and then to content
// sniffing.
func DetectMIMEType(doc domain.PlanDocument) string {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	for _, candidate := range []string{
		doc.ContentType,
		knownExtensions[ext],
		mime.TypeByExtension(ext),
	} {
		if candidate == "" || candidate == "application/octet-stream" {
			continue
		}
		if mediaType, _, err := mime.ParseMediaType(candidate); err == nil {
			return mediaType
		}
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(doc.Data))
	return sniffed
}
