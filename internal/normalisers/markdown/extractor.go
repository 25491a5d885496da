// Package markdown extracts Markdown plan notes as plain text.
package markdown

import (
	"context"
	"iter"
	"regexp"
	"strings"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Pages yields the document as one page with formatting removed. A
// horizontal rule starts a new page.
func (e *Extractor) Pages(_ context.Context, doc domain.PlanDocument) iter.Seq[string] {
	return func(yield func(string) bool) {
		if len(doc.Data) == 0 {
			return
		}
		for _, page := range pageBreak.Split(string(doc.Data), -1) {
			if !yield(Strip(page)) {
				return
			}
		}
	}
}

var (
	pageBreak    = regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|\*{3,}|_{3,})[ \t]*$`)
	codeFence    = regexp.MustCompile("(?m)^```.*$")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*)([^*\n]+?)(\*\*|__|\*)`)
	blockquote   = regexp.MustCompile(`(?m)^>[ \t]?`)
	listMarkers  = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+\.)[ \t]+`)
	tablePipes   = regexp.MustCompile(`(?m)^\|(.*)\|[ \t]*$`)
	tableRule    = regexp.MustCompile(`(?m)^[ \t|:]*-[ \t|:-]*$`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// Strip removes Markdown syntax while keeping code, image alt text and
// table cells, which often carry room names and dimensions.
func Strip(content string) string {
	content = codeFence.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "$1")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = tableRule.ReplaceAllString(content, "")
	content = tablePipes.ReplaceAllStringFunc(content, func(row string) string {
		cells := strings.Split(strings.Trim(strings.TrimSpace(row), "|"), "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		return strings.Join(cells, " ")
	})
	content = multiNewline.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
