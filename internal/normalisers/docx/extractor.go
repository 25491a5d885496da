// Package docx extracts page text from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"iter"
	"strings"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
	"github.com/custodia-labs/houseplan-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// MIMEType is the content type of Word documents.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Extractor handles DOCX documents. Pages are delimited by explicit
// page breaks since DOCX carries no layout.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Pages yields the text between explicit page breaks. A document that is
// not a readable DOCX archive yields nothing.
func (e *Extractor) Pages(_ context.Context, doc domain.PlanDocument) iter.Seq[string] {
	return func(yield func(string) bool) {
		content, err := readDocumentXML(doc.Data)
		if err != nil {
			logger.Warn("docx: %s: %v", doc.Filename, err)
			return
		}
		for _, page := range splitPages(content) {
			if !yield(page) {
				return
			}
		}
	}
}

// readDocumentXML returns word/document.xml from the archive.
func readDocumentXML(data []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text   []textElement `xml:"t"`
	Breaks []breakElement `xml:"br"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

type breakElement struct {
	Type string `xml:"type,attr"`
}

func (r run) pageBreak() bool {
	for _, br := range r.Breaks {
		if br.Type == "page" {
			return true
		}
	}
	return false
}

// splitPages extracts paragraph text, starting a new page after every run
// that carries a page break.
func splitPages(content []byte) []string {
	if len(content) == 0 {
		return nil
	}

	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil
	}

	var pages []string
	var page strings.Builder
	startOfPage := true
	for _, para := range doc.Body.Paragraphs {
		if !startOfPage {
			page.WriteString("\n")
		}
		startOfPage = false
		for _, r := range para.Runs {
			for _, text := range r.Text {
				page.WriteString(text.Content)
			}
			if r.pageBreak() {
				pages = append(pages, strings.TrimSpace(page.String()))
				page.Reset()
				startOfPage = true
			}
		}
	}
	pages = append(pages, strings.TrimSpace(page.String()))

	return pages
}
