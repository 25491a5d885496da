// Package pdf extracts page text from PDF plan documents using the
// poppler command line tools.
package pdf

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
	"github.com/custodia-labs/houseplan-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor reads PDF documents one page at a time.
type Extractor struct {
	runner CommandRunner
}

// New creates a PDF extractor that shells out to pdftotext and pdfinfo.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Pages yields the text of each page. Every iteration writes the document
// to a fresh temporary file, so the sequence can be ranged over repeatedly.
// A page that pdftotext cannot read yields "". When the page count is
// unknown the whole document is yielded as a single page.
func (e *Extractor) Pages(ctx context.Context, doc domain.PlanDocument) iter.Seq[string] {
	return func(yield func(string) bool) {
		path, err := writeTemp(doc.Data)
		if err != nil {
			logger.Warn("pdf: %s: %v", doc.Filename, err)
			return
		}
		defer os.Remove(path)

		n := e.pageCount(ctx, path)
		if n == 0 {
			yield(e.text(ctx, doc.Filename, path))
			return
		}

		logger.Debug("pdf: %s has %d pages", doc.Filename, n)
		for page := 1; page <= n; page++ {
			if ctx.Err() != nil {
				return
			}
			p := strconv.Itoa(page)
			if !yield(e.text(ctx, doc.Filename, path, "-f", p, "-l", p)) {
				return
			}
		}
	}
}

// text runs pdftotext with extra page-range args and returns "" on failure.
func (e *Extractor) text(ctx context.Context, name, path string, pageArgs ...string) string {
	args := slices.Concat(pageArgs, []string{"-layout", path, "-"})
	out, err := e.runner.Run(ctx, "pdftotext", args...)
	if err != nil {
		logger.Warn("pdf: %s: pdftotext failed %v: %v", name, pageArgs, err)
		return ""
	}
	return strings.TrimRight(string(out), "\f")
}

// pageCount asks pdfinfo for the page count, returning 0 if unknown.
func (e *Extractor) pageCount(ctx context.Context, path string) int {
	out, err := e.runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		logger.Debug("pdf: pdfinfo failed: %v", err)
		return 0
	}
	return parsePageCount(out)
}

func parsePageCount(info []byte) int {
	scanner := bufio.NewScanner(bytes.NewReader(info))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || strings.TrimSpace(key) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	return 0
}

func writeTemp(data []byte) (string, error) {
	f, err := os.CreateTemp("", "houseplan-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions explains how to install the poppler tools.
func InstallInstructions() string {
	return `PDF ingestion requires pdftotext and pdfinfo (poppler).

Install with:
  macOS:          brew install poppler
  Debian/Ubuntu:  apt install poppler-utils
  Fedora:         dnf install poppler-utils`
}
