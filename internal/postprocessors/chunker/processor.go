// Package chunker provides a fixed-size text segmenter.
package chunker

import (
	"unicode/utf8"

	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driven"
)

// DefaultMaxChars is the default number of characters per segment.
const DefaultMaxChars = 6000

// Ensure Processor implements the interface.
var _ driven.Segmenter = (*Processor)(nil)

// Processor splits text into consecutive segments of at most maxChars
// characters. Segments do not overlap, so joining them restores the input.
// Characters are Unicode code points, never split mid-rune.
type Processor struct {
	maxChars int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxChars sets the segment size in characters.
func WithMaxChars(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxChars = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxChars: DefaultMaxChars,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxChars returns the configured segment size.
func (p *Processor) MaxChars() int {
	return p.maxChars
}

// Split returns ceil(L/maxChars) segments for a text of L characters.
// Empty text produces no segments.
func (p *Processor) Split(text string) []string {
	if text == "" {
		return nil
	}

	total := utf8.RuneCountInString(text)
	segments := make([]string, 0, (total+p.maxChars-1)/p.maxChars)

	start := 0
	count := 0
	for i := range text {
		if count == p.maxChars {
			segments = append(segments, text[start:i])
			start = i
			count = 0
		}
		count++
	}
	segments = append(segments, text[start:])

	return segments
}
