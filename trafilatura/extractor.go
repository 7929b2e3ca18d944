// Package trafilatura extracts the main content of raw page HTML, used when
// the crawl service returns a page without a markdown body.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docsync"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements docsync.Extractor at compile time.
var _ docsync.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura.
type Extractor struct {
	opts trafilatura.Options
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithoutFallback disables the readability and dom-distiller fallback
// extractors trafilatura tries when its own result looks too short.
func WithoutFallback() Option {
	return func(e *Extractor) {
		e.opts.EnableFallback = false
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
			IncludeLinks:    true,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the page's main content as HTML along with its title and
// meta description.
func (e *Extractor) Extract(rawHTML string) (*docsync.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docsync.Errorf(docsync.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, err
	}

	out := &docsync.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		Description: strings.TrimSpace(result.Metadata.Description),
	}
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		out.ContentHTML = buf.String()
	}

	return out, nil
}
