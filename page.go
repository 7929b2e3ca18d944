package docsync

import (
	"context"
	"strings"
)

// Page is a raw page payload as returned by a crawl service. Its shape is
// not guaranteed: the URL may live under "url", "sourceURL", or a nested
// "metadata" object, and content may be "markdown", "content", or "text".
// Only the normalizer in package ingest inspects it.
type Page map[string]any

// PageRecord is the canonical form of a crawled page.
type PageRecord struct {
	URL         string
	Title       string
	Content     string // Markdown
	Description string
}

// HasContent reports whether the record carries a non-blank body.
func (r *PageRecord) HasContent() bool {
	return strings.TrimSpace(r.Content) != ""
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	Extract(html string) (*ExtractResult, error)
}

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// Description is the page summary from meta tags, if any.
	Description string

	// ContentHTML is the main content as clean HTML.
	ContentHTML string
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown. Relative links are
	// resolved against pageURL when it is not empty.
	Convert(html, pageURL string) (string, error)
}

// PageMirror keeps a local markdown copy of ingested pages. Saved pages
// become visible only after Commit; Abort discards them.
type PageMirror interface {
	Save(ctx context.Context, rec *PageRecord) error
	Commit() error
	Abort() error
}
