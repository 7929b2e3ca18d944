package ingest

import (
	"strings"

	"github.com/fwojciec/docsync"
)

// Field names tried, in order, when resolving a page payload.
var (
	urlKeys         = []string{"url", "sourceURL", "sourceUrl", "source_url"}
	contentKeys     = []string{"markdown", "content", "text"}
	htmlKeys        = []string{"html", "rawHtml"}
	titleKeys       = []string{"title", "ogTitle"}
	descriptionKeys = []string{"description", "ogDescription"}
	scrapeIDKeys    = []string{"scrapeId", "scrape_id"}
)

// defaultTitle is used when a page carries no title.
const defaultTitle = "Untitled"

// Normalizer converts raw crawl payloads into canonical page records.
// All knowledge of payload shapes is kept here.
type Normalizer struct {
	// Extractor and Converter, when both set, recover markdown from pages
	// that carry HTML but no markdown or text.
	Extractor docsync.Extractor
	Converter docsync.Converter
}

// Normalize returns the canonical record for page. It returns false when no
// URL can be resolved. A record with blank Content means the page had no
// usable body.
func (n *Normalizer) Normalize(page docsync.Page) (*docsync.PageRecord, bool) {
	url := ResolveURL(page)
	if url == "" {
		return nil, false
	}

	meta := metadata(page)
	rec := &docsync.PageRecord{
		URL:         url,
		Title:       firstString(page, titleKeys...),
		Content:     firstString(page, contentKeys...),
		Description: firstString(page, descriptionKeys...),
	}
	if rec.Title == "" {
		rec.Title = firstString(meta, titleKeys...)
	}
	if rec.Description == "" {
		rec.Description = firstString(meta, descriptionKeys...)
	}

	if !rec.HasContent() {
		if extracted, content, ok := n.fromHTML(firstString(page, htmlKeys...), url); ok {
			rec.Content = content
			if rec.Title == "" {
				rec.Title = extracted.Title
			}
			if rec.Description == "" {
				rec.Description = extracted.Description
			}
		}
	}
	if rec.Title == "" {
		rec.Title = docsync.FirstHeading(rec.Content)
	}
	if rec.Title == "" {
		rec.Title = defaultTitle
	}

	return rec, true
}

// ConvertsHTML reports whether n can recover content from page HTML.
func (n *Normalizer) ConvertsHTML() bool {
	return n != nil && n.Extractor != nil && n.Converter != nil
}

// fromHTML extracts the main content of raw HTML as markdown.
func (n *Normalizer) fromHTML(html, pageURL string) (*docsync.ExtractResult, string, bool) {
	if !n.ConvertsHTML() || strings.TrimSpace(html) == "" {
		return nil, "", false
	}
	extracted, err := n.Extractor.Extract(html)
	if err != nil || extracted == nil || strings.TrimSpace(extracted.ContentHTML) == "" {
		return nil, "", false
	}
	markdown, err := n.Converter.Convert(extracted.ContentHTML, pageURL)
	if err != nil {
		return nil, "", false
	}
	return extracted, markdown, true
}

// ResolveURL returns the page's URL, trying top-level fields before the
// nested metadata object. It returns "" when none is present.
func ResolveURL(page docsync.Page) string {
	if url := firstString(page, urlKeys...); url != "" {
		return url
	}
	return firstString(metadata(page), urlKeys...)
}

// metadata returns the page's nested metadata object, or nil.
func metadata(page docsync.Page) map[string]any {
	switch m := page["metadata"].(type) {
	case map[string]any:
		return m
	case docsync.Page:
		return m
	}
	return nil
}

// firstString returns the first non-blank string value among keys.
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
