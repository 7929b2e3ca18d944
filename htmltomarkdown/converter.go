// Package htmltomarkdown converts extracted page HTML to the Markdown stored
// for pages the crawl service returned without a markdown body.
package htmltomarkdown

import (
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/docsync"
)

// Ensure Converter implements docsync.Converter at compile time.
var _ docsync.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a Converter with CommonMark, table, and
// strikethrough support.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
			strikethrough.NewStrikethroughPlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML into Markdown, making relative links and image
// sources absolute against the scheme and host of pageURL.
func (c *Converter) Convert(html, pageURL string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", docsync.Errorf(docsync.EINVALID, "empty HTML input")
	}

	var opts []converter.ConvertOptionFunc
	if domain := origin(pageURL); domain != "" {
		opts = append(opts, converter.WithDomain(domain))
	}

	md, err := c.conv.ConvertString(html, opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}

// origin returns "scheme://host" of rawURL, or "" when it is not absolute.
func origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
