package mock

import "github.com/fwojciec/docsync"

var _ docsync.Converter = (*Converter)(nil)

// Converter is a mock implementation of docsync.Converter.
type Converter struct {
	ConvertFn func(html, pageURL string) (string, error)
}

func (c *Converter) Convert(html, pageURL string) (string, error) {
	return c.ConvertFn(html, pageURL)
}
