package mock

import "github.com/fwojciec/docsync"

var _ docsync.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docsync.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*docsync.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docsync.ExtractResult, error) {
	return e.ExtractFn(html)
}
