package mock

import (
	"context"

	"github.com/fwojciec/docsync"
)

var _ docsync.CrawlService = (*CrawlService)(nil)

// CrawlService is a mock implementation of docsync.CrawlService.
type CrawlService struct {
	StartCrawlFn  func(ctx context.Context, url string, opts docsync.CrawlOptions) (string, error)
	CheckStatusFn func(ctx context.Context, jobID string) (*docsync.CrawlJob, error)
}

func (s *CrawlService) StartCrawl(ctx context.Context, url string, opts docsync.CrawlOptions) (string, error) {
	return s.StartCrawlFn(ctx, url, opts)
}

func (s *CrawlService) CheckStatus(ctx context.Context, jobID string) (*docsync.CrawlJob, error) {
	return s.CheckStatusFn(ctx, jobID)
}
