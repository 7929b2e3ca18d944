// Package slog provides logging decorators for docsync services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsync"
)

// Ensure LoggingCrawlService implements docsync.CrawlService.
var _ docsync.CrawlService = (*LoggingCrawlService)(nil)

// LoggingCrawlService wraps a CrawlService with logging.
type LoggingCrawlService struct {
	next   docsync.CrawlService
	logger *slog.Logger
}

// NewLoggingCrawlService creates a new LoggingCrawlService.
func NewLoggingCrawlService(next docsync.CrawlService, logger *slog.Logger) *LoggingCrawlService {
	return &LoggingCrawlService{next: next, logger: logger}
}

// StartCrawl delegates to the wrapped service and logs the operation.
func (s *LoggingCrawlService) StartCrawl(ctx context.Context, url string, opts docsync.CrawlOptions) (jobID string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("start crawl",
			"url", url,
			"job", jobID,
			"limit", opts.Limit,
			"max_depth", opts.MaxDepth,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.StartCrawl(ctx, url, opts)
}

// CheckStatus delegates to the wrapped service and logs at debug level,
// since it runs on every poll.
func (s *LoggingCrawlService) CheckStatus(ctx context.Context, jobID string) (job *docsync.CrawlJob, err error) {
	defer func(begin time.Time) {
		attrs := []any{"job", jobID, "duration", time.Since(begin), "err", err}
		if job != nil {
			attrs = append(attrs, "status", job.Status, "pages", len(job.Pages))
		}
		s.logger.Debug("check crawl status", attrs...)
	}(time.Now())
	return s.next.CheckStatus(ctx, jobID)
}
