package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsync"
)

// Ensure LoggingStore implements docsync.Store and docsync.Summarizer.
var (
	_ docsync.Store      = (*LoggingStore)(nil)
	_ docsync.Summarizer = (*LoggingStore)(nil)
)

// LoggingStore wraps a Store with logging.
type LoggingStore struct {
	next   docsync.Store
	logger *slog.Logger
}

// NewLoggingStore creates a new LoggingStore.
func NewLoggingStore(next docsync.Store, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger}
}

// Search delegates to the wrapped store and logs at debug level.
func (s *LoggingStore) Search(ctx context.Context, query string, limit int) (results []docsync.SearchResult, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("store search",
			"query", query,
			"limit", limit,
			"results", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, limit)
}

// Upsert delegates to the wrapped store and logs the operation.
func (s *LoggingStore) Upsert(ctx context.Context, docs []*docsync.Document) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("store upsert",
			"documents", len(docs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Upsert(ctx, docs)
}

// Summarize delegates to the wrapped store when it is a docsync.Summarizer.
func (s *LoggingStore) Summarize(ctx context.Context) (summary *docsync.StoreSummary, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("store summary", "duration", time.Since(begin), "err", err)
	}(time.Now())
	sum, ok := s.next.(docsync.Summarizer)
	if !ok {
		return nil, docsync.Errorf(docsync.EINVALID, "store does not support summaries")
	}
	return sum.Summarize(ctx)
}
