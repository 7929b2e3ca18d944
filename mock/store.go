package mock

import (
	"context"

	"github.com/fwojciec/docsync"
)

// Compile-time interface verification.
var (
	_ docsync.Store      = (*Store)(nil)
	_ docsync.Summarizer = (*Store)(nil)
)

// Store is a mock implementation of docsync.Store and docsync.Summarizer.
type Store struct {
	SearchFn    func(ctx context.Context, query string, limit int) ([]docsync.SearchResult, error)
	UpsertFn    func(ctx context.Context, docs []*docsync.Document) error
	SummarizeFn func(ctx context.Context) (*docsync.StoreSummary, error)
}

func (s *Store) Search(ctx context.Context, query string, limit int) ([]docsync.SearchResult, error) {
	return s.SearchFn(ctx, query, limit)
}

func (s *Store) Upsert(ctx context.Context, docs []*docsync.Document) error {
	return s.UpsertFn(ctx, docs)
}

func (s *Store) Summarize(ctx context.Context) (*docsync.StoreSummary, error) {
	return s.SummarizeFn(ctx)
}
