package ingest_test

import (
	"context"
	"sort"
	"sync"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/mock"
)

// memStore is an in-memory docsync.Store keyed by document ID.
type memStore struct {
	mu      sync.Mutex
	docs    map[string]*docsync.Document
	upserts int
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]*docsync.Document)}
}

func (s *memStore) Search(_ context.Context, query string, limit int) ([]docsync.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.docs))
	for id, doc := range s.docs {
		if doc.SourceURL == query {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var results []docsync.SearchResult
	for _, id := range ids {
		if len(results) == limit {
			break
		}
		doc := s.docs[id]
		results = append(results, docsync.SearchResult{Content: doc.Content, Metadata: doc.Metadata()})
	}
	return results, nil
}

func (s *memStore) Upsert(_ context.Context, docs []*docsync.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upserts++
	for _, doc := range docs {
		for id, existing := range s.docs {
			if existing.SourceURL == doc.SourceURL && existing.ContentHash != doc.ContentHash {
				delete(s.docs, id)
			}
		}
		d := *doc
		s.docs[d.ID] = &d
	}
	return nil
}

// bySource returns the stored documents for sourceURL.
func (s *memStore) bySource(sourceURL string) []*docsync.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*docsync.Document
	for _, doc := range s.docs {
		if doc.SourceURL == sourceURL {
			out = append(out, doc)
		}
	}
	return out
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// scriptedCrawl returns a CrawlService whose job reports the given snapshots
// in order, repeating the last one. Every StartCrawl begins a fresh script.
func scriptedCrawl(snapshots ...*docsync.CrawlJob) *mock.CrawlService {
	var mu sync.Mutex
	next := 0
	return &mock.CrawlService{
		StartCrawlFn: func(_ context.Context, _ string, _ docsync.CrawlOptions) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			next = 0
			return "job-1", nil
		},
		CheckStatusFn: func(_ context.Context, jobID string) (*docsync.CrawlJob, error) {
			mu.Lock()
			defer mu.Unlock()
			snap := snapshots[min(next, len(snapshots)-1)]
			next++
			job := *snap
			job.ID = jobID
			return &job, nil
		},
	}
}

// completed returns a finished job snapshot holding pages.
func completed(pages ...docsync.Page) *docsync.CrawlJob {
	return &docsync.CrawlJob{Status: docsync.JobCompleted, Completed: len(pages), Total: len(pages), Pages: pages}
}

// running returns an in-progress job snapshot holding pages.
func running(pages ...docsync.Page) *docsync.CrawlJob {
	return &docsync.CrawlJob{Status: docsync.JobRunning, Completed: len(pages), Total: len(pages) + 1, Pages: pages}
}

// page builds a Firecrawl-shaped page payload.
func page(url, markdown string) docsync.Page {
	p := docsync.Page{
		"metadata": map[string]any{
			"sourceURL": url,
			"title":     "Title of " + url,
		},
	}
	if markdown != "" {
		p["markdown"] = markdown
	}
	return p
}
