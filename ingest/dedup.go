package ingest

import (
	"context"
	"log/slog"

	"github.com/fwojciec/docsync"
)

// Action is the deduplication decision for a page.
type Action int

// Deduplication decisions.
const (
	ActionInsert Action = iota
	ActionUpdate
	ActionSkip
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionSkip:
		return "skip"
	}
	return "unknown"
}

// DefaultSearchLimit is the number of stored entries examined per lookup.
const DefaultSearchLimit = 20

// Deduplicator decides whether a page must be written to the store.
type Deduplicator struct {
	Store       docsync.Store
	SearchLimit int
	Logger      *slog.Logger
}

// Classify compares doc against the entries stored for its source URL.
// With force set it always returns ActionUpdate. Otherwise it returns
// ActionSkip when the entries stored with the same content hash cover the
// whole page, ActionUpdate when entries exist but differ or leave chunks
// missing, and ActionInsert when none exist. A failed lookup is treated as
// a miss so ingestion keeps moving.
func (d *Deduplicator) Classify(ctx context.Context, doc *docsync.Document, force bool) Action {
	if force {
		return ActionUpdate
	}

	limit := d.SearchLimit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	results, err := d.Store.Search(ctx, doc.SourceURL, limit)
	if err == nil && len(results) >= limit {
		// A page with more chunks than the lookup returned is searched again
		// wide enough to see all of them.
		if count := maxChunkCount(results, doc); count > limit {
			results, err = d.Store.Search(ctx, doc.SourceURL, count+limit)
		}
	}
	if err != nil {
		d.logger().Warn("dedup lookup failed, treating as new",
			"url", doc.SourceURL,
			"err", err,
		)
		return ActionInsert
	}

	found := false
	var same []docsync.Metadata
	for _, r := range results {
		source, ok := r.Metadata.String(docsync.MetaSource)
		if !ok || source != doc.SourceURL {
			continue
		}
		hash, ok := r.Metadata.String(docsync.MetaContentHash)
		if !ok {
			continue
		}
		found = true
		if hash == doc.ContentHash {
			same = append(same, r.Metadata)
		}
	}

	switch {
	case complete(same):
		d.logger().Debug("skipping unchanged document", "url", doc.SourceURL)
		return ActionSkip
	case len(same) > 0:
		d.logger().Info("stored document is missing chunks", "url", doc.SourceURL, "stored", len(same))
		return ActionUpdate
	case found:
		d.logger().Debug("document content changed", "url", doc.SourceURL)
		return ActionUpdate
	}
	return ActionInsert
}

// complete reports whether entries hold the whole page: an unchunked entry,
// or every chunk index 0..n-1 of some chunk count n.
func complete(entries []docsync.Metadata) bool {
	indexes := make(map[int]map[int]struct{})
	for _, m := range entries {
		idx, ok := m.Int(docsync.MetaChunkIndex)
		if !ok {
			return true
		}
		count, ok := m.Int(docsync.MetaChunkCount)
		if !ok || idx < 0 || idx >= count {
			continue
		}
		if indexes[count] == nil {
			indexes[count] = make(map[int]struct{})
		}
		indexes[count][idx] = struct{}{}
		if len(indexes[count]) == count {
			return true
		}
	}
	return false
}

// maxChunkCount returns the largest chunk count among the entries stored
// for doc's source URL.
func maxChunkCount(results []docsync.SearchResult, doc *docsync.Document) int {
	n := 0
	for _, r := range results {
		if source, _ := r.Metadata.String(docsync.MetaSource); source != doc.SourceURL {
			continue
		}
		if count, ok := r.Metadata.Int(docsync.MetaChunkCount); ok && count > n {
			n = count
		}
	}
	return n
}

func (d *Deduplicator) logger() *slog.Logger {
	if d.Logger == nil {
		return discardLogger
	}
	return d.Logger
}

var discardLogger = slog.New(slog.DiscardHandler)
