package docsync

import (
	"context"
	"time"
)

// Document is the unit persisted to the store. When a page's content exceeds
// the store's size limit it is split into several documents sharing the same
// SourceURL and ContentHash, each carrying its Chunk position.
type Document struct {
	ID          string    `json:"id"`
	SourceURL   string    `json:"sourceUrl"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Domain      string    `json:"domain"`
	Description string    `json:"description"`
	ContentHash string    `json:"contentHash"` // hash of the whole page, not the chunk
	UpdatedAt   time.Time `json:"updatedAt"`

	// Chunk is nil for documents that hold a whole page.
	Chunk *ChunkPosition `json:"chunk,omitempty"`
}

// ChunkPosition locates a chunk within its page.
type ChunkPosition struct {
	Index int `json:"index"`
	Count int `json:"count"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.ID == "" {
		return Errorf(EINVALID, "document ID required")
	}
	if d.SourceURL == "" {
		return Errorf(EINVALID, "document source URL required")
	}
	if d.ContentHash == "" {
		return Errorf(EINVALID, "document content hash required")
	}
	if d.Chunk != nil && (d.Chunk.Index < 0 || d.Chunk.Index >= d.Chunk.Count) {
		return Errorf(EINVALID, "chunk index %d out of range [0,%d)", d.Chunk.Index, d.Chunk.Count)
	}
	return nil
}

// IsLastChunk reports whether d completes its page: either it is not
// chunked or it is the final chunk.
func (d *Document) IsLastChunk() bool {
	return d.Chunk == nil || d.Chunk.Index == d.Chunk.Count-1
}

// Metadata keys stored alongside each document.
const (
	MetaSource      = "source"
	MetaTitle       = "title"
	MetaDomain      = "domain"
	MetaDescription = "description"
	MetaContentHash = "content_hash"
	MetaUpdatedAt   = "updated_at"
	MetaChunkIndex  = "chunk_index"
	MetaChunkCount  = "chunk_count"
)

// Metadata is the free-form metadata a store keeps next to document content.
type Metadata map[string]any

// String returns the value stored under key if it is a non-empty string.
func (m Metadata) String(key string) (string, bool) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Int returns the integer stored under key. Stores that round-trip
// metadata through JSON hand numbers back as float64.
func (m Metadata) Int(key string) (int, bool) {
	switch n := m[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Metadata returns the metadata persisted with the document.
// Chunk keys are present only for chunked documents.
func (d *Document) Metadata() Metadata {
	m := Metadata{
		MetaSource:      d.SourceURL,
		MetaTitle:       d.Title,
		MetaDomain:      d.Domain,
		MetaDescription: d.Description,
		MetaContentHash: d.ContentHash,
		MetaUpdatedAt:   d.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if d.Chunk != nil {
		m[MetaChunkIndex] = d.Chunk.Index
		m[MetaChunkCount] = d.Chunk.Count
	}
	return m
}

// SearchResult is a stored document returned by a store lookup.
type SearchResult struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"meta_data"`
}

// Store is a searchable content store.
type Store interface {
	// Search returns up to limit stored documents relevant to query.
	// A source URL used as query matches documents stored for it.
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)

	// Upsert inserts or replaces the documents. Previously stored documents
	// for the same source URL with a different content hash are removed.
	Upsert(ctx context.Context, docs []*Document) error
}

// StoreSummary describes what a store holds.
type StoreSummary struct {
	Documents int
	Sources   int

	// LastUpdated is the newest document timestamp, zero for an empty store.
	LastUpdated time.Time
}

// Summarizer is implemented by stores that can describe their contents.
type Summarizer interface {
	Summarize(ctx context.Context) (*StoreSummary, error)
}
