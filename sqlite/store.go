package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/fwojciec/docsync"
)

// Compile-time interface verification.
var (
	_ docsync.Store      = (*Store)(nil)
	_ docsync.Summarizer = (*Store)(nil)
)

// Store implements docsync.Store using SQLite.
type Store struct {
	db *DB
}

// NewStore creates a new Store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Search returns documents stored for the source URL query, followed by
// documents whose title or content contains query.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]docsync.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, docsync.Errorf(docsync.EINVALID, "search query required")
	}

	var q strings.Builder
	pattern := likePattern(query)
	args := []any{query, pattern, pattern, query}

	q.WriteString(`SELECT content, meta_data FROM documents
		WHERE source_url = ? OR title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\'
		ORDER BY source_url = ? DESC, source_url, chunk_index`)
	appendLimit(&q, &args, limit)

	rows, err := s.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []docsync.SearchResult
	for rows.Next() {
		var r docsync.SearchResult
		var meta string
		if err := rows.Scan(&r.Content, &meta); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(meta), &r.Metadata); err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// Upsert inserts or replaces docs in one transaction. Rows for the same
// source URL with a different content hash are deleted first, so a page
// that shrinks to fewer chunks leaves no stale chunks behind.
func (s *Store) Upsert(ctx context.Context, docs []*docsync.Document) error {
	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, doc := range docs {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM documents WHERE source_url = ? AND content_hash <> ?",
			doc.SourceURL, doc.ContentHash,
		); err != nil {
			return err
		}

		meta, err := json.Marshal(doc.Metadata())
		if err != nil {
			return err
		}

		var chunkIndex, chunkCount sql.NullInt64
		if doc.Chunk != nil {
			chunkIndex = sql.NullInt64{Int64: int64(doc.Chunk.Index), Valid: true}
			chunkCount = sql.NullInt64{Int64: int64(doc.Chunk.Count), Valid: true}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, source_url, title, content, domain, description, content_hash, chunk_index, chunk_count, meta_data, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				source_url = excluded.source_url,
				title = excluded.title,
				content = excluded.content,
				domain = excluded.domain,
				description = excluded.description,
				content_hash = excluded.content_hash,
				chunk_index = excluded.chunk_index,
				chunk_count = excluded.chunk_count,
				meta_data = excluded.meta_data,
				updated_at = excluded.updated_at
		`, doc.ID, doc.SourceURL, doc.Title, doc.Content, doc.Domain, doc.Description, doc.ContentHash,
			chunkIndex, chunkCount, string(meta), doc.UpdatedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Summarize reports document and source counts and the newest update time.
func (s *Store) Summarize(ctx context.Context) (*docsync.StoreSummary, error) {
	var summary docsync.StoreSummary
	var lastUpdated sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT source_url), MAX(updated_at) FROM documents
	`).Scan(&summary.Documents, &summary.Sources, &lastUpdated)
	if err != nil {
		return nil, err
	}

	if lastUpdated.Valid {
		summary.LastUpdated, err = parseRFC3339(lastUpdated.String, "updated_at")
		if err != nil {
			return nil, err
		}
	}

	return &summary, nil
}
