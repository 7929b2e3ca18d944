// Package postgres provides a PostgreSQL-backed docsync.Store for
// deployments sharing one store between several hosts.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docsync"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time interface verification.
var (
	_ docsync.Store      = (*Store)(nil)
	_ docsync.Summarizer = (*Store)(nil)
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	source_url TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	domain TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL,
	chunk_index INT,
	chunk_count INT,
	meta_data JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_source_url ON documents(source_url);
`

// Store implements docsync.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to connString and creates the schema if needed.
func Open(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Search returns documents stored for the source URL query, followed by
// documents whose title or content contains query.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]docsync.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, docsync.Errorf(docsync.EINVALID, "search query required")
	}

	sql := `SELECT content, meta_data FROM documents
		WHERE source_url = $1 OR title ILIKE $2 OR content ILIKE $2
		ORDER BY source_url = $1 DESC, source_url, chunk_index`
	args := []any{query, likePattern(query)}
	if limit > 0 {
		sql += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []docsync.SearchResult
	for rows.Next() {
		var r docsync.SearchResult
		var meta []byte
		if err := rows.Scan(&r.Content, &meta); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &r.Metadata); err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// Upsert inserts or replaces docs in one transaction, deleting rows for the
// same source URL whose content hash differs.
func (s *Store) Upsert(ctx context.Context, docs []*docsync.Document) error {
	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, doc := range docs {
		meta, err := json.Marshal(doc.Metadata())
		if err != nil {
			return err
		}

		var chunkIndex, chunkCount *int
		if doc.Chunk != nil {
			chunkIndex, chunkCount = &doc.Chunk.Index, &doc.Chunk.Count
		}

		batch.Queue(`DELETE FROM documents WHERE source_url = $1 AND content_hash <> $2`,
			doc.SourceURL, doc.ContentHash)
		batch.Queue(`
			INSERT INTO documents (id, source_url, title, content, domain, description, content_hash, chunk_index, chunk_count, meta_data, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				source_url = EXCLUDED.source_url,
				title = EXCLUDED.title,
				content = EXCLUDED.content,
				domain = EXCLUDED.domain,
				description = EXCLUDED.description,
				content_hash = EXCLUDED.content_hash,
				chunk_index = EXCLUDED.chunk_index,
				chunk_count = EXCLUDED.chunk_count,
				meta_data = EXCLUDED.meta_data,
				updated_at = EXCLUDED.updated_at`,
			doc.ID, doc.SourceURL, doc.Title, doc.Content, doc.Domain, doc.Description, doc.ContentHash,
			chunkIndex, chunkCount, string(meta), doc.UpdatedAt.UTC())
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert documents: %w", err)
	}
	return tx.Commit(ctx)
}

// Summarize reports document and source counts and the newest update time.
func (s *Store) Summarize(ctx context.Context) (*docsync.StoreSummary, error) {
	var summary docsync.StoreSummary
	var lastUpdated *time.Time

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT source_url), MAX(updated_at) FROM documents
	`).Scan(&summary.Documents, &summary.Sources, &lastUpdated)
	if err != nil {
		return nil, err
	}
	if lastUpdated != nil {
		summary.LastUpdated = lastUpdated.UTC()
	}

	return &summary, nil
}

// likePattern returns an ILIKE pattern matching s anywhere, with LIKE
// wildcards in s escaped by the default backslash escape.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
