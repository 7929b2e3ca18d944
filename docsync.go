// Package docsync keeps a searchable content store synchronized with a live
// documentation site. Pages are discovered by an external crawl service,
// normalized, deduplicated by content hash, chunked to fit the store's
// per-document size limit, and upserted in batches.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, postgres/, firecrawl/).
package docsync
