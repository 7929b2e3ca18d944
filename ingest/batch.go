package ingest

import (
	"context"
	"log/slog"

	"github.com/fwojciec/docsync"
)

// DefaultBatchSize is the number of documents sent per upsert.
const DefaultBatchSize = 10

// BatchUploader accumulates documents and upserts them in fixed-size batches.
//
// The first batch is read back from the store after upload. If it cannot be
// found, the uploader fails permanently: the error is returned from that and
// every later Add or Flush, and nothing more is uploaded. Later batches are
// not verified; a failed later batch is counted and skipped.
//
// A BatchUploader serves a single ingestion of one root URL and is not safe
// for concurrent use.
type BatchUploader struct {
	store  docsync.Store
	size   int
	logger *slog.Logger

	// OnStored is called for each page once all of its documents are stored.
	// It receives the page's last document.
	OnStored func(doc *docsync.Document)

	pending     []*docsync.Document
	verified    bool
	err         error
	failedPages map[string]struct{}

	uploaded int
	failed   int
}

// NewBatchUploader returns a BatchUploader writing to store. A non-positive
// size selects DefaultBatchSize.
func NewBatchUploader(store docsync.Store, size int, logger *slog.Logger) *BatchUploader {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if logger == nil {
		logger = discardLogger
	}
	return &BatchUploader{
		store:       store,
		size:        size,
		logger:      logger,
		failedPages: make(map[string]struct{}),
	}
}

// Add queues doc and uploads the batch once it is full.
func (u *BatchUploader) Add(ctx context.Context, doc *docsync.Document) error {
	if u.err != nil {
		return u.err
	}
	u.pending = append(u.pending, doc)
	if len(u.pending) < u.size {
		return nil
	}
	return u.upload(ctx)
}

// Flush uploads any queued documents.
func (u *BatchUploader) Flush(ctx context.Context) error {
	if u.err != nil {
		return u.err
	}
	if len(u.pending) == 0 {
		return nil
	}
	return u.upload(ctx)
}

// Uploaded returns the number of documents stored.
func (u *BatchUploader) Uploaded() int { return u.uploaded }

// Failed returns the number of documents in failed batches.
func (u *BatchUploader) Failed() int { return u.failed }

// Err returns the error that stopped the uploader, if any.
func (u *BatchUploader) Err() error { return u.err }

func (u *BatchUploader) upload(ctx context.Context) error {
	batch := u.pending
	u.pending = nil

	if !u.verified {
		return u.uploadFirst(ctx, batch)
	}

	if err := u.store.Upsert(ctx, batch); err != nil {
		u.failed += len(batch)
		for _, doc := range batch {
			u.failedPages[doc.SourceURL] = struct{}{}
		}
		u.logger.Error("batch upload failed",
			"documents", len(batch),
			"err", err,
		)
		return nil
	}

	u.stored(batch)
	return nil
}

// uploadFirst uploads the first batch and verifies the store persisted it.
func (u *BatchUploader) uploadFirst(ctx context.Context, batch []*docsync.Document) error {
	if err := u.store.Upsert(ctx, batch); err != nil {
		u.err = docsync.Errorf(docsync.EVERIFY, "first batch upload failed: %v", err)
		u.logger.Error("first batch upload failed", "documents", len(batch), "err", err)
		return u.err
	}

	sample := batch[0]
	if !u.persisted(ctx, sample) {
		u.err = docsync.Errorf(docsync.EVERIFY, "uploaded document %s not found in store", sample.SourceURL)
		u.logger.Error("upload verification failed", "url", sample.SourceURL)
		return u.err
	}

	u.verified = true
	u.logger.Info("upload verification passed", "url", sample.SourceURL)
	u.stored(batch)
	return nil
}

// persisted reports whether doc can be read back from the store.
func (u *BatchUploader) persisted(ctx context.Context, doc *docsync.Document) bool {
	results, err := u.store.Search(ctx, doc.SourceURL, DefaultSearchLimit)
	if err != nil {
		u.logger.Warn("verification lookup failed", "url", doc.SourceURL, "err", err)
		return false
	}
	for _, r := range results {
		source, _ := r.Metadata.String(docsync.MetaSource)
		hash, _ := r.Metadata.String(docsync.MetaContentHash)
		if source == doc.SourceURL && hash == doc.ContentHash {
			return true
		}
	}
	return false
}

// stored records a successful batch and reports completed pages.
func (u *BatchUploader) stored(batch []*docsync.Document) {
	u.uploaded += len(batch)
	u.logger.Info("batch uploaded", "documents", len(batch), "total", u.uploaded)

	for _, doc := range batch {
		if !doc.IsLastChunk() {
			continue
		}
		if _, failed := u.failedPages[doc.SourceURL]; failed {
			continue
		}
		if u.OnStored != nil {
			u.OnStored(doc)
		}
	}
}
