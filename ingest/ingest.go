// Package ingest synchronizes a content store with documentation sites.
// It drives crawl jobs on an external crawl service, normalizes and
// deduplicates the returned pages, chunks oversized content, and uploads
// the resulting documents in verified batches.
package ingest

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/docsync"
	"github.com/google/uuid"
)

// Default ingestion settings.
const (
	DefaultMaxChunkLength = 8000
	DefaultCrawlLimit     = 500
	DefaultMaxDepth       = 10
)

// Config holds ingestion settings. Zero values select defaults, except
// PollInterval, where zero polls without waiting.
type Config struct {
	// DefaultRootURL is ingested when Ingest is called without URLs.
	DefaultRootURL string

	// Domain restricts stored pages to one host. When empty, each root
	// URL's own host is used.
	Domain string

	BatchSize      int
	MaxChunkLength int
	PollInterval   time.Duration
	MaxPolls       int
	SearchLimit    int

	Crawl docsync.CrawlOptions
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		BatchSize:      DefaultBatchSize,
		MaxChunkLength: DefaultMaxChunkLength,
		PollInterval:   DefaultPollInterval,
		MaxPolls:       DefaultMaxPolls,
		SearchLimit:    DefaultSearchLimit,
		Crawl: docsync.CrawlOptions{
			Limit:           DefaultCrawlLimit,
			MaxDepth:        DefaultMaxDepth,
			OnlyMainContent: true,
		},
	}
}

// Ingester keeps a store synchronized with documentation sites.
type Ingester struct {
	Crawler    docsync.CrawlService
	Store      docsync.Store
	Normalizer *Normalizer
	Config     Config
	Logger     *slog.Logger

	// Mirror, when set, receives every stored or unchanged page. It is
	// committed when at least one root URL was ingested and aborted
	// otherwise.
	Mirror docsync.PageMirror

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Ingest crawls each root URL in turn and stores new or changed pages.
// With forceUpdate set, every page is written regardless of its stored hash.
// When urls is empty, Config.DefaultRootURL is ingested.
//
// A URL whose ingestion fails is counted in Stats.Failed and the remaining
// URLs are still processed. The returned error is non-nil only when nothing
// could be attempted or when starting the very first crawl job fails; stats
// are returned in every case.
func (i *Ingester) Ingest(ctx context.Context, urls []string, forceUpdate bool) (*docsync.Stats, error) {
	stats := &docsync.Stats{}

	if len(urls) == 0 && i.Config.DefaultRootURL != "" {
		urls = []string{i.Config.DefaultRootURL}
	}
	if len(urls) == 0 {
		return stats, docsync.Errorf(docsync.EINVALID, "no URLs to ingest")
	}
	if i.Crawler == nil || i.Store == nil {
		stats.Failed = len(urls)
		return stats, docsync.Errorf(docsync.EINVALID, "crawl service and store are required")
	}

	logger := i.logger()
	publish := false
	defer func() { i.closeMirror(publish) }()

	for n, rootURL := range urls {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		urlStats, err := i.ingestURL(ctx, rootURL, forceUpdate)
		stats.Merge(urlStats)
		if err != nil {
			stats.Failed++
			logger.Error("ingestion failed",
				"url", rootURL,
				"code", docsync.ErrorCode(err),
				"err", err,
			)
			if n == 0 && IsStartError(err) {
				return stats, err
			}
			continue
		}
		stats.URLs = append(stats.URLs, rootURL)
	}
	publish = len(stats.URLs) > 0 && ctx.Err() == nil

	logger.Info("ingestion summary",
		"processed", stats.Processed,
		"with_content", stats.WithContent,
		"matched_domain", stats.MatchedDomain,
		"added", stats.Added,
		"content_updated", stats.ContentUpdated,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, nil
}

// ingestURL runs one crawl job through the pipeline. The returned stats
// cover everything processed before any error.
func (i *Ingester) ingestURL(ctx context.Context, rootURL string, force bool) (*docsync.Stats, error) {
	cfg := i.config()
	logger := i.logger().With("root", rootURL)
	stats := &docsync.Stats{}

	domain := cfg.Domain
	if domain == "" {
		domain = hostOf(rootURL)
	}

	dedup := &Deduplicator{Store: i.Store, SearchLimit: cfg.SearchLimit, Logger: logger}
	uploader := NewBatchUploader(i.Store, cfg.BatchSize, logger)
	actions := make(map[string]Action)
	uploader.OnStored = func(doc *docsync.Document) {
		stats.Added++
		if actions[doc.SourceURL] == ActionUpdate {
			stats.ContentUpdated++
		}
	}

	opts := cfg.Crawl
	if i.Normalizer.ConvertsHTML() {
		opts.IncludeHTML = true
	}

	poller := &Poller{
		Service:  i.Crawler,
		Options:  opts,
		Interval: cfg.PollInterval,
		MaxPolls: cfg.MaxPolls,
		Logger:   logger,
	}

	_, err := poller.Poll(ctx, rootURL, func(ctx context.Context, batch Batch) error {
		stats.Processed += len(batch.Pages) + batch.Duplicates
		for _, page := range batch.Pages {
			rec, ok := i.Normalizer.Normalize(page)
			if !ok {
				logger.Debug("dropping page without URL")
				continue
			}
			if !rec.HasContent() {
				logger.Debug("dropping page without content", "url", rec.URL)
				continue
			}
			stats.WithContent++
			if !matchesDomain(rec.URL, domain) {
				logger.Debug("dropping page outside domain", "url", rec.URL, "domain", domain)
				continue
			}
			stats.MatchedDomain++
			stats.CrawledURLs = append(stats.CrawledURLs, rec.URL)
			if i.Mirror != nil {
				if err := i.Mirror.Save(ctx, rec); err != nil {
					logger.Warn("mirror save failed", "url", rec.URL, "err", err)
				}
			}

			doc := &docsync.Document{
				SourceURL:   rec.URL,
				Title:       rec.Title,
				Content:     rec.Content,
				Domain:      domain,
				Description: rec.Description,
				ContentHash: docsync.HashContent(rec.Content),
				UpdatedAt:   i.now().UTC(),
			}

			action := dedup.Classify(ctx, doc, force)
			if action == ActionSkip {
				stats.Skipped++
				continue
			}
			actions[doc.SourceURL] = action

			for _, d := range doc.Split(cfg.MaxChunkLength, DocumentID) {
				if err := uploader.Add(ctx, d); err != nil {
					return err
				}
			}
		}
		return nil
	})

	// Terminal states flush what was already queued. A stopped uploader
	// returns its own error here.
	if flushErr := uploader.Flush(ctx); flushErr != nil && err == nil {
		err = flushErr
	}
	stats.Failed += uploader.Failed()

	logger.Info("crawl summary",
		"processed", stats.Processed,
		"added", stats.Added,
		"skipped", stats.Skipped,
		"uploaded_documents", uploader.Uploaded(),
		"failed_documents", uploader.Failed(),
		"err", err,
	)
	return stats, err
}

// closeMirror commits or aborts the mirror. Failures only affect the local
// copy and are logged.
func (i *Ingester) closeMirror(publish bool) {
	if i.Mirror == nil {
		return
	}
	var err error
	if publish {
		err = i.Mirror.Commit()
	} else {
		err = i.Mirror.Abort()
	}
	if err != nil {
		i.logger().Warn("mirror close failed", "publish", publish, "err", err)
	}
}

// DocumentID returns the stable ID of a page or one of its chunks, so that
// re-ingesting a page replaces its documents rather than duplicating them.
func DocumentID(sourceURL string, chunk *docsync.ChunkPosition) string {
	name := sourceURL
	if chunk != nil {
		name += "#chunk=" + strconv.Itoa(chunk.Index)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// matchesDomain reports whether rawURL is on domain or one of its subdomains.
func matchesDomain(rawURL, domain string) bool {
	if domain == "" {
		return true
	}
	host := hostOf(rawURL)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// hostOf returns the lower-cased host of rawURL without port.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// config returns Config with defaults applied to zero fields.
func (i *Ingester) config() Config {
	cfg := i.Config
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxChunkLength <= 0 {
		cfg.MaxChunkLength = def.MaxChunkLength
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = def.MaxPolls
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = def.SearchLimit
	}
	if cfg.Crawl.Limit <= 0 {
		cfg.Crawl.Limit = def.Crawl.Limit
	}
	if cfg.Crawl.MaxDepth <= 0 {
		cfg.Crawl.MaxDepth = def.Crawl.MaxDepth
	}
	return cfg
}

func (i *Ingester) logger() *slog.Logger {
	if i.Logger == nil {
		return discardLogger
	}
	return i.Logger
}

func (i *Ingester) now() time.Time {
	if i.Now == nil {
		return time.Now()
	}
	return i.Now()
}
