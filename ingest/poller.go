package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/docsync"
	"golang.org/x/time/rate"
)

// Polling defaults.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxPolls     = 300
)

// errStartCrawl marks a failure to start a crawl job.
var errStartCrawl = errors.New("start crawl")

// IsStartError reports whether err came from failing to start a crawl job.
func IsStartError(err error) bool {
	return errors.Is(err, errStartCrawl)
}

// Batch is the set of pages first seen on one poll.
type Batch struct {
	// Pages holds pages whose URL has not been seen earlier in the job.
	Pages []docsync.Page

	// Duplicates counts new page entries dropped because their URL was
	// already seen. The first occurrence of a URL wins.
	Duplicates int
}

// BatchFunc receives each poll's new pages. Returning an error stops polling.
type BatchFunc func(ctx context.Context, batch Batch) error

// Poller drives a crawl job to a terminal state.
type Poller struct {
	Service  docsync.CrawlService
	Options  docsync.CrawlOptions
	Interval time.Duration
	MaxPolls int
	Logger   *slog.Logger
}

// Poll starts a crawl job rooted at rootURL and polls it until the service
// reports a terminal status or MaxPolls is reached, passing the pages first
// seen on each poll to fn.
//
// Failing to start the job returns an error matched by IsStartError. A job
// that ends failed or cancelled returns EINTERNAL, and reaching MaxPolls
// returns ETIMEOUT. The last snapshot of the job is returned when available.
func (p *Poller) Poll(ctx context.Context, rootURL string, fn BatchFunc) (*docsync.CrawlJob, error) {
	logger := p.Logger
	if logger == nil {
		logger = discardLogger
	}
	maxPolls := p.MaxPolls
	if maxPolls <= 0 {
		maxPolls = DefaultMaxPolls
	}

	jobID, err := p.Service.StartCrawl(ctx, rootURL, p.Options)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", errStartCrawl, rootURL, err)
	}
	logger.Info("crawl started", "url", rootURL, "job", jobID)

	limiter := p.limiter()
	processed := make(map[string]struct{})
	seen := make(map[string]struct{})
	lastCompleted := -1

	var job *docsync.CrawlJob
	for poll := 1; poll <= maxPolls; poll++ {
		if err := limiter.Wait(ctx); err != nil {
			return job, err
		}

		snapshot, err := p.Service.CheckStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return job, ctx.Err()
			}
			logger.Warn("crawl status check failed", "job", jobID, "poll", poll, "err", err)
			continue
		}
		job = snapshot

		if job.Completed != lastCompleted {
			logger.Info("crawl progress",
				"job", jobID,
				"status", job.Status,
				"completed", job.Completed,
				"total", job.Total,
			)
			lastCompleted = job.Completed
		}

		batch := newPages(job.Pages, seen, processed)
		if len(batch.Pages) > 0 || batch.Duplicates > 0 {
			if err := fn(ctx, batch); err != nil {
				return job, err
			}
		}

		switch job.Status {
		case docsync.JobCompleted:
			return job, nil
		case docsync.JobFailed, docsync.JobCancelled:
			reason := job.Error
			if reason == "" {
				reason = "no reason given"
			}
			return job, docsync.Errorf(docsync.EINTERNAL, "crawl job %s %s: %s", jobID, job.Status, reason)
		}
	}

	return job, docsync.Errorf(docsync.ETIMEOUT, "crawl job %s did not finish after %d polls", jobID, maxPolls)
}

// limiter paces status checks one Interval apart, starting one Interval
// after the job was started.
func (p *Poller) limiter() *rate.Limiter {
	interval := p.Interval
	if interval < 0 {
		interval = 0
	}
	if interval == 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	l := rate.NewLimiter(rate.Every(interval), 1)
	l.Reserve()
	return l
}

// newPages returns the entries of pages not delivered on an earlier poll.
// A snapshot that repeats earlier entries yields nothing new. Among new
// entries, those whose URL was already processed are counted as duplicates
// and dropped.
func newPages(pages []docsync.Page, seen, processed map[string]struct{}) Batch {
	var batch Batch
	for _, page := range pages {
		url := ResolveURL(page)
		key := entryKey(url, page)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if url != "" {
			if _, ok := processed[url]; ok {
				batch.Duplicates++
				continue
			}
			processed[url] = struct{}{}
		}
		batch.Pages = append(batch.Pages, page)
	}
	return batch
}

// entryKey identifies a page payload across polls by its URL and the
// service's scrape ID, or a hash of its body when there is no scrape ID.
// Entries without a URL are fingerprinted whole; fmt prints map keys in
// sorted order, so equal payloads print identically.
func entryKey(url string, page docsync.Page) string {
	if url == "" {
		return docsync.HashContent(fmt.Sprint(map[string]any(page)))
	}
	if id := firstString(metadata(page), scrapeIDKeys...); id != "" {
		return url + "\x00" + id
	}
	body := firstString(page, contentKeys...) + "\x00" + firstString(page, htmlKeys...)
	return url + "\x00" + docsync.HashContent(body)
}
