package docsync

import (
	"context"
	"time"
)

// JobStatus is the lifecycle state of an asynchronous crawl job.
type JobStatus string

// Crawl job states.
const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether the job will not change state again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	}
	return false
}

// CrawlOptions bounds a crawl job.
type CrawlOptions struct {
	// Limit is the maximum number of pages the service should crawl.
	Limit int

	// MaxDepth is the maximum link depth from the root URL.
	MaxDepth int

	// CacheTTL lets the service answer from its own cache for pages
	// scraped more recently than this. Zero disables cached answers.
	CacheTTL time.Duration

	// IncludePaths and ExcludePaths are path patterns passed through
	// to the service.
	IncludePaths []string
	ExcludePaths []string

	// OnlyMainContent asks the service to strip navigation and footers.
	OnlyMainContent bool

	// IncludeHTML asks the service to return page HTML next to markdown.
	IncludeHTML bool
}

// CrawlJob is a snapshot of a crawl job's state.
type CrawlJob struct {
	ID        string
	Status    JobStatus
	Completed int
	Total     int

	// Pages holds the pages present in this snapshot. Services may return
	// every page scraped so far, so the same page can appear in many
	// snapshots.
	Pages []Page

	// Error is the service-reported failure reason, if any.
	Error string
}

// CrawlService drives asynchronous crawl jobs on an external service.
type CrawlService interface {
	// StartCrawl starts a crawl job rooted at url and returns its ID.
	StartCrawl(ctx context.Context, url string, opts CrawlOptions) (jobID string, err error)

	// CheckStatus returns the current state of a crawl job.
	CheckStatus(ctx context.Context, jobID string) (*CrawlJob, error)
}
