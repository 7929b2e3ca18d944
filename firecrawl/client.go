// Package firecrawl implements docsync.CrawlService on the Firecrawl v1
// crawl API.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/docsync"
)

// DefaultBaseURL is the hosted Firecrawl API.
const DefaultBaseURL = "https://api.firecrawl.dev"

// DefaultTimeout bounds each HTTP request.
const DefaultTimeout = 30 * time.Second

// maxResultPages caps how many "next" links one status check follows.
const maxResultPages = 100

// Ensure Client implements docsync.CrawlService at compile time.
var _ docsync.CrawlService = (*Client)(nil)

// Client talks to the Firecrawl crawl endpoints.
type Client struct {
	apiKey      string
	baseURL     string
	client      *http.Client
	timeout     time.Duration
	retryDelays []time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a self-hosted Firecrawl instance.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the per-request timeout.
// Defaults to DefaultTimeout if not specified. Ignored with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetryDelays sets the waits between attempts on transient failures.
// Defaults to DefaultRetryDelays. No delays disables retries.
func WithRetryDelays(delays ...time.Duration) Option {
	return func(c *Client) {
		c.retryDelays = delays
	}
}

// DefaultRetryDelays returns the backoff delays for retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// NewClient creates a Client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		timeout:     DefaultTimeout,
		retryDelays: DefaultRetryDelays(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

type scrapeOptions struct {
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	MaxAge          int64    `json:"maxAge,omitempty"`
}

type crawlRequest struct {
	URL           string        `json:"url"`
	Limit         int           `json:"limit,omitempty"`
	MaxDepth      int           `json:"maxDepth,omitempty"`
	IncludePaths  []string      `json:"includePaths,omitempty"`
	ExcludePaths  []string      `json:"excludePaths,omitempty"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type crawlResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error"`
}

type statusResponse struct {
	Success   *bool          `json:"success"`
	Status    string         `json:"status"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
	Next      string         `json:"next"`
	Data      []docsync.Page `json:"data"`
	Error     string         `json:"error"`
}

// StartCrawl submits a crawl job for rawURL and returns its ID.
func (c *Client) StartCrawl(ctx context.Context, rawURL string, opts docsync.CrawlOptions) (string, error) {
	if c.apiKey == "" {
		return "", docsync.Errorf(docsync.EINVALID, "firecrawl API key is not configured")
	}
	if rawURL == "" {
		return "", docsync.Errorf(docsync.EINVALID, "crawl URL required")
	}

	formats := []string{"markdown"}
	if opts.IncludeHTML {
		formats = append(formats, "html")
	}

	body := crawlRequest{
		URL:          rawURL,
		Limit:        opts.Limit,
		MaxDepth:     opts.MaxDepth,
		IncludePaths: opts.IncludePaths,
		ExcludePaths: opts.ExcludePaths,
		ScrapeOptions: scrapeOptions{
			Formats:         formats,
			OnlyMainContent: opts.OnlyMainContent,
			MaxAge:          opts.CacheTTL.Milliseconds(),
		},
	}

	var resp crawlResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/crawl", body, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.ID == "" {
		return "", docsync.Errorf(docsync.EINTERNAL, "firecrawl rejected crawl of %s: %s", rawURL, orUnknown(resp.Error))
	}
	return resp.ID, nil
}

// CheckStatus returns the current state of job jobID including every page
// scraped so far. Paginated results are followed and concatenated.
func (c *Client) CheckStatus(ctx context.Context, jobID string) (*docsync.CrawlJob, error) {
	if jobID == "" {
		return nil, docsync.Errorf(docsync.EINVALID, "job ID required")
	}

	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/v1/crawl/"+url.PathEscape(jobID), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Success != nil && !*resp.Success {
		return nil, docsync.Errorf(docsync.EINTERNAL, "firecrawl status check for %s failed: %s", jobID, orUnknown(resp.Error))
	}

	job := &docsync.CrawlJob{
		ID:        jobID,
		Status:    jobStatus(resp.Status),
		Completed: resp.Completed,
		Total:     resp.Total,
		Pages:     resp.Data,
		Error:     resp.Error,
	}

	next := resp.Next
	for n := 0; next != "" && n < maxResultPages; n++ {
		var more statusResponse
		if err := c.do(ctx, http.MethodGet, next, nil, &more); err != nil {
			return nil, err
		}
		job.Pages = append(job.Pages, more.Data...)
		next = more.Next
	}

	return job, nil
}

// jobStatus maps Firecrawl's status strings onto docsync.JobStatus.
func jobStatus(s string) docsync.JobStatus {
	switch s {
	case "completed":
		return docsync.JobCompleted
	case "failed":
		return docsync.JobFailed
	case "cancelled":
		return docsync.JobCancelled
	case "":
		return docsync.JobQueued
	}
	return docsync.JobRunning
}

// do sends a JSON request and decodes the JSON response into out, retrying
// transient failures after each of the client's retry delays.
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := 0; attempt <= len(c.retryDelays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelays[attempt-1]):
			}
		}

		retry, err := c.send(ctx, method, endpoint, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return lastErr
}

// send performs a single request. It reports whether a failure is worth
// retrying: rate limiting always is, and gateway errors and transport
// failures are for GET requests, which cannot start a second job.
func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, out any) (bool, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	idempotent := method == http.MethodGet

	resp, err := c.client.Do(req)
	if err != nil {
		return idempotent, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return idempotent, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retry := resp.StatusCode == http.StatusTooManyRequests ||
			(idempotent && resp.StatusCode >= http.StatusInternalServerError)
		return retry, statusError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode firecrawl response: %w", err)
	}
	return false, nil
}

// statusError converts a non-2xx response into an application error.
func statusError(code int, body []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	if msg == "" {
		msg = http.StatusText(code)
	}

	switch {
	case code == http.StatusNotFound:
		return docsync.Errorf(docsync.ENOTFOUND, "firecrawl: HTTP %d: %s", code, msg)
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return docsync.Errorf(docsync.ETIMEOUT, "firecrawl: HTTP %d: %s", code, msg)
	case code >= 400 && code < 500 && code != http.StatusTooManyRequests:
		return docsync.Errorf(docsync.EINVALID, "firecrawl: HTTP %d: %s", code, msg)
	}
	return docsync.Errorf(docsync.EINTERNAL, "firecrawl: HTTP %d: %s", code, msg)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown error"
	}
	return s
}
