package firecrawl_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/firecrawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_StartCrawl(t *testing.T) {
	t.Parallel()

	t.Run("posts crawl request and returns job ID", func(t *testing.T) {
		t.Parallel()

		var got map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/crawl", r.URL.Path)
			assert.Equal(t, "Bearer fc-test", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"success":true,"id":"job-123","url":"https://api.firecrawl.dev/v1/crawl/job-123"}`))
		}))
		defer server.Close()

		client := firecrawl.NewClient("fc-test", firecrawl.WithBaseURL(server.URL+"/"))

		id, err := client.StartCrawl(context.Background(), "https://example.com/", docsync.CrawlOptions{
			Limit:           500,
			MaxDepth:        10,
			CacheTTL:        2 * time.Hour,
			IncludePaths:    []string{"/en/.*"},
			OnlyMainContent: true,
		})

		require.NoError(t, err)
		assert.Equal(t, "job-123", id)
		assert.Equal(t, "https://example.com/", got["url"])
		assert.InDelta(t, 500, got["limit"], 0)
		assert.InDelta(t, 10, got["maxDepth"], 0)
		assert.Equal(t, []any{"/en/.*"}, got["includePaths"])
		assert.NotContains(t, got, "excludePaths")
		scrape, ok := got["scrapeOptions"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, []any{"markdown"}, scrape["formats"])
		assert.Equal(t, true, scrape["onlyMainContent"])
		assert.InDelta(t, 7200000, scrape["maxAge"], 0)
	})

	t.Run("requests HTML when asked", func(t *testing.T) {
		t.Parallel()

		var got struct {
			ScrapeOptions struct {
				Formats []string `json:"formats"`
			} `json:"scrapeOptions"`
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"success":true,"id":"job-1"}`))
		}))
		defer server.Close()

		client := firecrawl.NewClient("fc-test", firecrawl.WithBaseURL(server.URL))

		_, err := client.StartCrawl(context.Background(), "https://example.com/", docsync.CrawlOptions{IncludeHTML: true})

		require.NoError(t, err)
		assert.Equal(t, []string{"markdown", "html"}, got.ScrapeOptions.Formats)
	})

	t.Run("requires an API key", func(t *testing.T) {
		t.Parallel()

		client := firecrawl.NewClient("")

		_, err := client.StartCrawl(context.Background(), "https://example.com/", docsync.CrawlOptions{})

		assert.Equal(t, docsync.EINVALID, docsync.ErrorCode(err))
	})

	t.Run("returns API error message", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"Unauthorized: Invalid token"}`))
		}))
		defer server.Close()

		client := firecrawl.NewClient("bad", firecrawl.WithBaseURL(server.URL))

		_, err := client.StartCrawl(context.Background(), "https://example.com/", docsync.CrawlOptions{})

		require.Error(t, err)
		assert.Equal(t, docsync.EINVALID, docsync.ErrorCode(err))
		assert.Contains(t, docsync.ErrorMessage(err), "Invalid token")
	})

	t.Run("rejects unsuccessful response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"error":"insufficient credits"}`))
		}))
		defer server.Close()

		client := firecrawl.NewClient("fc-test", firecrawl.WithBaseURL(server.URL))

		_, err := client.StartCrawl(context.Background(), "https://example.com/", docsync.CrawlOptions{})

		require.Error(t, err)
		assert.Contains(t, docsync.ErrorMessage(err), "insufficient credits")
	})

	t.Run("treats server errors as internal", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := firecrawl.NewClient("fc-test", firecrawl.WithBaseURL(server.URL))

		_, err := client.StartCrawl(context.Background(), "https://example.com/", docsync.CrawlOptions{})

		assert.Equal(t, docsync.EINTERNAL, docsync.ErrorCode(err))
		assert.Contains(t, docsync.ErrorMessage(err), "Bad Gateway")
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(`{"success":true,"id":"x"}`))
		}))
		defer server.Close()

		client := firecrawl.NewClient("fc-test",
			firecrawl.WithBaseURL(server.URL),
			firecrawl.WithTimeout(10*time.Millisecond),
		)

		_, err := client.StartCrawl(context.Background(), "https://example.com/", docsync.CrawlOptions{})
		require.Error(t, err)
	})
}

func TestClient_CheckStatus(t *testing.T) {
	t.Parallel()

	t.Run("maps status and pages", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/v1/crawl/job-123", r.URL.Path)
			_, _ = w.Write([]byte(`{
				"status": "scraping",
				"completed": 1,
				"total": 3,
				"data": [{"markdown": "# Hello", "metadata": {"sourceURL": "https://example.com/a", "title": "Hello"}}]
			}`))
		}))
		defer server.Close()

		client := firecrawl.NewClient("fc-test", firecrawl.WithBaseURL(server.URL))

		job, err := client.CheckStatus(context.Background(), "job-123")

		require.NoError(t, err)
		assert.Equal(t, "job-123", job.ID)
		assert.Equal(t, docsync.JobRunning, job.Status)
		assert.Equal(t, 1, job.Completed)
		assert.Equal(t, 3, job.Total)
		require.Len(t, job.Pages, 1)
		assert.Equal(t, "# Hello", job.Pages[0]["markdown"])
		meta, ok := job.Pages[0]["metadata"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "https://example.com/a", meta["sourceURL"])
	})

	t.Run("follows next links", func(t *testing.T) {
		t.Parallel()

		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer fc-test", r.Header.Get("Authorization"))
			if r.URL.Query().Get("skip") == "1" {
				_, _ = w.Write([]byte(`{"status":"completed","completed":2,"total":2,"data":[{"markdown":"B"}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"completed","completed":2,"total":2,"next":"` + server.URL + `/v1/crawl/job?skip=1","data":[{"markdown":"A"}]}`))
		}))
		defer server.Close()

		client := firecrawl.NewClient("fc-test", firecrawl.WithBaseURL(server.URL))

		job, err := client.CheckStatus(context.Background(), "job")

		require.NoError(t, err)
		assert.Equal(t, docsync.JobCompleted, job.Status)
		require.Len(t, job.Pages, 2)
		assert.Equal(t, "A", job.Pages[0]["markdown"])
		assert.Equal(t, "B", job.Pages[1]["markdown"])
	})

	t.Run("maps terminal failure states", func(t *testing.T) {
		t.Parallel()

		for status, want := range map[string]docsync.JobStatus{
			"failed":    docsync.JobFailed,
			"cancelled": docsync.JobCancelled,
			"completed": docsync.JobCompleted,
		} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"` + status + `","error":"boom"}`))
			}))

			job, err := firecrawl.NewClient("fc-test", firecrawl.WithBaseURL(server.URL)).CheckStatus(context.Background(), "job")
			server.Close()

			require.NoError(t, err)
			assert.Equal(t, want, job.Status, status)
			assert.Equal(t, "boom", job.Error)
		}
	})

	t.Run("returns not found for unknown job", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"Job not found"}`))
		}))
		defer server.Close()

		client := firecrawl.NewClient("fc-test", firecrawl.WithBaseURL(server.URL))

		_, err := client.CheckStatus(context.Background(), "missing")

		assert.Equal(t, docsync.ENOTFOUND, docsync.ErrorCode(err))
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		client := firecrawl.NewClient("fc-test", firecrawl.WithBaseURL(server.URL))

		_, err := client.CheckStatus(context.Background(), "job")

		require.Error(t, err)
	})

	t.Run("requires job ID", func(t *testing.T) {
		t.Parallel()

		_, err := firecrawl.NewClient("fc-test").CheckStatus(context.Background(), "")

		assert.Equal(t, docsync.EINVALID, docsync.ErrorCode(err))
	})
}
