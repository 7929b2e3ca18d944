package ingest_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/ingest"
	"github.com/fwojciec/docsync/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	t.Parallel()

	t.Run("prefers top-level url", func(t *testing.T) {
		t.Parallel()

		p := docsync.Page{
			"url":      "https://example.com/top",
			"metadata": map[string]any{"sourceURL": "https://example.com/meta"},
		}

		assert.Equal(t, "https://example.com/top", ingest.ResolveURL(p))
	})

	t.Run("accepts top-level sourceURL", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "https://example.com/a", ingest.ResolveURL(docsync.Page{"sourceURL": "https://example.com/a"}))
	})

	t.Run("falls back to nested metadata", func(t *testing.T) {
		t.Parallel()

		p := docsync.Page{"metadata": map[string]any{"url": "https://example.com/meta"}}

		assert.Equal(t, "https://example.com/meta", ingest.ResolveURL(p))
	})

	t.Run("returns empty when no URL is present", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, ingest.ResolveURL(docsync.Page{"markdown": "body", "metadata": "not an object"}))
		assert.Empty(t, ingest.ResolveURL(docsync.Page{"url": 42}))
	})
}

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()

	t.Run("builds record from Firecrawl payload", func(t *testing.T) {
		t.Parallel()

		n := &ingest.Normalizer{}
		rec, ok := n.Normalize(docsync.Page{
			"markdown": "# Hello",
			"metadata": map[string]any{
				"sourceURL":   "https://example.com/hello",
				"title":       "Hello",
				"description": "Greeting page",
			},
		})

		require.True(t, ok)
		assert.Equal(t, "https://example.com/hello", rec.URL)
		assert.Equal(t, "Hello", rec.Title)
		assert.Equal(t, "# Hello", rec.Content)
		assert.Equal(t, "Greeting page", rec.Description)
	})

	t.Run("resolves content from content and text fields", func(t *testing.T) {
		t.Parallel()

		n := &ingest.Normalizer{}

		rec, ok := n.Normalize(docsync.Page{"url": "u", "content": "from content", "text": "from text"})
		require.True(t, ok)
		assert.Equal(t, "from content", rec.Content)

		rec, ok = n.Normalize(docsync.Page{"url": "u", "text": "from text"})
		require.True(t, ok)
		assert.Equal(t, "from text", rec.Content)
	})

	t.Run("defaults title", func(t *testing.T) {
		t.Parallel()

		rec, ok := (&ingest.Normalizer{}).Normalize(docsync.Page{"url": "u", "markdown": "x"})

		require.True(t, ok)
		assert.Equal(t, "Untitled", rec.Title)
	})

	t.Run("takes title from first markdown heading", func(t *testing.T) {
		t.Parallel()

		rec, ok := (&ingest.Normalizer{}).Normalize(docsync.Page{"url": "u", "markdown": "intro\n\n## Reset your password\n\nSteps."})

		require.True(t, ok)
		assert.Equal(t, "Reset your password", rec.Title)
	})

	t.Run("returns false without URL", func(t *testing.T) {
		t.Parallel()

		rec, ok := (&ingest.Normalizer{}).Normalize(docsync.Page{"markdown": "x"})

		assert.False(t, ok)
		assert.Nil(t, rec)
	})

	t.Run("returns record without content when body is missing", func(t *testing.T) {
		t.Parallel()

		rec, ok := (&ingest.Normalizer{}).Normalize(docsync.Page{"url": "u", "markdown": "  \n"})

		require.True(t, ok)
		assert.False(t, rec.HasContent())
	})

	t.Run("converts HTML when no markdown is present", func(t *testing.T) {
		t.Parallel()

		n := &ingest.Normalizer{
			Extractor: &mock.Extractor{
				ExtractFn: func(html string) (*docsync.ExtractResult, error) {
					assert.Equal(t, "<html>raw</html>", html)
					return &docsync.ExtractResult{Title: "From HTML", Description: "Summary", ContentHTML: "<p>main</p>"}, nil
				},
			},
			Converter: &mock.Converter{
				ConvertFn: func(html, pageURL string) (string, error) {
					assert.Equal(t, "<p>main</p>", html)
					assert.Equal(t, "https://example.com/a", pageURL)
					return "main", nil
				},
			},
		}

		rec, ok := n.Normalize(docsync.Page{"url": "https://example.com/a", "rawHtml": "<html>raw</html>"})

		require.True(t, ok)
		assert.Equal(t, "main", rec.Content)
		assert.Equal(t, "From HTML", rec.Title)
		assert.Equal(t, "Summary", rec.Description)
	})

	t.Run("does not touch HTML when markdown is present", func(t *testing.T) {
		t.Parallel()

		n := &ingest.Normalizer{
			Extractor: &mock.Extractor{},
			Converter: &mock.Converter{},
		}

		rec, ok := n.Normalize(docsync.Page{"url": "u", "markdown": "md", "html": "<p>x</p>"})

		require.True(t, ok)
		assert.Equal(t, "md", rec.Content)
	})

	t.Run("leaves content empty when extraction fails", func(t *testing.T) {
		t.Parallel()

		n := &ingest.Normalizer{
			Extractor: &mock.Extractor{
				ExtractFn: func(string) (*docsync.ExtractResult, error) {
					return nil, errors.New("bad html")
				},
			},
			Converter: &mock.Converter{},
		}

		rec, ok := n.Normalize(docsync.Page{"url": "u", "html": "<p>x</p>"})

		require.True(t, ok)
		assert.False(t, rec.HasContent())
	})
}
