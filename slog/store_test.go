package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/mock"
	docslog "github.com/fwojciec/docsync/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingStore_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("logs document count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Store{
			UpsertFn: func(context.Context, []*docsync.Document) error { return nil },
		}

		store := docslog.NewLoggingStore(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		err := store.Upsert(context.Background(), []*docsync.Document{{}, {}})

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "store upsert")
		assert.Contains(t, output, "documents=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Store{
			UpsertFn: func(context.Context, []*docsync.Document) error { return errors.New("disk full") },
		}

		store := docslog.NewLoggingStore(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		err := store.Upsert(context.Background(), nil)

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"disk full\"")
	})
}

func TestLoggingStore_Search(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.Store{
		SearchFn: func(context.Context, string, int) ([]docsync.SearchResult, error) {
			return []docsync.SearchResult{{Content: "a"}}, nil
		},
	}

	store := docslog.NewLoggingStore(inner, debugLogger(&buf))
	results, err := store.Search(context.Background(), "billing", 5)

	require.NoError(t, err)
	assert.Len(t, results, 1)
	output := buf.String()
	assert.Contains(t, output, "store search")
	assert.Contains(t, output, "query=billing")
	assert.Contains(t, output, "results=1")
}

func TestLoggingStore_Summarize(t *testing.T) {
	t.Parallel()

	t.Run("delegates to a summarizing store", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Store{
			SummarizeFn: func(context.Context) (*docsync.StoreSummary, error) {
				return &docsync.StoreSummary{Documents: 4}, nil
			},
		}

		var buf bytes.Buffer
		summary, err := docslog.NewLoggingStore(inner, debugLogger(&buf)).Summarize(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 4, summary.Documents)
	})

	t.Run("rejects a store without summaries", func(t *testing.T) {
		t.Parallel()

		var inner struct{ docsync.Store }

		var buf bytes.Buffer
		_, err := docslog.NewLoggingStore(inner, debugLogger(&buf)).Summarize(context.Background())

		assert.Equal(t, docsync.EINVALID, docsync.ErrorCode(err))
	})
}
