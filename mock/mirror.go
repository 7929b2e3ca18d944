package mock

import (
	"context"

	"github.com/fwojciec/docsync"
)

var _ docsync.PageMirror = (*PageMirror)(nil)

// PageMirror is a mock implementation of docsync.PageMirror.
type PageMirror struct {
	SaveFn   func(ctx context.Context, rec *docsync.PageRecord) error
	CommitFn func() error
	AbortFn  func() error
}

func (m *PageMirror) Save(ctx context.Context, rec *docsync.PageRecord) error {
	return m.SaveFn(ctx, rec)
}

func (m *PageMirror) Commit() error {
	return m.CommitFn()
}

func (m *PageMirror) Abort() error {
	return m.AbortFn()
}
