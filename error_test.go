package docsync_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/docsync"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := docsync.Errorf(docsync.ENOTFOUND, "document %q not found", "test")

	assert.Equal(t, docsync.ENOTFOUND, docsync.ErrorCode(err))
	assert.Equal(t, "document \"test\" not found", docsync.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("upload: %w", docsync.Errorf(docsync.EVERIFY, "not persisted"))

	assert.Equal(t, docsync.EVERIFY, docsync.ErrorCode(err))
	assert.Equal(t, "not persisted", docsync.ErrorMessage(err))
}

func TestErrorCode_PlainError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, docsync.EINTERNAL, docsync.ErrorCode(err))
	assert.Equal(t, "Internal error.", docsync.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docsync.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docsync.ErrorMessage(nil))
}
