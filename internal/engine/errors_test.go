package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcileError_Error(t *testing.T) {
	err := newReconcileError(ErrCodePersistFailed, "u-1", "leap", "update exercise", errors.New("locked"))
	assert.Equal(t, "PERSIST_FAILED: update exercise (exercise=u-1, slug=leap): locked", err.Error())

	bare := newReconcileError(ErrCodeSourceFailed, "u-2", "", "read", nil)
	assert.Equal(t, "SOURCE_FAILED: read (exercise=u-2)", bare.Error())
}

func TestIsEntityRemoved(t *testing.T) {
	removed := newReconcileError(ErrCodeEntityRemoved, "u-1", "leap", "gone", ErrEntityRemoved)
	wrapped := fmt.Errorf("run: %w", removed)

	assert.True(t, IsEntityRemoved(removed))
	assert.True(t, IsEntityRemoved(wrapped))
	assert.True(t, IsEntityRemoved(ErrEntityRemoved))
	assert.True(t, errors.Is(wrapped, ErrEntityRemoved))
	assert.False(t, IsEntityRemoved(newReconcileError(ErrCodePersistFailed, "u-1", "", "x", nil)))
	assert.False(t, IsEntityRemoved(errors.New("other")))
}

func TestErrorCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", newReconcileError(ErrCodeResolveFailed, "u-1", "", "x", nil))
	assert.Equal(t, ErrCodeResolveFailed, ErrorCode(err))
	assert.Equal(t, ReconcileErrorCode(""), ErrorCode(errors.New("plain")))
}
