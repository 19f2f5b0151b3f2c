package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeNotFound, "path not found")

	assert.Equal(t, CodeNotFound, err.Code())
	assert.Equal(t, ClassificationPermanent, err.Classification())
	assert.Equal(t, "path not found", err.Message())
	assert.Equal(t, "[NOT_FOUND] path not found", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeInvalidInput, "bad cursor %q", "abc")
	assert.Equal(t, `[INVALID_INPUT] bad cursor "abc"`, err.Error())
}

func TestWrap(t *testing.T) {
	t.Run("nil returns nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, CodeIO, "read failed"))
	})

	t.Run("preserves the cause", func(t *testing.T) {
		cause := fs.ErrNotExist
		err := Wrap(cause, CodeNotFound, "stat failed")

		assert.True(t, stderrors.Is(err, fs.ErrNotExist))
		assert.Equal(t, "[NOT_FOUND] stat failed: file does not exist", err.Error())
	})

	t.Run("preserves inner classification", func(t *testing.T) {
		inner := New(CodeRemoteFailed, "connection reset")
		err := Wrap(inner, CodeSearchFailed, "remote search failed")

		assert.Equal(t, CodeSearchFailed, err.Code())
		assert.Equal(t, ClassificationRetryable, err.Classification())
	})
}

func TestWithContext(t *testing.T) {
	err := WithContext(New(CodeRemoteFailed, "put failed"), map[string]any{
		"bucket": "docs",
		"key":    "notes/todo.md",
	})

	require.NotNil(t, err)
	ctx := err.Context()
	assert.Equal(t, "docs", ctx["bucket"])

	// the returned map is a copy
	ctx["bucket"] = "mutated"
	assert.Equal(t, "docs", err.Context()["bucket"])
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeUnknown, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, CodeTimeout, GetCode(New(CodeTimeout, "deadline exceeded")))

	wrapped := fmt.Errorf("outer: %w", New(CodeInvalidScope, "outside root"))
	assert.Equal(t, CodeInvalidScope, GetCode(wrapped))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(CodeTimeout, "slow remote")))
	assert.True(t, IsRetryable(New(CodeRemoteFailed, "503")))
	assert.False(t, IsRetryable(New(CodeNotFound, "gone")))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
}

func TestToResponse(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ToResponse(nil))
	})

	t.Run("structured", func(t *testing.T) {
		err := WithContext(New(CodeNotFound, "no such path"), map[string]any{"path": "/tmp/x"})
		resp := ToResponse(err)

		require.NotNil(t, resp)
		assert.Equal(t, "NOT_FOUND", resp.Code)
		assert.Equal(t, "no such path", resp.Message)
		assert.Equal(t, "PERMANENT", resp.Classification)
		assert.Equal(t, "/tmp/x", resp.Context["path"])
	})

	t.Run("plain error", func(t *testing.T) {
		resp := ToResponse(fmt.Errorf("boom"))

		require.NotNil(t, resp)
		assert.Equal(t, "UNKNOWN", resp.Code)
		assert.Equal(t, "boom", resp.Message)
	})
}
