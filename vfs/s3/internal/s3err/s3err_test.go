package s3err

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, Translate(nil))
	})

	t.Run("missing key", func(t *testing.T) {
		err := Translate(minio.ErrorResponse{Code: "NoSuchKey"})
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("missing bucket", func(t *testing.T) {
		err := Translate(minio.ErrorResponse{Code: "NoSuchBucket"})
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("access denied", func(t *testing.T) {
		err := Translate(minio.ErrorResponse{Code: "AccessDenied"})
		assert.ErrorIs(t, err, fs.ErrPermission)
	})

	t.Run("unmapped error is wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Translate(cause)
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "s3:")
	})
}

func TestPathError(t *testing.T) {
	assert.NoError(t, PathError("stat", "a.txt", nil))

	err := PathError("stat", "a.txt", fs.ErrNotExist)
	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "stat", pathErr.Op)
	assert.Equal(t, "a.txt", pathErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestPathErrorf(t *testing.T) {
	err := PathErrorf("open", "a.txt", "%w: O_RDWR", fs.ErrInvalid)
	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.ErrorIs(t, err, fs.ErrInvalid)
	assert.Contains(t, err.Error(), "O_RDWR")
}
