package s3

import (
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noh-rs/nohrs/vfs"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing bucket",
			cfg:     Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"},
			wantErr: "bucket is required",
		},
		{
			name:    "missing endpoint",
			cfg:     Config{Bucket: "b", AccessKey: "a", SecretKey: "s"},
			wantErr: "endpoint is required",
		},
		{
			name:    "missing access key",
			cfg:     Config{Bucket: "b", Endpoint: "localhost:9000", SecretKey: "s"},
			wantErr: "access key is required",
		},
		{
			name:    "missing secret key",
			cfg:     Config{Bucket: "b", Endpoint: "localhost:9000", AccessKey: "a"},
			wantErr: "secret key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	fsys, err := New(Config{
		Endpoint:  "localhost:9000",
		Bucket:    "bucket",
		AccessKey: "key",
		SecretKey: "secret",
		Prefix:    "/data/",
	})
	require.NoError(t, err)

	assert.Equal(t, "data", fsys.prefix)
	assert.Equal(t, int64(5*1024*1024), fsys.multipartThreshold)
	assert.Equal(t, 10, fsys.renameConcurrency)
	assert.Equal(t, vfs.FSTypeRemote, fsys.Type())
}

func TestChrootExtendsPrefix(t *testing.T) {
	fsys, err := New(Config{
		Endpoint:  "localhost:9000",
		Bucket:    "bucket",
		AccessKey: "key",
		SecretKey: "secret",
		Prefix:    "data",
	})
	require.NoError(t, err)

	sub, err := fsys.Chroot("projects/alpha")
	require.NoError(t, err)

	s3sub, ok := sub.(*S3FS)
	require.True(t, ok)
	assert.Equal(t, "data/projects/alpha", s3sub.prefix)
	assert.Equal(t, "data/projects/alpha/readme.md", s3sub.joinKey("readme.md"))
}

func TestOpenFileRejectsUnsupportedFlags(t *testing.T) {
	fsys := &S3FS{bucket: "bucket"}

	for _, flag := range []int{os.O_RDWR, os.O_APPEND, os.O_EXCL, os.O_SYNC} {
		_, err := fsys.OpenFile("a.txt", flag, 0644)
		require.Error(t, err)
		assert.ErrorIs(t, err, vfs.ErrUnsupported)

		var pathErr *fs.PathError
		assert.ErrorAs(t, err, &pathErr)
	}
}

func TestWriteFileBuffersBelowThreshold(t *testing.T) {
	fsys := &S3FS{bucket: "bucket", multipartThreshold: 1024}
	file := newWriteFile(fsys, "a.txt", "a.txt", os.O_WRONLY|os.O_CREATE|os.O_TRUNC)

	n, err := file.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	info, err := file.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.Equal(t, "a.txt", file.Name())

	// Reads are invalid on a write handle.
	_, err = file.Read(make([]byte, 1))
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestWriteFileClosedRejectsWrites(t *testing.T) {
	fsys := &S3FS{bucket: "bucket", multipartThreshold: 1024}
	file := newWriteFile(fsys, "a.txt", "a.txt", os.O_WRONLY)
	file.closed = true

	_, err := file.Write([]byte("x"))
	assert.ErrorIs(t, err, fs.ErrClosed)
}
