package vfs_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noh-rs/nohrs/vfs"
	"github.com/noh-rs/nohrs/vfs/billy"
)

func TestCopyAll(t *testing.T) {
	src := fstest.MapFS{
		"templates/readme.md":     {Data: []byte("# hello"), Mode: 0644},
		"templates/sub/notes.txt": {Data: []byte("notes"), Mode: 0600},
		"other/skip.txt":          {Data: []byte("skip"), Mode: 0644},
	}

	dst := billy.NewMemory()
	require.NoError(t, vfs.CopyAll(dst, src, "templates"))

	data, err := dst.ReadFile("readme.md")
	require.NoError(t, err)
	assert.Equal(t, "# hello", string(data))

	data, err = dst.ReadFile("sub/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "notes", string(data))

	ok, err := dst.Exists("skip.txt")
	require.NoError(t, err)
	assert.False(t, ok, "paths outside srcRoot must not be copied")
}

func TestCopyAllWholeSource(t *testing.T) {
	src := fstest.MapFS{
		"a.txt":     {Data: []byte("a"), Mode: 0644},
		"dir/b.txt": {Data: []byte("b"), Mode: 0644},
	}

	dst := billy.NewMemory()
	require.NoError(t, vfs.CopyAll(dst, src, "."))

	for _, name := range []string{"a.txt", "dir/b.txt"} {
		ok, err := dst.Exists(name)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}
}
