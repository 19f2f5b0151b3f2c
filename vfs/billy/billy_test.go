package billy_test

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noh-rs/nohrs/vfs"
	"github.com/noh-rs/nohrs/vfs/billy"
	"github.com/noh-rs/nohrs/vfs/vfstest"
)

func TestMemoryFSConformance(t *testing.T) {
	// memfs does not implement billy.Change, so mode and time updates are
	// unsupported; TestMemoryChtimesUnsupported pins that behavior.
	vfstest.RunWithConfig(t, func(t *testing.T) vfs.FS {
		return billy.NewMemory()
	}, vfstest.Config{
		Skip: []string{"Capabilities/Chmod", "Capabilities/Chtimes"},
	})
}

func TestLocalFSConformance(t *testing.T) {
	vfstest.Run(t, func(t *testing.T) vfs.FS {
		return billy.NewLocalRooted(t.TempDir())
	})
}

func TestTypes(t *testing.T) {
	assert.Equal(t, vfs.FSTypeLocal, billy.NewLocal().Type())
	assert.Equal(t, vfs.FSTypeMemory, billy.NewMemory().Type())
}

func TestLocalRootedConfinement(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0644))
	defer os.Remove(outside)

	fsys := billy.NewLocalRooted(root)
	require.NoError(t, fsys.WriteFile("inside.txt", []byte("ok"), 0644))

	// a dot-dot escape stays inside the root
	_, err := fsys.ReadFile("../outside.txt")
	assert.Error(t, err)

	// the write landed under root on disk
	data, err := os.ReadFile(filepath.Join(root, "inside.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestLocalChmodAndChtimes(t *testing.T) {
	root := t.TempDir()
	fsys := billy.NewLocalRooted(root)
	require.NoError(t, fsys.WriteFile("f.txt", []byte("x"), 0644))

	when := time.Unix(1_600_000_000, 0)
	require.NoError(t, fsys.Chtimes("f.txt", when, when))
	require.NoError(t, fsys.Chmod("f.txt", 0600))

	info, err := os.Stat(filepath.Join(root, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, when.Unix(), info.ModTime().Unix())
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLocalChtimesInChroot(t *testing.T) {
	root := t.TempDir()
	fsys := billy.NewLocalRooted(root)
	require.NoError(t, fsys.WriteFile("sub/f.txt", []byte("x"), 0644))

	scoped, err := fsys.Chroot("sub")
	require.NoError(t, err)

	when := time.Unix(1_500_000_000, 0)
	require.NoError(t, scoped.(vfs.MetadataFS).Chtimes("f.txt", when, when))

	info, err := os.Stat(filepath.Join(root, "sub", "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, when.Unix(), info.ModTime().Unix())
}

func TestLocalChtimesConfined(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	require.NoError(t, os.MkdirAll(root, 0755))
	outside := filepath.Join(parent, "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))
	before, err := os.Stat(outside)
	require.NoError(t, err)

	fsys := billy.NewLocalRooted(root)
	// The dot-dot collapses inside the mount, so the target does not exist.
	err = fsys.Chtimes("../outside.txt", time.Unix(0, 0), time.Unix(0, 0))
	assert.Error(t, err)

	after, err := os.Stat(outside)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestMemoryChtimesUnsupported(t *testing.T) {
	fsys := billy.NewMemory()
	require.NoError(t, fsys.WriteFile("f.txt", []byte("x"), 0644))

	err := fsys.Chmod("f.txt", 0600)
	assert.ErrorIs(t, err, vfs.ErrUnsupported)
}

func TestFileHandle(t *testing.T) {
	fsys := billy.NewMemory()

	f, err := fsys.Create("notes.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rf, err := fsys.Open("notes.txt")
	require.NoError(t, err)
	defer rf.Close()

	assert.Implements(t, (*io.Seeker)(nil), rf)
	assert.Implements(t, (*io.ReaderAt)(nil), rf)

	info, err := rf.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(len("hello world")), info.Size())

	ra := rf.(io.ReaderAt)
	buf := make([]byte, 5)
	_, err = ra.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, "world", string(buf))
}

func TestWalkOrder(t *testing.T) {
	fsys := billy.NewMemory()
	for _, name := range []string{"b/inner.txt", "a.txt", "c.txt"} {
		require.NoError(t, fsys.WriteFile(name, []byte("x"), 0644))
	}

	var visited []string
	err := fsys.Walk("/", func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		visited = append(visited, path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/a.txt", "/b", "/b/inner.txt", "/c.txt"}, visited)
}

func TestUnwrapReturnsBilly(t *testing.T) {
	assert.NotNil(t, billy.NewMemory().Unwrap())
	assert.NotNil(t, billy.NewLocal().Unwrap())
}
