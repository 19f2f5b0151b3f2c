// Package vfstest is a conformance suite for vfs.FS implementations.
// Backends run the same behavioral tables; optional capabilities are
// discovered with type assertions and exercised only where present.
//
// Usage:
//
//	func TestMyFSConformance(t *testing.T) {
//	    vfstest.Run(t, func(t *testing.T) vfs.FS { return NewMyFS() })
//	}
package vfstest

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noh-rs/nohrs/vfs"
)

// Factory returns a fresh, empty filesystem for a subtest.
type Factory func(t *testing.T) vfs.FS

// Config adjusts expectations for backend families.
type Config struct {
	// VirtualDirs marks object-store semantics: directories are implicit,
	// Mkdir never fails, and empty directories do not exist.
	VirtualDirs bool

	// Skip lists subtest names to skip, e.g. "Write/Mkdir".
	Skip []string
}

// Run exercises the filesystem with POSIX-style expectations.
func Run(t *testing.T, factory Factory) {
	RunWithConfig(t, factory, Config{})
}

// RunWithConfig exercises the filesystem with the given expectations.
func RunWithConfig(t *testing.T, factory Factory, cfg Config) {
	t.Run("Read", func(t *testing.T) { testRead(t, factory, cfg) })
	t.Run("Write", func(t *testing.T) { testWrite(t, factory, cfg) })
	t.Run("Manage", func(t *testing.T) { testManage(t, factory, cfg) })
	t.Run("Walk", func(t *testing.T) { testWalk(t, factory, cfg) })
	t.Run("Chroot", func(t *testing.T) { testChroot(t, factory, cfg) })
	t.Run("Capabilities", func(t *testing.T) { testCapabilities(t, factory, cfg) })
}

func (c Config) skipped(t *testing.T, name string) {
	for _, skip := range c.Skip {
		if skip == name {
			t.Skipf("skipped by backend configuration: %s", name)
		}
	}
}

func testRead(t *testing.T, factory Factory, cfg Config) {
	t.Run("ReadFileRoundTrip", func(t *testing.T) {
		cfg.skipped(t, "Read/ReadFileRoundTrip")
		fsys := factory(t)
		require.NoError(t, fsys.WriteFile("file.txt", []byte("content"), 0644))

		data, err := fsys.ReadFile("file.txt")
		require.NoError(t, err)
		assert.Equal(t, "content", string(data))
	})

	t.Run("OpenAndRead", func(t *testing.T) {
		cfg.skipped(t, "Read/OpenAndRead")
		fsys := factory(t)
		require.NoError(t, fsys.WriteFile("file.txt", []byte("stream me"), 0644))

		f, err := fsys.Open("file.txt")
		require.NoError(t, err)
		defer f.Close()

		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "stream me", string(data))
	})

	t.Run("StatFile", func(t *testing.T) {
		cfg.skipped(t, "Read/StatFile")
		fsys := factory(t)
		require.NoError(t, fsys.WriteFile("file.txt", []byte("12345"), 0644))

		info, err := fsys.Stat("file.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(5), info.Size())
		assert.False(t, info.IsDir())
	})

	t.Run("StatMissing", func(t *testing.T) {
		cfg.skipped(t, "Read/StatMissing")
		fsys := factory(t)

		_, err := fsys.Stat("no-such-file")
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("ReadDirSorted", func(t *testing.T) {
		cfg.skipped(t, "Read/ReadDirSorted")
		fsys := factory(t)
		for _, name := range []string{"dir/c.txt", "dir/a.txt", "dir/b.txt"} {
			require.NoError(t, fsys.MkdirAll("dir", 0755))
			require.NoError(t, fsys.WriteFile(name, []byte("x"), 0644))
		}

		entries, err := fsys.ReadDir("dir")
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, "a.txt", entries[0].Name())
		assert.Equal(t, "b.txt", entries[1].Name())
		assert.Equal(t, "c.txt", entries[2].Name())
	})

	t.Run("ReadDirMixed", func(t *testing.T) {
		cfg.skipped(t, "Read/ReadDirMixed")
		fsys := factory(t)
		require.NoError(t, fsys.MkdirAll("dir/sub", 0755))
		require.NoError(t, fsys.WriteFile("dir/sub/f.txt", []byte("x"), 0644))
		require.NoError(t, fsys.WriteFile("dir/file.txt", []byte("x"), 0644))

		entries, err := fsys.ReadDir("dir")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "file.txt", entries[0].Name())
		assert.False(t, entries[0].IsDir())
		assert.Equal(t, "sub", entries[1].Name())
		assert.True(t, entries[1].IsDir())
	})

	t.Run("Exists", func(t *testing.T) {
		cfg.skipped(t, "Read/Exists")
		fsys := factory(t)
		require.NoError(t, fsys.WriteFile("present.txt", []byte("x"), 0644))

		ok, err := fsys.Exists("present.txt")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = fsys.Exists("absent.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func testWrite(t *testing.T, factory Factory, cfg Config) {
	t.Run("CreateTruncates", func(t *testing.T) {
		cfg.skipped(t, "Write/CreateTruncates")
		fsys := factory(t)
		require.NoError(t, fsys.WriteFile("file.txt", []byte("old content"), 0644))

		f, err := fsys.Create("file.txt")
		require.NoError(t, err)
		_, err = f.Write([]byte("new"))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		data, err := fsys.ReadFile("file.txt")
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("WriteFileOverwrites", func(t *testing.T) {
		cfg.skipped(t, "Write/WriteFileOverwrites")
		fsys := factory(t)
		require.NoError(t, fsys.WriteFile("file.txt", []byte("first"), 0644))
		require.NoError(t, fsys.WriteFile("file.txt", []byte("second"), 0644))

		data, err := fsys.ReadFile("file.txt")
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))
	})

	t.Run("OpenFileCreate", func(t *testing.T) {
		cfg.skipped(t, "Write/OpenFileCreate")
		fsys := factory(t)

		f, err := fsys.OpenFile("new.txt", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		require.NoError(t, err)
		_, err = f.Write([]byte("created"))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		data, err := fsys.ReadFile("new.txt")
		require.NoError(t, err)
		assert.Equal(t, "created", string(data))
	})

	t.Run("Mkdir", func(t *testing.T) {
		cfg.skipped(t, "Write/Mkdir")
		if cfg.VirtualDirs {
			t.Skip("object stores have virtual directories")
		}
		fsys := factory(t)
		require.NoError(t, fsys.Mkdir("dir", 0755))

		info, err := fsys.Stat("dir")
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		// creating it again fails
		assert.Error(t, fsys.Mkdir("dir", 0755))
	})

	t.Run("MkdirAll", func(t *testing.T) {
		cfg.skipped(t, "Write/MkdirAll")
		if cfg.VirtualDirs {
			t.Skip("object stores have virtual directories")
		}
		fsys := factory(t)
		require.NoError(t, fsys.MkdirAll("a/b/c", 0755))
		require.NoError(t, fsys.MkdirAll("a/b/c", 0755)) // idempotent

		info, err := fsys.Stat("a/b/c")
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func testManage(t *testing.T, factory Factory, cfg Config) {
	t.Run("RemoveFile", func(t *testing.T) {
		cfg.skipped(t, "Manage/RemoveFile")
		fsys := factory(t)
		require.NoError(t, fsys.WriteFile("file.txt", []byte("x"), 0644))

		require.NoError(t, fsys.Remove("file.txt"))

		ok, err := fsys.Exists("file.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("RemoveAllTree", func(t *testing.T) {
		cfg.skipped(t, "Manage/RemoveAllTree")
		fsys := factory(t)
		require.NoError(t, fsys.MkdirAll("tree/sub", 0755))
		require.NoError(t, fsys.WriteFile("tree/a.txt", []byte("x"), 0644))
		require.NoError(t, fsys.WriteFile("tree/sub/b.txt", []byte("x"), 0644))

		require.NoError(t, fsys.RemoveAll("tree"))

		ok, err := fsys.Exists("tree/sub/b.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("RemoveAllMissing", func(t *testing.T) {
		cfg.skipped(t, "Manage/RemoveAllMissing")
		fsys := factory(t)
		assert.NoError(t, fsys.RemoveAll("never-existed"))
	})

	t.Run("RenameFile", func(t *testing.T) {
		cfg.skipped(t, "Manage/RenameFile")
		fsys := factory(t)
		require.NoError(t, fsys.WriteFile("old.txt", []byte("payload"), 0644))

		require.NoError(t, fsys.Rename("old.txt", "new.txt"))

		data, err := fsys.ReadFile("new.txt")
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))

		ok, err := fsys.Exists("old.txt")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("RenameTree", func(t *testing.T) {
		cfg.skipped(t, "Manage/RenameTree")
		fsys := factory(t)
		require.NoError(t, fsys.MkdirAll("src/sub", 0755))
		require.NoError(t, fsys.WriteFile("src/a.txt", []byte("a"), 0644))
		require.NoError(t, fsys.WriteFile("src/sub/b.txt", []byte("b"), 0644))

		require.NoError(t, fsys.Rename("src", "dst"))

		data, err := fsys.ReadFile("dst/sub/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "b", string(data))
	})
}

func testWalk(t *testing.T, factory Factory, cfg Config) {
	t.Run("VisitsAllFiles", func(t *testing.T) {
		cfg.skipped(t, "Walk/VisitsAllFiles")
		fsys := factory(t)
		seed := []string{"w/a.txt", "w/sub/b.txt", "w/sub/deep/c.txt"}
		for _, name := range seed {
			require.NoError(t, fsys.WriteFile(name, []byte("x"), 0644))
		}

		var files []string
		err := fsys.Walk("w", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"w/a.txt", "w/sub/b.txt", "w/sub/deep/c.txt"}, files)
	})

	t.Run("SkipDir", func(t *testing.T) {
		cfg.skipped(t, "Walk/SkipDir")
		fsys := factory(t)
		require.NoError(t, fsys.WriteFile("w/keep.txt", []byte("x"), 0644))
		require.NoError(t, fsys.WriteFile("w/skip/hidden.txt", []byte("x"), 0644))

		var files []string
		err := fsys.Walk("w", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && d.Name() == "skip" {
				return fs.SkipDir
			}
			if !d.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"w/keep.txt"}, files)
	})

	t.Run("MissingRoot", func(t *testing.T) {
		cfg.skipped(t, "Walk/MissingRoot")
		fsys := factory(t)
		err := fsys.Walk("missing", func(path string, d fs.DirEntry, err error) error {
			return err
		})
		assert.Error(t, err)
	})
}

func testChroot(t *testing.T, factory Factory, cfg Config) {
	t.Run("ScopedView", func(t *testing.T) {
		cfg.skipped(t, "Chroot/ScopedView")
		fsys := factory(t)
		require.NoError(t, fsys.MkdirAll("jail", 0755))
		require.NoError(t, fsys.WriteFile("jail/inner.txt", []byte("inner"), 0644))
		require.NoError(t, fsys.WriteFile("outer.txt", []byte("outer"), 0644))

		scoped, err := fsys.Chroot("jail")
		require.NoError(t, err)

		data, err := scoped.ReadFile("inner.txt")
		require.NoError(t, err)
		assert.Equal(t, "inner", string(data))

		ok, _ := scoped.Exists("outer.txt")
		assert.False(t, ok, "chroot must not see the parent tree")
	})

	t.Run("WritesLandInScope", func(t *testing.T) {
		cfg.skipped(t, "Chroot/WritesLandInScope")
		fsys := factory(t)
		require.NoError(t, fsys.MkdirAll("jail", 0755))

		scoped, err := fsys.Chroot("jail")
		require.NoError(t, err)
		require.NoError(t, scoped.WriteFile("new.txt", []byte("x"), 0644))

		ok, err := fsys.Exists("jail/new.txt")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func testCapabilities(t *testing.T, factory Factory, cfg Config) {
	t.Run("Metadata", func(t *testing.T) {
		cfg.skipped(t, "Capabilities/Metadata")
		fsys := factory(t)
		mfs, ok := fsys.(vfs.MetadataFS)
		if !ok {
			t.Skip("backend does not implement MetadataFS")
		}
		require.NoError(t, fsys.WriteFile("file.txt", []byte("x"), 0644))

		info, err := mfs.Lstat("file.txt")
		require.NoError(t, err)
		assert.Equal(t, "file.txt", info.Name())
	})

	t.Run("Chmod", func(t *testing.T) {
		cfg.skipped(t, "Capabilities/Chmod")
		fsys := factory(t)
		mfs, ok := fsys.(vfs.MetadataFS)
		if !ok {
			t.Skip("backend does not implement MetadataFS")
		}
		require.NoError(t, fsys.WriteFile("file.txt", []byte("x"), 0644))

		require.NoError(t, mfs.Chmod("file.txt", 0600))

		info, err := fsys.Stat("file.txt")
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0600), info.Mode().Perm())
	})

	t.Run("Chtimes", func(t *testing.T) {
		cfg.skipped(t, "Capabilities/Chtimes")
		fsys := factory(t)
		mfs, ok := fsys.(vfs.MetadataFS)
		if !ok {
			t.Skip("backend does not implement MetadataFS")
		}
		require.NoError(t, fsys.WriteFile("file.txt", []byte("x"), 0644))

		when := time.Date(2021, time.March, 4, 5, 6, 7, 0, time.UTC)
		require.NoError(t, mfs.Chtimes("file.txt", when, when))

		info, err := fsys.Stat("file.txt")
		require.NoError(t, err)
		assert.Equal(t, when.Unix(), info.ModTime().Unix())
	})

	t.Run("Symlink", func(t *testing.T) {
		cfg.skipped(t, "Capabilities/Symlink")
		fsys := factory(t)
		sfs, ok := fsys.(vfs.SymlinkFS)
		if !ok {
			t.Skip("backend does not implement SymlinkFS")
		}
		require.NoError(t, fsys.WriteFile("target.txt", []byte("x"), 0644))
		require.NoError(t, sfs.Symlink("target.txt", "link.txt"))

		dest, err := sfs.Readlink("link.txt")
		require.NoError(t, err)
		assert.Equal(t, "target.txt", dest)
	})

	t.Run("TempFile", func(t *testing.T) {
		cfg.skipped(t, "Capabilities/TempFile")
		fsys := factory(t)
		tfs, ok := fsys.(vfs.TempFS)
		if !ok {
			t.Skip("backend does not implement TempFS")
		}
		require.NoError(t, fsys.MkdirAll("tmp", 0755))

		f, err := tfs.TempFile("tmp", "scratch-*")
		require.NoError(t, err)
		name := f.Name()
		require.NoError(t, f.Close())

		ok2, err := fsys.Exists(name)
		require.NoError(t, err)
		assert.True(t, ok2)
	})

	t.Run("Unsupported", func(t *testing.T) {
		cfg.skipped(t, "Capabilities/Unsupported")
		fsys := factory(t)
		if _, ok := fsys.(vfs.SymlinkFS); ok {
			t.Skip("backend supports symlinks")
		}
		// nothing to assert; absence of the interface is the contract
		assert.True(t, errors.Is(vfs.ErrUnsupported, vfs.ErrUnsupported))
	})
}
