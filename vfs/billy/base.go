package billy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/noh-rs/nohrs/vfs"
)

// base implements the vfs operations shared by LocalFS and MemoryFS on top
// of a billy.Filesystem. Chroot lives on the concrete types because it must
// return the matching wrapper.
type base struct {
	bfs    billy.Filesystem
	fsType vfs.FSType
}

// Type reports the storage backing this filesystem.
func (b *base) Type() vfs.FSType { return b.fsType }

// dirEntry adapts fs.FileInfo to fs.DirEntry. Billy's ReadDir predates
// fs.DirEntry and returns FileInfo values.
type dirEntry struct {
	info fs.FileInfo
}

func (d *dirEntry) Name() string               { return d.info.Name() }
func (d *dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d *dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d *dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

// Open opens the named file for reading.
func (b *base) Open(name string) (fs.File, error) {
	name = normalize(name)
	f, err := b.bfs.Open(name)
	if err != nil {
		return nil, err
	}
	return &File{file: f, fs: b.bfs, name: name}, nil
}

// Stat returns file metadata for the named file.
func (b *base) Stat(name string) (fs.FileInfo, error) {
	return b.bfs.Stat(normalize(name))
}

// ReadDir returns the entries of the named directory sorted by name.
func (b *base) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := b.bfs.ReadDir(normalize(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = &dirEntry{info: info}
	}
	return entries, nil
}

// ReadFile reads the whole named file.
func (b *base) ReadFile(name string) ([]byte, error) {
	f, err := b.bfs.Open(normalize(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// Exists reports whether the named path exists.
func (b *base) Exists(name string) (bool, error) {
	_, err := b.bfs.Stat(normalize(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named file for writing.
func (b *base) Create(name string) (vfs.File, error) {
	name = normalize(name)
	f, err := b.bfs.Create(name)
	if err != nil {
		return nil, err
	}
	return &File{file: f, fs: b.bfs, name: name}, nil
}

// OpenFile opens a file with the given flags and permissions.
func (b *base) OpenFile(name string, flag int, perm fs.FileMode) (vfs.File, error) {
	name = normalize(name)
	f, err := b.bfs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &File{file: f, fs: b.bfs, name: name}, nil
}

// WriteFile writes data to the named file, creating or truncating it.
func (b *base) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f, err := b.bfs.OpenFile(normalize(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.Write(data)
	return err
}

// Mkdir creates a new directory. Billy only offers MkdirAll, so the parent
// and existence checks run first to keep Mkdir semantics.
func (b *base) Mkdir(name string, perm fs.FileMode) error {
	name = normalize(name)
	if _, err := b.bfs.Stat(name); err == nil {
		return os.ErrExist
	}
	parent := filepath.Dir(name)
	if parent != "." && parent != "/" {
		if _, err := b.bfs.Stat(parent); err != nil {
			return err
		}
	}
	return b.bfs.MkdirAll(name, perm)
}

// MkdirAll creates a directory along with any missing parents.
func (b *base) MkdirAll(path string, perm fs.FileMode) error {
	return b.bfs.MkdirAll(normalize(path), perm)
}

// Remove removes the named file or empty directory.
func (b *base) Remove(name string) error {
	return b.bfs.Remove(normalize(name))
}

// RemoveAll removes path and any children it contains. Billy has no
// RemoveAll, so directories are drained recursively.
func (b *base) RemoveAll(path string) error {
	path = normalize(path)
	info, err := b.bfs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if !info.IsDir() {
		return b.bfs.Remove(path)
	}

	entries, err := b.bfs.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := b.RemoveAll(normalize(filepath.Join(path, entry.Name()))); err != nil {
			return err
		}
	}

	return b.bfs.Remove(path)
}

// Rename renames (moves) oldpath to newpath.
func (b *base) Rename(oldpath, newpath string) error {
	return b.bfs.Rename(normalize(oldpath), normalize(newpath))
}

// Walk walks the tree rooted at root in lexical order.
func (b *base) Walk(root string, walkFn fs.WalkDirFunc) error {
	root = normalize(root)
	info, err := b.bfs.Stat(root)
	if err != nil {
		err = walkFn(root, nil, err)
	} else {
		err = b.walk(root, &dirEntry{info: info}, walkFn)
	}
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (b *base) walk(path string, d fs.DirEntry, walkFn fs.WalkDirFunc) error {
	if err := walkFn(path, d, nil); err != nil || !d.IsDir() {
		if errors.Is(err, fs.SkipDir) && d.IsDir() {
			err = nil
		}
		return err
	}

	entries, err := b.bfs.ReadDir(path)
	if err != nil {
		if err := walkFn(path, d, err); err != nil {
			return err
		}
	}

	for _, entry := range entries {
		next := normalize(filepath.Join(path, entry.Name()))
		if err := b.walk(next, &dirEntry{info: entry}, walkFn); err != nil {
			if errors.Is(err, fs.SkipDir) {
				continue
			}
			return err
		}
	}
	return nil
}

// Lstat returns file info without following symbolic links.
func (b *base) Lstat(name string) (fs.FileInfo, error) {
	return b.bfs.Lstat(normalize(name))
}

// Chmod changes the mode of the named file. Backends without mode support
// (memfs) return ErrUnsupported.
func (b *base) Chmod(name string, mode fs.FileMode) error {
	ch, ok := b.bfs.(billy.Change)
	if !ok {
		return &fs.PathError{Op: "chmod", Path: name, Err: vfs.ErrUnsupported}
	}
	return ch.Chmod(normalize(name), mode)
}

// Chtimes changes the access and modification times of the named file.
// Backends without time support (memfs) return ErrUnsupported.
func (b *base) Chtimes(name string, atime, mtime time.Time) error {
	ch, ok := b.bfs.(billy.Change)
	if !ok {
		return &fs.PathError{Op: "chtimes", Path: name, Err: vfs.ErrUnsupported}
	}
	return ch.Chtimes(normalize(name), atime, mtime)
}

// Symlink creates newname as a symbolic link to oldname.
func (b *base) Symlink(oldname, newname string) error {
	return b.bfs.Symlink(oldname, normalize(newname))
}

// Readlink returns the destination of the named symbolic link.
func (b *base) Readlink(name string) (string, error) {
	return b.bfs.Readlink(normalize(name))
}

// TempFile creates a new temporary file in dir. Billy takes a prefix rather
// than a pattern, so anything from "*" on is dropped.
func (b *base) TempFile(dir, pattern string) (vfs.File, error) {
	prefix, _, _ := strings.Cut(pattern, "*")
	f, err := b.bfs.TempFile(normalize(dir), prefix)
	if err != nil {
		return nil, err
	}
	name := normalize(f.Name())
	return &File{file: f, fs: b.bfs, name: name}, nil
}

// TempDir creates a new temporary directory in dir and returns its path.
func (b *base) TempDir(dir, pattern string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	prefix, suffix, _ := strings.Cut(pattern, "*")
	for i := 0; i < 10000; i++ {
		name := normalize(filepath.Join(dir, fmt.Sprintf("%s%d%s", prefix, rand.Uint32(), suffix)))
		if _, err := b.bfs.Stat(name); err == nil {
			continue
		}
		if err := b.bfs.MkdirAll(name, 0700); err != nil {
			return "", err
		}
		return name, nil
	}
	return "", &fs.PathError{Op: "tempdir", Path: dir, Err: os.ErrExist}
}
