// Package billy adapts go-billy filesystems (osfs, memfs) to the vfs
// contract. LocalFS backs the disk mounts of the explorer; MemoryFS backs
// tests and scratch mounts. Both expose the underlying billy.Filesystem via
// Unwrap for go-git interop.
package billy

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/noh-rs/nohrs/vfs"
)

// LocalFS is a disk-backed filesystem rooted at a local directory.
type LocalFS struct {
	base
}

// MemoryFS is an in-memory filesystem. It starts empty.
type MemoryFS struct {
	base
}

// NewLocal creates a local filesystem rooted at the filesystem root ("/").
func NewLocal() *LocalFS {
	return NewLocalRooted("/")
}

// NewLocalRooted creates a local filesystem rooted at the given directory.
// All paths are interpreted relative to root, which keeps explorer mounts
// from reaching outside their configured tree.
func NewLocalRooted(root string) *LocalFS {
	return &LocalFS{base{bfs: osfs.New(root), fsType: vfs.FSTypeLocal}}
}

// NewMemory creates an empty in-memory filesystem.
func NewMemory() *MemoryFS {
	return &MemoryFS{base{bfs: memfs.New(), fsType: vfs.FSTypeMemory}}
}

// Unwrap returns the underlying billy.Filesystem for go-git integration.
func (l *LocalFS) Unwrap() billy.Filesystem { return l.bfs }

// Unwrap returns the underlying billy.Filesystem for go-git integration.
func (m *MemoryFS) Unwrap() billy.Filesystem { return m.bfs }

// Chmod changes the mode of the named file. osfs does not implement
// billy.Change, so the change runs through the os package on the host path.
func (l *LocalFS) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(l.hostPath(name), mode)
}

// Chtimes changes the access and modification times of the named file.
func (l *LocalFS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(l.hostPath(name), atime, mtime)
}

// hostPath maps a mount-relative name to its location on the host disk.
// Rooting the name at "/" first collapses dot-dot segments, so the result
// stays inside the mount like every billy-routed operation.
func (l *LocalFS) hostPath(name string) string {
	name = filepath.Join("/", filepath.FromSlash(normalize(name)))
	return filepath.Join(l.bfs.Root(), name)
}

// Chroot returns a filesystem scoped to the given directory.
func (l *LocalFS) Chroot(dir string) (vfs.FS, error) {
	scoped, err := l.bfs.Chroot(normalize(dir))
	if err != nil {
		return nil, err
	}
	return &LocalFS{base{bfs: scoped, fsType: vfs.FSTypeLocal}}, nil
}

// Chroot returns a filesystem scoped to the given directory.
func (m *MemoryFS) Chroot(dir string) (vfs.FS, error) {
	scoped, err := m.bfs.Chroot(normalize(dir))
	if err != nil {
		return nil, err
	}
	return &MemoryFS{base{bfs: scoped, fsType: vfs.FSTypeMemory}}, nil
}

// normalize cleans a path and converts it to slash form. Billy handles the
// chroot security; this only keeps keys consistent across platforms.
func normalize(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// Compile-time interface checks.
var (
	_ vfs.FS         = (*LocalFS)(nil)
	_ vfs.FS         = (*MemoryFS)(nil)
	_ vfs.MetadataFS = (*LocalFS)(nil)
	_ vfs.SymlinkFS  = (*LocalFS)(nil)
	_ vfs.TempFS     = (*LocalFS)(nil)
	_ vfs.MetadataFS = (*MemoryFS)(nil)
	_ vfs.SymlinkFS  = (*MemoryFS)(nil)
	_ vfs.TempFS     = (*MemoryFS)(nil)
)
