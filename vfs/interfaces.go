package vfs

import (
	"io"
	"io/fs"
	"time"
)

// FSType identifies the storage backing an FS implementation.
type FSType int

const (
	// FSTypeUnknown indicates the backend type is unknown or unspecified.
	FSTypeUnknown FSType = iota
	// FSTypeLocal indicates a disk-backed local filesystem.
	FSTypeLocal
	// FSTypeMemory indicates an in-memory filesystem.
	FSTypeMemory
	// FSTypeRemote indicates a remote object store (S3-compatible).
	FSTypeRemote
)

// String returns the lowercase name of the type.
func (t FSType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeMemory:
		return "memory"
	case FSTypeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// FS is the full filesystem contract every backend implements.
// It embeds fs.FS, so any backend can be handed to stdlib helpers such as
// fs.WalkDir, and composes the operation groups below.
//
// Callers that need latency hints can inspect Type: remote backends trade
// per-call latency for scale, and the explorer uses this to decide whether
// listing metadata is worth fetching eagerly.
type FS interface {
	fs.FS
	ReadFS
	WriteFS
	ManageFS
	WalkFS
	ChrootFS

	// Type reports the storage backing this filesystem.
	Type() FSType
}

// ReadFS defines read-only operations. All backends support these.
type ReadFS interface {
	// Open opens the named file for reading. The returned file can be
	// type-asserted to File when the backend allows writes on open handles.
	Open(name string) (fs.File, error)

	// Stat returns metadata for the named file.
	// Errors are of type *fs.PathError.
	Stat(name string) (fs.FileInfo, error)

	// ReadDir returns the entries of the named directory sorted by name.
	// Errors are of type *fs.PathError.
	ReadDir(name string) ([]fs.DirEntry, error)

	// ReadFile reads the whole named file. A successful call returns
	// err == nil, not err == io.EOF.
	ReadFile(name string) ([]byte, error)

	// Exists reports whether the named path exists. A false result with a
	// non-nil error means existence could not be determined, not that the
	// path is absent.
	Exists(name string) (bool, error)
}

// WriteFS defines write operations.
// Flag support varies by backend; remote backends document the subset they
// accept and return ErrUnsupported for the rest.
type WriteFS interface {
	// Create creates or truncates the named file for writing.
	Create(name string) (File, error)

	// OpenFile opens a file with the given flags (O_RDONLY, O_WRONLY,
	// O_CREATE, O_TRUNC, ...) and permissions.
	OpenFile(name string, flag int, perm fs.FileMode) (File, error)

	// WriteFile writes data to the named file, creating or truncating it.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Mkdir creates a new directory. Returns ErrExist if it already exists.
	// Object-store backends treat directories as virtual and may no-op.
	Mkdir(name string, perm fs.FileMode) error

	// MkdirAll creates a directory along with any missing parents.
	// It is a no-op if the path already is a directory.
	MkdirAll(path string, perm fs.FileMode) error
}

// ManageFS defines structural operations.
type ManageFS interface {
	// Remove removes the named file or empty directory.
	Remove(name string) error

	// RemoveAll removes path and any children it contains.
	// A missing path is not an error.
	RemoveAll(path string) error

	// Rename renames (moves) oldpath to newpath.
	// Local backends rename atomically; object-store backends implement this
	// as copy+delete, which is not atomic and may be expensive.
	Rename(oldpath, newpath string) error
}

// WalkFS defines directory tree traversal.
type WalkFS interface {
	// Walk walks the tree rooted at root in lexical order, calling walkFn
	// for each file or directory, including root. Symbolic links are not
	// followed.
	Walk(root string, walkFn fs.WalkDirFunc) error
}

// ChrootFS creates scoped filesystem views.
type ChrootFS interface {
	// Chroot returns a filesystem rooted at dir. Operations on the returned
	// FS cannot reach outside dir, which guards the explorer against path
	// traversal out of a mount.
	Chroot(dir string) (FS, error)
}

// File is an open handle that supports both reading and writing.
// Every backend's file implements fs.File, so handles interoperate with
// stdlib consumers.
type File interface {
	fs.File
	io.Writer

	// Name returns the name the file was opened with.
	Name() string
}

// Optional File capabilities (discover with type assertions):
//
//   - io.Seeker
//   - io.ReaderAt  (remote backend serves these via HTTP range requests)
//   - io.WriterAt
//   - Truncater
//   - Syncer
//   - fs.ReadDirFile

// Truncater changes the size of an open file.
type Truncater interface {
	// Truncate changes the size of the file without moving the I/O offset.
	Truncate(size int64) error
}

// Syncer flushes file contents to stable storage.
type Syncer interface {
	// Sync commits the current contents of the file to stable storage.
	Sync() error
}

// MetadataFS defines metadata operations. Remote backends typically do not
// implement it; check with a type assertion:
//
//	if mfs, ok := fsys.(vfs.MetadataFS); ok {
//	    info, err := mfs.Lstat(name)
//	}
type MetadataFS interface {
	// Lstat returns file info without following symbolic links.
	Lstat(name string) (fs.FileInfo, error)

	// Chmod changes the mode of the named file.
	Chmod(name string, mode fs.FileMode) error

	// Chtimes changes the access and modification times of the named file.
	Chtimes(name string, atime, mtime time.Time) error
}

// SymlinkFS defines symbolic link operations (local backend only).
type SymlinkFS interface {
	// Symlink creates newname as a symbolic link to oldname.
	// oldname is stored as-is; broken links are valid and visible via Lstat.
	Symlink(oldname, newname string) error

	// Readlink returns the destination of the named symbolic link.
	Readlink(name string) (string, error)
}

// TempFS defines temporary file and directory creation.
type TempFS interface {
	// TempFile creates a new temporary file in dir, open for reading and
	// writing. A "*" in pattern is replaced by a random string. The caller
	// removes the file when done.
	TempFile(dir, pattern string) (File, error)

	// TempDir creates a new temporary directory in dir and returns its path.
	// The caller removes the directory when done.
	TempDir(dir, pattern string) (string, error)
}
