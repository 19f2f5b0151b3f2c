package billy

import (
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"

	"github.com/noh-rs/nohrs/vfs"
)

// File wraps billy.File to satisfy vfs.File. The filename is stored because
// billy backends differ in what File.Name() returns, and the filesystem
// reference backs Stat, which billy files lack.
type File struct {
	file billy.File
	fs   billy.Basic
	name string
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	return f.file.Read(p)
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

// Close closes the file.
func (f *File) Close() error {
	return f.file.Close()
}

// Stat returns metadata for the file by asking the owning filesystem.
func (f *File) Stat() (fs.FileInfo, error) {
	return f.fs.Stat(f.name)
}

// Name returns the name the file was opened with.
func (f *File) Name() string {
	return f.name
}

// Seek implements io.Seeker.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.file.Seek(offset, whence)
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.file.ReadAt(p, off)
}

// Truncate implements vfs.Truncater.
func (f *File) Truncate(size int64) error {
	return f.file.Truncate(size)
}

// Sync implements vfs.Syncer. Backends without sync (memfs) no-op.
func (f *File) Sync() error {
	if syncer, ok := f.file.(interface{ Sync() error }); ok {
		return syncer.Sync()
	}
	return nil
}

// Compile-time interface checks.
var (
	_ vfs.File      = (*File)(nil)
	_ fs.File       = (*File)(nil)
	_ io.Seeker     = (*File)(nil)
	_ io.ReaderAt   = (*File)(nil)
	_ vfs.Truncater = (*File)(nil)
	_ vfs.Syncer    = (*File)(nil)
)
