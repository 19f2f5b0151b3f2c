package s3

import (
	"io/fs"
	"time"
)

// fileInfo implements fs.FileInfo for S3 objects.
type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	mode    fs.FileMode
}

func newFileInfo(name string, size int64, modTime time.Time, mode fs.FileMode) *fileInfo {
	return &fileInfo{name: name, size: size, modTime: modTime, mode: mode}
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.mode&fs.ModeDir != 0 }
func (fi *fileInfo) Sys() any           { return nil }

// dirEntry implements fs.DirEntry for objects and virtual directories.
type dirEntry struct {
	name    string
	isDir   bool
	size    int64
	modTime time.Time
}

func newDirEntry(name string, isDir bool, size int64, modTime time.Time) *dirEntry {
	return &dirEntry{name: name, isDir: isDir, size: size, modTime: modTime}
}

func (e *dirEntry) Name() string { return e.name }
func (e *dirEntry) IsDir() bool  { return e.isDir }

func (e *dirEntry) Type() fs.FileMode {
	if e.isDir {
		return fs.ModeDir
	}
	return 0
}

func (e *dirEntry) Info() (fs.FileInfo, error) {
	mode := fs.FileMode(0644)
	if e.isDir {
		mode = fs.ModeDir | 0755
	}
	return newFileInfo(e.name, e.size, e.modTime, mode), nil
}

// Compile-time interface checks.
var (
	_ fs.FileInfo = (*fileInfo)(nil)
	_ fs.DirEntry = (*dirEntry)(nil)
)
