package cache

import (
	"bytes"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"time"

	"github.com/noh-rs/nohrs/vfs"
)

// Versioner reports a content version for a file. The remote backend
// implements it with the object ETag, which changes whenever the object is
// rewritten.
type Versioner interface {
	Version(name string) (string, error)
}

// CachingFS wraps a filesystem so whole-file reads are served from a Cache
// when the backend's content version still matches. Writes pass straight
// through; a rewritten file gets a new version, so its old cache entry just
// ages out instead of needing explicit invalidation.
type CachingFS struct {
	vfs.FS

	cache  *Cache
	scope  []string
	logger *slog.Logger
}

// NewCachingFS wraps fsys. The scope parts distinguish this filesystem's
// keys from other mounts sharing the cache, e.g. ("s3", endpoint, bucket).
func NewCachingFS(fsys vfs.FS, c *Cache, scope ...string) *CachingFS {
	return &CachingFS{
		FS:     fsys,
		cache:  c,
		scope:  scope,
		logger: c.logger,
	}
}

var _ vfs.FS = (*CachingFS)(nil)

// version resolves the backend's content version for name. Backends without
// native versions fall back to modification time and size, which catches
// rewrites on local filesystems.
func (c *CachingFS) version(name string) (string, error) {
	if v, ok := c.FS.(Versioner); ok {
		return v.Version(name)
	}
	info, err := c.FS.Stat(name)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(info.ModTime().UnixNano(), 10) + "-" + strconv.FormatInt(info.Size(), 10), nil
}

// key builds the cache key for one file at one version.
func (c *CachingFS) key(name, version string) string {
	parts := make([]string, 0, len(c.scope)+2)
	parts = append(parts, c.scope...)
	parts = append(parts, name, version)
	return Key(parts...)
}

// ReadFile serves from the cache when the backend version matches,
// populating it on a miss. Version lookup failures fall back to an uncached
// read so the cache never turns a reachable file into an error.
func (c *CachingFS) ReadFile(name string) ([]byte, error) {
	ver, err := c.version(name)
	if err != nil {
		return c.FS.ReadFile(name)
	}

	key := c.key(name, ver)
	if data, ok := c.cache.Get(key); ok {
		return data, nil
	}

	data, err := c.FS.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(key, data); err != nil {
		c.logger.Warn("cache populate failed", "name", name, "error", err)
	}
	return data, nil
}

// Open returns a read handle backed by the cached content.
func (c *CachingFS) Open(name string) (fs.File, error) {
	data, err := c.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return &cachedFile{
		Reader: bytes.NewReader(data),
		name:   path.Base(name),
		size:   int64(len(data)),
	}, nil
}

// Chroot scopes both the backend and the cache keys to dir.
func (c *CachingFS) Chroot(dir string) (vfs.FS, error) {
	scoped, err := c.FS.Chroot(dir)
	if err != nil {
		return nil, err
	}
	scope := append(append([]string(nil), c.scope...), dir)
	return NewCachingFS(scoped, c.cache, scope...), nil
}

// cachedFile is a read-only handle over cached bytes.
type cachedFile struct {
	*bytes.Reader
	name string
	size int64
}

func (f *cachedFile) Stat() (fs.FileInfo, error) {
	return cachedInfo{name: f.name, size: f.size}, nil
}

func (f *cachedFile) Close() error { return nil }

type cachedInfo struct {
	name string
	size int64
}

func (i cachedInfo) Name() string       { return i.name }
func (i cachedInfo) Size() int64        { return i.size }
func (i cachedInfo) Mode() fs.FileMode  { return 0444 }
func (i cachedInfo) ModTime() time.Time { return time.Time{} }
func (i cachedInfo) IsDir() bool        { return false }
func (i cachedInfo) Sys() any           { return nil }
