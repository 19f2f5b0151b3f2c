// Package cache is a local content cache for remote reads. Blobs are keyed
// by content identity (backend, bucket, object key, version) hashed with
// SHA-256, stored sharded on any vfs.FS, and bounded by size with least
// recently used eviction. CachingFS wraps a remote filesystem so reads
// consult the cache before paying the network round trip.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/noh-rs/nohrs/errors"
	"github.com/noh-rs/nohrs/vfs"
)

// DefaultMaxBytes bounds the cache when no limit is configured.
const DefaultMaxBytes = 512 << 20

const (
	blobDir = "blobs"
	tmpDir  = ".tmp"
)

// Key derives a cache key from identity parts. Parts are hashed with a
// separator so ("ab", "c") and ("a", "bc") produce different keys.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cache is a size-bounded blob store. Safe for concurrent use.
type Cache struct {
	fsys     vfs.FS
	maxBytes int64
	logger   *slog.Logger
	metrics  *Metrics

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	total   int64
}

type blobEntry struct {
	key  string
	size int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxBytes sets the size bound. Values <= 0 keep the default.
func WithMaxBytes(n int64) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithRegisterer registers the cache metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Cache) {
		c.metrics = NewMetrics(reg)
	}
}

// New opens a cache on fsys, reusing any blobs a previous run left behind.
// Recovered blobs enter the eviction order by modification time so the
// least recently written go first.
func New(fsys vfs.FS, opts ...Option) (*Cache, error) {
	c := &Cache{
		fsys:     fsys,
		maxBytes: DefaultMaxBytes,
		logger:   slog.New(slog.DiscardHandler),
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}

	if err := fsys.MkdirAll(blobDir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "create blob directory")
	}
	if err := fsys.MkdirAll(tmpDir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "create temp directory")
	}
	if err := c.recover(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.evictLocked()
	c.metrics.StoredBytes.Set(float64(c.total))
	c.mu.Unlock()
	return c, nil
}

// recover rebuilds the in-memory index from blobs already on disk.
func (c *Cache) recover() error {
	type recovered struct {
		blobEntry
		modUnix int64
	}
	var found []recovered

	err := c.fsys.Walk(blobDir, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		found = append(found, recovered{
			blobEntry: blobEntry{key: path.Base(filePath), size: info.Size()},
			modUnix:   info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeIO, "scan blob directory")
	}

	sort.Slice(found, func(i, j int) bool { return found[i].modUnix < found[j].modUnix })
	for _, r := range found {
		c.entries[r.key] = c.order.PushFront(&blobEntry{key: r.key, size: r.size})
		c.total += r.size
	}
	return nil
}

// blobPath shards blobs by the first two hex characters of the key.
func blobPath(key string) string {
	if len(key) < 2 {
		return path.Join(blobDir, key)
	}
	return path.Join(blobDir, key[:2], key)
}

// Get returns the cached blob for key, or ok=false on a miss.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.metrics.Misses.Inc()
		return nil, false
	}

	data, err := c.fsys.ReadFile(blobPath(key))
	if err != nil {
		// Blob vanished or is unreadable; drop it from the index.
		c.logger.Warn("cached blob unreadable", "key", key, "error", err)
		c.removeLocked(elem)
		c.metrics.Misses.Inc()
		return nil, false
	}

	c.order.MoveToFront(elem)
	c.metrics.Hits.Inc()
	return data, true
}

// Put stores a blob under key, evicting old blobs if the size bound is
// exceeded. The write is atomic: a temp file is renamed into place, so
// readers never observe partial blobs.
func (c *Cache) Put(key string, data []byte) error {
	tmpPath := path.Join(tmpDir, uuid.NewString())
	if err := c.fsys.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.Wrap(err, errors.CodeIO, "write blob")
	}

	dst := blobPath(key)
	if err := c.fsys.MkdirAll(path.Dir(dst), 0755); err != nil {
		return errors.Wrap(err, errors.CodeIO, "create blob shard")
	}
	if err := c.fsys.Rename(tmpPath, dst); err != nil {
		_ = c.fsys.Remove(tmpPath)
		return errors.Wrap(err, errors.CodeIO, "store blob")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*blobEntry)
		c.total += int64(len(data)) - entry.size
		entry.size = int64(len(data))
		c.order.MoveToFront(elem)
	} else {
		c.entries[key] = c.order.PushFront(&blobEntry{key: key, size: int64(len(data))})
		c.total += int64(len(data))
	}

	c.evictLocked()
	c.metrics.StoredBytes.Set(float64(c.total))
	return nil
}

// Delete removes the blob for key. Missing keys are not an error.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil
	}
	c.removeLocked(elem)
	c.metrics.StoredBytes.Set(float64(c.total))
	return nil
}

// Len returns the number of cached blobs.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Bytes returns the total size of cached blobs.
func (c *Cache) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// evictLocked drops least recently used blobs until the total fits the
// bound. Caller holds c.mu.
func (c *Cache) evictLocked() {
	for c.total > c.maxBytes {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		entry := elem.Value.(*blobEntry)
		c.logger.Debug("evicting blob", "key", entry.key, "size", entry.size)
		c.removeLocked(elem)
		c.metrics.Evictions.Inc()
	}
}

// removeLocked deletes one entry and its blob file. Caller holds c.mu.
func (c *Cache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*blobEntry)
	c.order.Remove(elem)
	delete(c.entries, entry.key)
	c.total -= entry.size

	if err := c.fsys.Remove(blobPath(entry.key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("remove blob", "key", entry.key, "error", err)
	}
}
