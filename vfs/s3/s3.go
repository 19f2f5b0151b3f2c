package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	"github.com/noh-rs/nohrs/vfs"
	"github.com/noh-rs/nohrs/vfs/s3/internal/objkey"
	"github.com/noh-rs/nohrs/vfs/s3/internal/s3err"
)

// S3FS implements vfs.FS over a bucket (optionally under a key prefix).
type S3FS struct {
	client             *minio.Client
	bucket             string
	prefix             string
	multipartThreshold int64
	renameConcurrency  int
}

// New creates an S3-backed filesystem from cfg.
func New(cfg Config) (*S3FS, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("create s3 client: %w", err)
		}
	}

	multipartThreshold := cfg.MultipartThreshold
	if multipartThreshold == 0 {
		multipartThreshold = 5 * 1024 * 1024
	}

	renameConcurrency := cfg.RenameConcurrency
	if renameConcurrency == 0 {
		renameConcurrency = 10
	}

	return &S3FS{
		client:             client,
		bucket:             cfg.Bucket,
		prefix:             objkey.CleanPrefix(cfg.Prefix),
		multipartThreshold: multipartThreshold,
		renameConcurrency:  renameConcurrency,
	}, nil
}

// Type reports the backend kind.
func (m *S3FS) Type() vfs.FSType {
	return vfs.FSTypeRemote
}

func (m *S3FS) joinKey(name string) string {
	return objkey.Join(m.prefix, name)
}

// Open opens the named object for reading. The returned handle streams the
// object and supports Seek and ReadAt via HTTP range requests.
func (m *S3FS) Open(name string) (fs.File, error) {
	return newStreamingFile(context.Background(), m, m.joinKey(name), name)
}

// Stat returns object metadata for the named file.
func (m *S3FS) Stat(name string) (fs.FileInfo, error) {
	info, err := m.client.StatObject(context.Background(), m.bucket, m.joinKey(name), minio.StatObjectOptions{})
	if err != nil {
		return nil, s3err.PathError("stat", name, s3err.Translate(err))
	}
	return newFileInfo(path.Base(name), info.Size, info.LastModified, 0644), nil
}

// Version returns the ETag of the named object. Callers use it as a cheap
// change detector for cache keys.
func (m *S3FS) Version(name string) (string, error) {
	info, err := m.client.StatObject(context.Background(), m.bucket, m.joinKey(name), minio.StatObjectOptions{})
	if err != nil {
		return "", s3err.PathError("version", name, s3err.Translate(err))
	}
	return strings.Trim(info.ETag, `"`), nil
}

// ReadDir lists the immediate children of name using a delimiter listing.
// Common prefixes surface as virtual directories.
func (m *S3FS) ReadDir(name string) ([]fs.DirEntry, error) {
	dirKey := objkey.AsDir(m.joinKey(name))

	var entries []fs.DirEntry
	for object := range m.client.ListObjects(context.Background(), m.bucket, minio.ListObjectsOptions{
		Prefix:    dirKey,
		Recursive: false,
	}) {
		if object.Err != nil {
			return nil, s3err.PathError("readdir", name, s3err.Translate(object.Err))
		}
		if object.Key == dirKey {
			continue
		}

		relName := strings.TrimPrefix(object.Key, dirKey)
		isDir := strings.HasSuffix(object.Key, "/")
		if isDir {
			relName = strings.TrimSuffix(relName, "/")
		}
		if relName == "" {
			continue
		}

		entries = append(entries, newDirEntry(relName, isDir, object.Size, object.LastModified))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	return entries, nil
}

// ReadFile reads the whole named object into memory.
func (m *S3FS) ReadFile(name string) ([]byte, error) {
	key := m.joinKey(name)
	ctx := context.Background()

	// Stat first so the buffer is allocated once at the exact size.
	info, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, s3err.PathError("readfile", name, s3err.Translate(err))
	}

	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s3err.PathError("readfile", name, s3err.Translate(err))
	}
	defer func() {
		_ = obj.Close()
	}()

	buf := make([]byte, info.Size)
	if _, err := io.ReadFull(obj, buf); err != nil {
		return nil, s3err.PathError("readfile", name, err)
	}
	return buf, nil
}

// Exists reports whether the named object exists.
func (m *S3FS) Exists(name string) (bool, error) {
	_, err := m.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named object for writing.
func (m *S3FS) Create(name string) (vfs.File, error) {
	return newWriteFile(m, m.joinKey(name), name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC), nil
}

// OpenFile opens the named object. Supported flags are O_RDONLY, O_WRONLY,
// O_CREATE and O_TRUNC; object storage cannot honor O_RDWR, O_APPEND,
// O_EXCL or O_SYNC, and those return ErrUnsupported.
func (m *S3FS) OpenFile(name string, flag int, _ fs.FileMode) (vfs.File, error) {
	if flag&os.O_RDWR != 0 {
		return nil, s3err.PathErrorf("open", name, "%w: O_RDWR", vfs.ErrUnsupported)
	}
	if flag&os.O_APPEND != 0 {
		return nil, s3err.PathErrorf("open", name, "%w: O_APPEND", vfs.ErrUnsupported)
	}
	if flag&os.O_EXCL != 0 {
		return nil, s3err.PathErrorf("open", name, "%w: O_EXCL", vfs.ErrUnsupported)
	}
	if flag&os.O_SYNC != 0 {
		return nil, s3err.PathErrorf("open", name, "%w: O_SYNC", vfs.ErrUnsupported)
	}

	key := m.joinKey(name)
	if flag&(os.O_WRONLY|os.O_CREATE) != 0 {
		return newWriteFile(m, key, name, flag), nil
	}
	return newStreamingFile(context.Background(), m, key, name)
}

// WriteFile writes data to the named object.
func (m *S3FS) WriteFile(name string, data []byte, _ fs.FileMode) error {
	file, err := m.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := file.Write(data); err != nil {
		return s3err.PathError("writefile", name, err)
	}
	if err := file.Close(); err != nil {
		return s3err.PathError("writefile", name, err)
	}
	return nil
}

// Mkdir is a no-op; directories are virtual.
func (m *S3FS) Mkdir(name string, _ fs.FileMode) error {
	_ = m.joinKey(name)
	return nil
}

// MkdirAll is a no-op; directories are virtual.
func (m *S3FS) MkdirAll(name string, _ fs.FileMode) error {
	_ = m.joinKey(name)
	return nil
}

// Remove removes the named object.
func (m *S3FS) Remove(name string) error {
	err := m.client.RemoveObject(context.Background(), m.bucket, m.joinKey(name), minio.RemoveObjectOptions{})
	if err != nil {
		return s3err.PathError("remove", name, s3err.Translate(err))
	}
	return nil
}

// RemoveAll removes every object under the given path using the batch
// delete API. A missing path is not an error.
func (m *S3FS) RemoveAll(name string) error {
	dirKey := objkey.AsDir(m.joinKey(name))
	ctx := context.Background()

	objectsCh := make(chan minio.ObjectInfo, 100)

	var listErr error
	go func() {
		defer close(objectsCh)
		for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
			Prefix:    dirKey,
			Recursive: true,
		}) {
			if object.Err != nil {
				listErr = object.Err
				return
			}
			objectsCh <- object
		}
	}()

	var deleteErrs []error
	for err := range m.client.RemoveObjects(ctx, m.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if err.Err != nil {
			deleteErrs = append(deleteErrs, err.Err)
		}
	}

	if listErr != nil {
		return s3err.PathError("removeall", name, s3err.Translate(listErr))
	}
	if len(deleteErrs) > 0 {
		return s3err.PathError("removeall", name, s3err.Translate(deleteErrs[0]))
	}
	return nil
}

// Rename moves oldpath to newpath via copy+delete.
//
// The operation is NOT atomic. A failure during the copy phase leaves
// partial copies behind; a failure during the delete phase leaves objects
// at both paths. Directory renames copy objects in parallel, bounded by
// the configured rename concurrency, then batch-delete the originals.
func (m *S3FS) Rename(oldpath, newpath string) error {
	oldKey := m.joinKey(oldpath)
	newKey := m.joinKey(newpath)
	ctx := context.Background()

	if _, err := m.Stat(oldpath); err == nil {
		return m.renameObject(oldKey, newKey, oldpath)
	}

	copied, err := m.parallelCopy(ctx, objkey.AsDir(oldKey), objkey.AsDir(newKey))
	if err != nil {
		return s3err.PathError("rename", oldpath, s3err.Translate(err))
	}
	if len(copied) == 0 {
		return s3err.PathError("rename", oldpath, fs.ErrNotExist)
	}

	toDelete := make(chan minio.ObjectInfo, len(copied))
	go func() {
		defer close(toDelete)
		for _, key := range copied {
			toDelete <- minio.ObjectInfo{Key: key}
		}
	}()

	for err := range m.client.RemoveObjects(ctx, m.bucket, toDelete, minio.RemoveObjectsOptions{}) {
		if err.Err != nil {
			return s3err.PathError("rename", oldpath, s3err.Translate(err.Err))
		}
	}
	return nil
}

func (m *S3FS) renameObject(oldKey, newKey, oldpath string) error {
	ctx := context.Background()

	src := minio.CopySrcOptions{Bucket: m.bucket, Object: oldKey}
	dst := minio.CopyDestOptions{Bucket: m.bucket, Object: newKey}

	if _, err := m.client.CopyObject(ctx, dst, src); err != nil {
		return s3err.PathError("rename", oldpath, s3err.Translate(err))
	}
	if err := m.client.RemoveObject(ctx, m.bucket, oldKey, minio.RemoveObjectOptions{}); err != nil {
		return s3err.PathError("rename", oldpath, s3err.Translate(err))
	}
	return nil
}

func (m *S3FS) parallelCopy(ctx context.Context, oldPrefix, newPrefix string) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(m.renameConcurrency)

	var mu sync.Mutex
	var copied []string

	for object := range m.client.ListObjects(egCtx, m.bucket, minio.ListObjectsOptions{
		Prefix:    oldPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return copied, object.Err
		}

		objectKey := object.Key
		eg.Go(func() error {
			newKey := newPrefix + strings.TrimPrefix(objectKey, oldPrefix)

			src := minio.CopySrcOptions{Bucket: m.bucket, Object: objectKey}
			dst := minio.CopyDestOptions{Bucket: m.bucket, Object: newKey}
			if _, err := m.client.CopyObject(egCtx, dst, src); err != nil {
				return fmt.Errorf("copy %s to %s: %w", objectKey, newKey, err)
			}

			mu.Lock()
			copied = append(copied, objectKey)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return copied, fmt.Errorf("parallel copy: %w", err)
	}
	return copied, nil
}

// Walk walks the tree rooted at root, synthesizing entries for virtual
// directories that have no backing object.
func (m *S3FS) Walk(root string, walkFn fs.WalkDirFunc) error {
	rootKey := m.joinKey(root)
	ctx := context.Background()

	if _, err := m.Stat(root); err == nil {
		// Root is a plain object.
		if walkErr := fs.WalkDir(m, root, walkFn); walkErr != nil {
			if errors.Is(walkErr, fs.SkipAll) {
				return nil
			}
			return fmt.Errorf("walk %s: %w", root, walkErr)
		}
		return nil
	}

	// Root must be a virtual directory; confirm at least one object exists
	// under the prefix.
	objectsCh := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    objkey.AsDir(rootKey),
		Recursive: false,
		MaxKeys:   1,
	})

	first, ok := <-objectsCh
	if !ok {
		return s3err.PathError("walk", root, fs.ErrNotExist)
	}
	if first.Err != nil {
		return fmt.Errorf("walk %s: %w", root, s3err.Translate(first.Err))
	}

	if err := m.walkDir(root, rootKey, walkFn); err != nil {
		if errors.Is(err, fs.SkipAll) {
			return nil
		}
		return err
	}
	return nil
}

func (m *S3FS) walkDir(name, key string, walkFn fs.WalkDirFunc) error {
	rootEntry := newDirEntry(path.Base(name), true, 0, time.Time{})
	if err := walkFn(name, rootEntry, nil); err != nil {
		if errors.Is(err, fs.SkipDir) {
			return nil
		}
		return err
	}

	dirKey := objkey.AsDir(key)

	var entries []fs.DirEntry
	for object := range m.client.ListObjects(context.Background(), m.bucket, minio.ListObjectsOptions{
		Prefix:    dirKey,
		Recursive: false,
	}) {
		if object.Err != nil {
			return s3err.Translate(object.Err)
		}
		if object.Key == dirKey {
			continue
		}

		relName := strings.TrimPrefix(object.Key, dirKey)
		isDir := strings.HasSuffix(object.Key, "/")
		if isDir {
			relName = strings.TrimSuffix(relName, "/")
		}
		if relName == "" {
			continue
		}

		entries = append(entries, newDirEntry(relName, isDir, object.Size, object.LastModified))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		childName := path.Join(name, entry.Name())
		childKey := objkey.Child(strings.TrimSuffix(dirKey, "/"), entry.Name())

		if entry.IsDir() {
			if err := m.walkDir(childName, childKey, walkFn); err != nil {
				return err
			}
			continue
		}

		if err := walkFn(childName, entry, nil); err != nil {
			if errors.Is(err, fs.SkipDir) {
				// Skip the remaining entries of this directory.
				return nil
			}
			return err
		}
	}

	return nil
}

// Chroot returns a view of the filesystem scoped under dir by extending
// the key prefix. No existence check is performed; directories are virtual.
func (m *S3FS) Chroot(dir string) (vfs.FS, error) {
	return &S3FS{
		client:             m.client,
		bucket:             m.bucket,
		prefix:             m.joinKey(dir),
		multipartThreshold: m.multipartThreshold,
		renameConcurrency:  m.renameConcurrency,
	}, nil
}

// Compile-time interface check.
var _ vfs.FS = (*S3FS)(nil)
