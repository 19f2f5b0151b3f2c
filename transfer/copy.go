package transfer

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/noh-rs/nohrs/errors"
	"github.com/noh-rs/nohrs/vfs"
)

// writeFlags is the flag set every backend supports, including the remote
// one, which rejects read-write handles.
const writeFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC

// copyConcurrency bounds parallel per-file copies to a remote destination.
const copyConcurrency = 10

// execute copies the job's source tree (or single file) into the destination.
// Policy decisions and retries happen per file, so a failed object does not
// discard work already done.
func (q *Queue) execute(ctx context.Context, rec *jobRecord) error {
	srcFS, srcPath, err := q.mounts.Resolve(rec.job.Src)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "resolve source")
	}
	dstFS, dstPath, err := q.mounts.Resolve(rec.job.Dst)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "resolve destination")
	}
	if srcPath == "" {
		srcPath = "."
	}

	if info, err := srcFS.Stat(srcPath); err == nil && !info.IsDir() {
		// Single file. When the destination names a directory, copy into it.
		target := dstPath
		if target == "" {
			target = path.Base(srcPath)
		} else if dstInfo, err := dstFS.Stat(target); err == nil && dstInfo.IsDir() {
			target = path.Join(target, path.Base(srcPath))
		}
		return q.copyFile(ctx, rec, srcFS, srcPath, dstFS, target)
	}

	// Remote destinations pay per-object latency, so fan the copies out.
	// Local and memory destinations copy sequentially.
	g, gctx := errgroup.WithContext(ctx)
	if dstFS.Type() == vfs.FSTypeRemote {
		g.SetLimit(copyConcurrency)
	} else {
		g.SetLimit(1)
	}

	err = srcFS.Walk(srcPath, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if gctx.Err() != nil {
			return gctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		rel := relativeTo(srcPath, filePath)
		g.Go(func() error {
			return q.copyFile(gctx, rec, srcFS, filePath, dstFS, path.Join(dstPath, rel))
		})
		return nil
	})
	if werr := g.Wait(); err == nil {
		err = werr
	}
	return err
}

// relativeTo strips the walk root from a walked path.
func relativeTo(root, filePath string) string {
	if root == "." || root == "" {
		return filePath
	}
	rel := strings.TrimPrefix(filePath, root)
	return strings.TrimPrefix(rel, "/")
}

// copyFile applies the conflict policy, then copies one file with retries.
func (q *Queue) copyFile(ctx context.Context, rec *jobRecord, srcFS vfs.FS, srcPath string, dstFS vfs.FS, dstPath string) error {
	srcInfo, err := srcFS.Stat(srcPath)
	if err != nil {
		return q.wrapBackend(err, srcFS, "stat source")
	}

	if dstInfo, err := dstFS.Stat(dstPath); err == nil {
		switch rec.job.Policy {
		case PolicySkip:
			q.recordSkip(rec)
			return nil
		case PolicyNewer:
			if !srcInfo.ModTime().After(dstInfo.ModTime()) {
				q.recordSkip(rec)
				return nil
			}
		case PolicyOverwrite:
		}
	}

	attempts := q.retries + 1
	for attempt := 1; ; attempt++ {
		n, err := copyOnce(srcFS, srcPath, dstFS, dstPath, srcInfo.Mode().Perm())
		if err == nil {
			q.recordCopy(rec, n)
			return nil
		}

		wrapped := q.wrapBackend(err, dstFS, "copy "+srcPath)
		if attempt >= attempts || !errors.IsRetryable(wrapped) {
			return wrapped
		}

		q.logger.Warn("copy retrying", "job", rec.job.ID, "path", srcPath, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(q.backoff):
		}
	}
}

// copyOnce streams one file from src to dst and reports the bytes written.
func copyOnce(srcFS vfs.FS, srcPath string, dstFS vfs.FS, dstPath string, perm fs.FileMode) (int64, error) {
	if dir := path.Dir(dstPath); dir != "." && dir != "" {
		if err := dstFS.MkdirAll(dir, 0755); err != nil {
			return 0, err
		}
	}

	src, err := srcFS.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	dst, err := dstFS.OpenFile(dstPath, writeFlags, perm)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// wrapBackend classifies a copy failure. Remote backends fail transiently
// often enough that their errors are marked retryable; everything else is a
// permanent local I/O failure.
func (q *Queue) wrapBackend(err error, fsys vfs.FS, message string) error {
	if fsys.Type() == vfs.FSTypeRemote {
		return errors.Wrap(err, errors.CodeRemoteFailed, message)
	}
	return errors.Wrap(err, errors.CodeIO, message)
}

func (q *Queue) recordCopy(rec *jobRecord, n int64) {
	q.mu.Lock()
	rec.job.FilesCopied++
	rec.job.BytesCopied += n
	q.mu.Unlock()
}

func (q *Queue) recordSkip(rec *jobRecord) {
	q.mu.Lock()
	rec.job.FilesSkipped++
	q.mu.Unlock()
}
