package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/noh-rs/nohrs/vfs"
	"github.com/noh-rs/nohrs/vfs/s3/internal/s3err"
)

// writeFile is a write-mode object handle. Small writes accumulate in a
// buffer and upload on Close; once the buffer would exceed the multipart
// threshold the handle transitions to a pipe feeding a background upload.
type writeFile struct {
	fs   *S3FS
	key  string
	name string
	mode int

	buffer       *bytes.Buffer
	pipeW        *io.PipeWriter
	putRes       chan error
	bytesWritten int64
	closed       bool
}

func newWriteFile(mfs *S3FS, key, name string, flag int) *writeFile {
	return &writeFile{
		fs:     mfs,
		key:    key,
		name:   name,
		mode:   flag,
		buffer: new(bytes.Buffer),
	}
}

func (f *writeFile) Read(_ []byte) (int, error) {
	return 0, s3err.PathError("read", f.name, fs.ErrInvalid)
}

func (f *writeFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, s3err.PathError("write", f.name, fs.ErrClosed)
	}

	if f.pipeW != nil {
		n, err := f.pipeW.Write(p)
		f.bytesWritten += int64(n)
		if err != nil {
			return n, s3err.PathError("write", f.name, err)
		}
		return n, nil
	}

	threshold := f.fs.multipartThreshold
	if threshold <= 0 {
		threshold = 5 * 1024 * 1024
	}

	if int64(f.buffer.Len()+len(p)) <= threshold {
		n, err := f.buffer.Write(p)
		f.bytesWritten += int64(n)
		return n, err
	}

	return f.transitionToStreaming(p)
}

// transitionToStreaming flushes the buffer into a pipe read by a background
// PutObject and routes subsequent writes through it.
func (f *writeFile) transitionToStreaming(p []byte) (int, error) {
	pr, pw := io.Pipe()
	f.pipeW = pw
	f.putRes = make(chan error, 1)

	go func() {
		_, err := f.fs.client.PutObject(
			context.Background(),
			f.fs.bucket,
			f.key,
			pr,
			-1,
			minio.PutObjectOptions{ContentType: "application/octet-stream"},
		)
		_ = pr.Close()
		f.putRes <- s3err.Translate(err)
		close(f.putRes)
	}()

	if f.buffer.Len() > 0 {
		if _, err := f.pipeW.Write(f.buffer.Bytes()); err != nil {
			return 0, s3err.PathError("write", f.name, err)
		}
		f.buffer = nil
	}

	n, err := f.pipeW.Write(p)
	f.bytesWritten += int64(n)
	if err != nil {
		return n, s3err.PathError("write", f.name, err)
	}
	return n, nil
}

func (f *writeFile) Stat() (fs.FileInfo, error) {
	return newFileInfo(path.Base(f.name), f.bytesWritten, time.Now(), 0644), nil
}

// Close finalizes the upload. For buffered handles this performs the
// PutObject; for streaming handles it closes the pipe and waits for the
// background upload to finish.
func (f *writeFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.pipeW != nil {
		_ = f.pipeW.Close()
		if err := <-f.putRes; err != nil {
			return s3err.PathError("close", f.name, err)
		}
		return nil
	}

	if f.buffer != nil {
		return f.upload(context.Background())
	}
	return nil
}

// Sync uploads the buffered contents. Streaming handles are already
// uploading in the background, so Sync is a no-op for them.
func (f *writeFile) Sync() error {
	if f.pipeW != nil || f.buffer == nil {
		return nil
	}
	return f.upload(context.Background())
}

func (f *writeFile) upload(ctx context.Context) error {
	_, err := f.fs.client.PutObject(
		ctx,
		f.fs.bucket,
		f.key,
		bytes.NewReader(f.buffer.Bytes()),
		int64(f.buffer.Len()),
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)
	if err != nil {
		return s3err.PathError("close", f.name, s3err.Translate(err))
	}
	return nil
}

func (f *writeFile) Name() string {
	return f.name
}

// streamingFile is a read-mode handle that streams the object instead of
// buffering it. Seek reopens the stream with a range request; ReadAt issues
// an independent range request so the stream position is untouched.
type streamingFile struct {
	fs     *S3FS
	key    string
	name   string
	obj    *minio.Object
	info   minio.ObjectInfo
	offset int64
	closed bool
}

func newStreamingFile(ctx context.Context, mfs *S3FS, key, name string) (*streamingFile, error) {
	info, err := mfs.client.StatObject(ctx, mfs.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, s3err.PathError("open", name, s3err.Translate(err))
	}

	obj, err := mfs.client.GetObject(ctx, mfs.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s3err.PathError("open", name, s3err.Translate(err))
	}

	return &streamingFile{
		fs:   mfs,
		key:  key,
		name: name,
		obj:  obj,
		info: info,
	}, nil
}

func (f *streamingFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, s3err.PathError("read", f.name, fs.ErrClosed)
	}
	n, err := f.obj.Read(p)
	f.offset += int64(n)

	// Defer EOF until a read returns no data.
	if n > 0 && errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

func (f *streamingFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.obj.Close()
}

func (f *streamingFile) Stat() (fs.FileInfo, error) {
	return newFileInfo(path.Base(f.name), f.info.Size, f.info.LastModified, 0644), nil
}

func (f *streamingFile) Name() string {
	return f.name
}

func (f *streamingFile) Write(_ []byte) (int, error) {
	return 0, s3err.PathError("write", f.name, fs.ErrInvalid)
}

// Seek repositions the stream by reopening the object with a range request.
func (f *streamingFile) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, s3err.PathError("seek", f.name, fs.ErrClosed)
	}

	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = f.offset + offset
	case io.SeekEnd:
		newOffset = f.info.Size + offset
	default:
		return 0, s3err.PathError("seek", f.name, fs.ErrInvalid)
	}

	if newOffset < 0 {
		return 0, s3err.PathError("seek", f.name, fs.ErrInvalid)
	}
	if newOffset == f.offset {
		return newOffset, nil
	}

	_ = f.obj.Close()

	opts := minio.GetObjectOptions{}
	if newOffset > 0 {
		if err := opts.SetRange(newOffset, 0); err != nil {
			return 0, s3err.PathError("seek", f.name, err)
		}
	}

	obj, err := f.fs.client.GetObject(context.Background(), f.fs.bucket, f.key, opts)
	if err != nil {
		return 0, s3err.PathError("seek", f.name, s3err.Translate(err))
	}

	f.obj = obj
	f.offset = newOffset
	return newOffset, nil
}

// ReadAt reads len(p) bytes starting at off using a dedicated range
// request, leaving the main stream position unchanged.
func (f *streamingFile) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, s3err.PathError("readat", f.name, fs.ErrClosed)
	}
	if off < 0 {
		return 0, s3err.PathError("readat", f.name, fs.ErrInvalid)
	}

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, off+int64(len(p))-1); err != nil {
		return 0, s3err.PathError("readat", f.name, err)
	}

	obj, err := f.fs.client.GetObject(context.Background(), f.fs.bucket, f.key, opts)
	if err != nil {
		return 0, s3err.PathError("readat", f.name, s3err.Translate(err))
	}
	defer func() {
		_ = obj.Close()
	}()

	return io.ReadFull(obj, p)
}

// Compile-time interface checks.
var (
	_ vfs.File   = (*writeFile)(nil)
	_ vfs.Syncer = (*writeFile)(nil)

	_ vfs.File    = (*streamingFile)(nil)
	_ io.Seeker   = (*streamingFile)(nil)
	_ io.ReaderAt = (*streamingFile)(nil)
)
