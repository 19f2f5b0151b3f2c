// Package s3err translates MinIO SDK errors into the stdlib fs error
// vocabulary so callers can use errors.Is across all backends.
package s3err

import (
	"fmt"
	"io/fs"

	"github.com/minio/minio-go/v7"
)

// Translate maps S3 error codes to fs sentinels. Unmapped errors are
// wrapped with an "s3:" prefix for context.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fs.ErrNotExist
	case "AccessDenied":
		return fs.ErrPermission
	}

	return fmt.Errorf("s3: %w", err)
}

// PathError wraps err in an *fs.PathError. Returns nil for nil err.
func PathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// PathErrorf builds an *fs.PathError with a formatted cause.
func PathErrorf(op, path, format string, args ...any) error {
	return &fs.PathError{Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}
