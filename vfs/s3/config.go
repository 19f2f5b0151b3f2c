// Package s3 implements vfs.FS over S3-compatible object storage using the
// MinIO SDK. Directories are virtual, reads stream via HTTP range requests,
// and renames are copy+delete.
package s3

import (
	"fmt"

	"github.com/minio/minio-go/v7"
)

// Config holds the connection settings for an S3 mount.
type Config struct {
	// Endpoint is the server address, e.g. "localhost:9000" or
	// "s3.amazonaws.com".
	Endpoint string

	// Bucket is the bucket backing this mount. Required.
	Bucket string

	// AccessKey and SecretKey authenticate the client.
	AccessKey string
	SecretKey string

	// UseSSL enables HTTPS.
	UseSSL bool

	// Prefix namespaces all keys of this mount inside the bucket.
	Prefix string

	// Client overrides the connection settings with a pre-built client.
	// When set, Endpoint/AccessKey/SecretKey are ignored.
	Client *minio.Client

	// MultipartThreshold is the write size at which buffered uploads switch
	// to streaming. Zero means the 5 MiB default.
	MultipartThreshold int64

	// RenameConcurrency bounds parallel copies during directory renames.
	// Zero means 10.
	RenameConcurrency int
}

func (c *Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.Client != nil {
		return nil
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when no client is provided")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("access key is required when no client is provided")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is required when no client is provided")
	}
	return nil
}
