// Package blob defines the object storage used for uploaded school files
// (signatures, logos, hero images).
package blob

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local filesystem (default, dev)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

var (
	ErrNotFound    = core.NewNotFoundError("file")
	ErrUnsupported = errors.New("blobstore: unsupported operation")
	ErrInvalidKey  = errors.New("blobstore: invalid key")
)

type (
	PutOptions struct {
		ContentType string
		Metadata    map[string]string
	}

	SignedURLOptions struct {
		Method string        // only GET
		Expiry time.Duration // default 15m
	}

	Info struct {
		Key          string            `json:"key"`
		Size         int64             `json:"size"`
		ContentType  string            `json:"contentType,omitempty"`
		ETag         string            `json:"etag,omitempty"`
		Metadata     map[string]string `json:"metadata,omitempty"`
		LastModified time.Time         `json:"lastModified"`
	}

	// Store is a thin S3-like abstraction. Put overwrites an existing key.
	Store interface {
		Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
		Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
		Head(ctx context.Context, key string) (Info, error)
		Delete(ctx context.Context, key string) (bool, error)
		List(ctx context.Context, prefix string) ([]Info, error)
		PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error)
		Driver() Driver
	}
)

// CleanKey rejects empty, absolute and escaping keys and normalizes the rest.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	return key, nil
}

// URLFor returns the public URL of key: under base when set, else under the API's /media route.
func URLFor(base, key string) string {
	if base == "" {
		base = "/media"
	}
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(parts, "/")
}

// DeletePrefix removes every object under prefix and returns how many were deleted.
func DeletePrefix(ctx context.Context, store Store, prefix string) (int, error) {
	infos, err := store.List(ctx, prefix)
	if err != nil {
		return 0, errors.Wrap(err, "listing blobs")
	}
	var n int
	for _, info := range infos {
		ok, err := store.Delete(ctx, info.Key)
		if err != nil {
			return n, errors.Wrapf(err, "deleting blob %s", info.Key)
		}
		if ok {
			n++
		}
	}
	return n, nil
}
