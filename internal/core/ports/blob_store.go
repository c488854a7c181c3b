package ports

import (
	"context"
	"io"
)

// BlobStore keeps binary assets outside the record store and hands back a stable reference.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
