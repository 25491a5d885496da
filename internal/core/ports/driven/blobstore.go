package driven

import (
	"context"
	"time"
)

// BlobStore keeps the original uploaded documents.
type BlobStore interface {
	// Put stores data at path, replacing anything already there.
	Put(ctx context.Context, path string, data []byte, contentType string) error

	// SignedURL returns a URL granting read access to path for ttl.
	// The URL carries its access token after a '?'.
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)

	// Get returns the bytes stored at path.
	// Returns domain.ErrNotFound if nothing is stored there.
	Get(ctx context.Context, path string) ([]byte, error)
}
