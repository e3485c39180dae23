package sitecontent

import (
	"context"
	"io"
	"time"
)

// BlobStore is the storage contract the Handler depends on. Each call is
// independently atomic at the object level; there is no cross-call
// consistency guarantee.
type BlobStore interface {
	// Get opens the object at key. Returns ErrObjectNotFound when absent.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Put writes the object at key, replacing any existing value.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// PresignPut returns a time-limited URL permitting one direct write to key.
	PresignPut(ctx context.Context, key string, contentType string, expires time.Duration) (string, error)

	// List returns every object whose key begins with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
