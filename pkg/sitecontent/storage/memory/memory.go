package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tendant/site-content/pkg/sitecontent"
)

type object struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

var _ sitecontent.BlobStore = (*Backend)(nil)

// Backend is an in-memory implementation of the sitecontent.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
	now     func() time.Time
}

// Option configures an in-memory backend
type Option func(*Backend)

// WithClock sets the clock used to stamp last-modified times
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

// New creates a new in-memory storage backend
func New(options ...Option) *Backend {
	b := &Backend{
		objects: make(map[string]object),
		now:     time.Now,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// Get returns the object at key
func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, sitecontent.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Put stores the object at key, replacing any previous value
func (b *Backend) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = object{
		data:         data,
		contentType:  contentType,
		lastModified: b.now(),
	}
	return nil
}

// PresignPut returns a memory:// URL describing the permitted write. Nothing
// serves it; it exists so local runs exercise the full upload-url flow.
func (b *Backend) PresignPut(ctx context.Context, key string, contentType string, expires time.Duration) (string, error) {
	params := url.Values{}
	params.Set("contentType", contentType)
	params.Set("expires", b.now().Add(expires).UTC().Format(time.RFC3339))
	return "memory:///" + key + "?" + params.Encode(), nil
}

// List returns all objects under prefix, ordered by key
func (b *Backend) List(ctx context.Context, prefix string) ([]sitecontent.ObjectInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var infos []sitecontent.ObjectInfo
	for key, obj := range b.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		infos = append(infos, sitecontent.ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.lastModified,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Delete removes the object at key
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, key)
	return nil
}

// ContentType returns the content type recorded for key, for tests and
// diagnostics
func (b *Backend) ContentType(key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	return obj.contentType, exists
}
