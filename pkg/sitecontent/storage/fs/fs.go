package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/presigned"
)

const tempPattern = ".put-*"

var _ sitecontent.BlobStore = (*Backend)(nil)

// Backend is a filesystem implementation of the sitecontent.BlobStore interface
type Backend struct {
	baseDir   string
	urlPrefix string
	signer    *presigned.Signer
}

// Config options for the filesystem backend
type Config struct {
	BaseDir   string            // Base directory for storing files
	URLPrefix string            // Optional URL prefix for upload URLs
	Signer    *presigned.Signer // Optional signer; upload URLs are unsigned without one
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
		signer:    config.Signer,
	}, nil
}

// resolve maps key to a path under the base directory
func (b *Backend) resolve(key string) (string, error) {
	path := filepath.Join(b.baseDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(b.baseDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", sitecontent.ErrInvalidKey
	}
	return path, nil
}

// Get opens the file stored at key
func (b *Backend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, sitecontent.ErrObjectNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	// A directory is only a key prefix, never an object
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, sitecontent.ErrObjectNotFound
	}

	return file, nil
}

// Put writes key through a temporary file so readers never see a partial object
func (b *Backend) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	path, err := b.resolve(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

// PresignPut returns an upload URL under the configured prefix. With a
// signer the URL carries an HMAC signature bound to the content type.
func (b *Backend) PresignPut(ctx context.Context, key string, contentType string, expires time.Duration) (string, error) {
	if b.urlPrefix == "" {
		return "", sitecontent.ErrPresignNotSupported
	}

	if b.signer.IsEnabled() {
		params, err := b.signer.Sign(http.MethodPut, key, contentType, expires)
		if err != nil {
			return "", &sitecontent.StorageError{Op: "presign", Key: key, Err: err}
		}
		return fmt.Sprintf("%s/%s?%s", b.urlPrefix, key, params.Encode()), nil
	}

	params := url.Values{}
	params.Set("contentType", contentType)
	params.Set("expires", time.Now().Add(expires).UTC().Format(time.RFC3339))
	return fmt.Sprintf("%s/%s?%s", b.urlPrefix, key, params.Encode()), nil
}

// List walks the base directory and returns files whose key begins with prefix
func (b *Backend) List(ctx context.Context, prefix string) ([]sitecontent.ObjectInfo, error) {
	var infos []sitecontent.ObjectInfo

	err := filepath.WalkDir(b.baseDir, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if matched, _ := filepath.Match(tempPattern, d.Name()); matched {
			return nil
		}

		rel, err := filepath.Rel(b.baseDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, sitecontent.ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return infos, nil
}

// Delete removes the file at key
func (b *Backend) Delete(ctx context.Context, key string) error {
	path, err := b.resolve(key)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if errors.Is(err, iofs.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
