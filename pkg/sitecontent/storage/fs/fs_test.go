package fs

import (
	"context"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/presigned"
)

func newTestBackend(t *testing.T, urlPrefix string) (*Backend, string) {
	dir := t.TempDir()
	backend, err := New(Config{BaseDir: dir, URLPrefix: urlPrefix})
	require.NoError(t, err)
	return backend, dir
}

func readAll(t *testing.T, backend *Backend, key string) string {
	reader, err := backend.Get(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	return string(data)
}

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base directory is required")
}

func TestBackend_PutGetOverwrite(t *testing.T) {
	backend, dir := newTestBackend(t, "")
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "pages/home.json", strings.NewReader(`{"v":1}`), "application/json"))
	require.NoError(t, backend.Put(ctx, "pages/home.json", strings.NewReader(`{"v":2}`), "application/json"))

	assert.Equal(t, `{"v":2}`, readAll(t, backend, "pages/home.json"))

	entries, err := os.ReadDir(filepath.Join(dir, "pages"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestBackend_GetMissing(t *testing.T) {
	backend, _ := newTestBackend(t, "")

	_, err := backend.Get(context.Background(), "missing.json")
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
}

func TestBackend_RejectsEscapingKeys(t *testing.T) {
	backend, _ := newTestBackend(t, "")
	ctx := context.Background()

	_, err := backend.Get(ctx, "../outside.json")
	assert.ErrorIs(t, err, sitecontent.ErrInvalidKey)

	err = backend.Put(ctx, "a/../../outside.json", strings.NewReader("{}"), "")
	assert.ErrorIs(t, err, sitecontent.ErrInvalidKey)

	err = backend.Delete(ctx, "")
	assert.ErrorIs(t, err, sitecontent.ErrInvalidKey)
}

func TestBackend_List(t *testing.T) {
	backend, dir := newTestBackend(t, "")
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "uploads/a.png", strings.NewReader("aaaa"), "image/png"))
	require.NoError(t, backend.Put(ctx, "uploads/nested/b.png", strings.NewReader("bb"), "image/png"))
	require.NoError(t, backend.Put(ctx, "site-content.json", strings.NewReader("{}"), "application/json"))

	modified := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "uploads", "a.png"), modified, modified))

	infos, err := backend.List(ctx, "uploads/")
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byKey := map[string]sitecontent.ObjectInfo{}
	for _, info := range infos {
		byKey[info.Key] = info
	}
	assert.Equal(t, int64(4), byKey["uploads/a.png"].Size)
	assert.True(t, modified.Equal(byKey["uploads/a.png"].LastModified))
	assert.Equal(t, int64(2), byKey["uploads/nested/b.png"].Size)
}

func TestBackend_GetDirectoryKey(t *testing.T) {
	backend, dir := newTestBackend(t, "")
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "docs/a.json", strings.NewReader(`{"a":1}`), "application/json"))

	_, err := backend.Get(ctx, "docs")
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "empty"), 0755))
	require.NoError(t, backend.Delete(ctx, "empty"))
	info, err := os.Stat(filepath.Join(dir, "empty"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, backend.Delete(ctx, "docs"))
	assert.Equal(t, `{"a":1}`, readAll(t, backend, "docs/a.json"))
}

func TestBackend_Delete(t *testing.T) {
	backend, _ := newTestBackend(t, "")
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "uploads/a.png", strings.NewReader("a"), "image/png"))
	require.NoError(t, backend.Delete(ctx, "uploads/a.png"))
	require.NoError(t, backend.Delete(ctx, "uploads/a.png"))

	_, err := backend.Get(ctx, "uploads/a.png")
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
}

func TestBackend_PresignPut(t *testing.T) {
	backend, _ := newTestBackend(t, "")
	_, err := backend.PresignPut(context.Background(), "uploads/a.png", "image/png", time.Hour)
	assert.ErrorIs(t, err, sitecontent.ErrPresignNotSupported)

	backend, _ = newTestBackend(t, "http://localhost:8081/files/")
	url, err := backend.PresignPut(context.Background(), "uploads/a.png", "image/png", time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8081/files/uploads/a.png?contentType=image%2Fpng&expires="), url)
}

func TestBackend_PresignPutSigned(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	signer := presigned.New(
		presigned.WithSecretKey("test-secret"),
		presigned.WithClock(func() time.Time { return now }),
	)
	backend, err := New(Config{
		BaseDir:   t.TempDir(),
		URLPrefix: "http://localhost:8080/upload",
		Signer:    signer,
	})
	require.NoError(t, err)

	raw, err := backend.PresignPut(context.Background(), "uploads/a.png", "image/png", time.Hour)
	require.NoError(t, err)

	parsed, err := neturl.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/upload/uploads/a.png", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "1714568400", query.Get(presigned.ParamExpires))
	expiresAt := now.Add(time.Hour).Unix()
	assert.NoError(t, signer.Validate(http.MethodPut, "uploads/a.png", "image/png", query.Get(presigned.ParamSignature), expiresAt))
	assert.ErrorIs(t, signer.Validate(http.MethodPut, "uploads/a.png", "image/jpeg", query.Get(presigned.ParamSignature), expiresAt), presigned.ErrInvalidSignature)
}
