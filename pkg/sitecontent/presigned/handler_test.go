package presigned_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/presigned"
	"github.com/tendant/site-content/pkg/sitecontent/storage/memory"
)

type brokenStore struct {
	*memory.Backend
}

func (brokenStore) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	return errors.New("disk full")
}

func setupUploadTest(t *testing.T, store sitecontent.BlobStore, signer *presigned.Signer) *httptest.Server {
	r := chi.NewRouter()
	r.Mount("/upload", presigned.NewUploadHandler(store, signer, nil).Routes())
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func put(t *testing.T, url, contentType, body string) *http.Response {
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readObject(t *testing.T, store sitecontent.BlobStore, key string) string {
	reader, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	return string(data)
}

func TestUploadHandler_SignedUpload(t *testing.T) {
	store := memory.New()
	signer := presigned.New(presigned.WithSecretKey("test-secret"))
	server := setupUploadTest(t, store, signer)

	params, err := signer.Sign(http.MethodPut, "uploads/photo.png", "image/png", time.Hour)
	require.NoError(t, err)

	resp := put(t, server.URL+"/upload/uploads/photo.png?"+params.Encode(), "image/png", "png-bytes")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png-bytes", readObject(t, store, "uploads/photo.png"))

	contentType, ok := store.ContentType("uploads/photo.png")
	require.True(t, ok)
	assert.Equal(t, "image/png", contentType)
}

func TestUploadHandler_RejectsBadSignatures(t *testing.T) {
	store := memory.New()
	signer := presigned.New(presigned.WithSecretKey("test-secret"))
	server := setupUploadTest(t, store, signer)

	params, err := signer.Sign(http.MethodPut, "uploads/photo.png", "image/png", time.Hour)
	require.NoError(t, err)

	t.Run("Missing", func(t *testing.T) {
		resp := put(t, server.URL+"/upload/uploads/photo.png", "image/png", "x")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("WrongContentType", func(t *testing.T) {
		resp := put(t, server.URL+"/upload/uploads/photo.png?"+params.Encode(), "text/html", "x")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("WrongKey", func(t *testing.T) {
		resp := put(t, server.URL+"/upload/uploads/other.png?"+params.Encode(), "image/png", "x")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	_, err = store.Get(context.Background(), "uploads/photo.png")
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
	_, err = store.Get(context.Background(), "uploads/other.png")
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)
}

func TestUploadHandler_RejectsKeysOutsideUploads(t *testing.T) {
	store := memory.New()
	server := setupUploadTest(t, store, nil)

	resp := put(t, server.URL+"/upload/site-content.json", "application/json", "{}")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Invalid upload key"}`, string(body))
}

func TestUploadHandler_UnsignedWhenDisabled(t *testing.T) {
	store := memory.New()
	server := setupUploadTest(t, store, nil)

	resp := put(t, server.URL+"/upload/uploads/a.bin", "", "raw")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	contentType, ok := store.ContentType("uploads/a.bin")
	require.True(t, ok)
	assert.Equal(t, sitecontent.DefaultFileType, contentType)
}

func TestUploadHandler_StoreFailure(t *testing.T) {
	server := setupUploadTest(t, brokenStore{memory.New()}, nil)

	resp := put(t, server.URL+"/upload/uploads/a.png", "image/png", "x")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestUploadHandler_OnlyPut(t *testing.T) {
	server := setupUploadTest(t, memory.New(), nil)

	resp, err := http.Post(server.URL+"/upload/uploads/a.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
