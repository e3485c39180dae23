package testutil

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/api"
	"github.com/tendant/site-content/pkg/sitecontent/config"
	"github.com/tendant/site-content/pkg/sitecontent/presigned"
)

// TestSecretKey signs upload URLs issued by the test server
const TestSecretKey = "test-secret"

// TestServer is an httptest server routed like cmd/server over filesystem
// storage with signed upload URLs
type TestServer struct {
	*httptest.Server
	Content sitecontent.BlobStore
	Media   sitecontent.BlobStore
}

// SetupTestServer creates a test server with all routes configured. Upload
// URLs point back at the server's /upload route.
func SetupTestServer(t *testing.T) *TestServer {
	t.Helper()

	r := chi.NewRouter()
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		ContentBucket: "site-content",
		MediaBucket:   "site-media",
		StorageType:   config.StorageFS,
		FS: config.FSConfig{
			BaseDir:            t.TempDir(),
			URLPrefix:          server.URL + "/upload",
			SignatureSecretKey: TestSecretKey,
		},
	}

	content, media, err := cfg.BuildStores(context.Background())
	require.NoError(t, err)

	handler, err := config.NewHandler(content, media, nil)
	require.NoError(t, err)

	r.Mount("/api", api.NewHandler(handler, nil).Routes())
	r.Mount("/upload", presigned.NewUploadHandler(media, cfg.Signer(), nil).Routes())

	return &TestServer{
		Server:  server,
		Content: content,
		Media:   media,
	}
}
