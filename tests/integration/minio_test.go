package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/storage/s3"
)

// newMinIOBackend connects to a local MinIO server. Start one with Docker:
// docker run -p 9000:9000 -p 9001:9001 minio/minio server /data --console-address ":9001"
func newMinIOBackend(t *testing.T, bucket string) *s3.Backend {
	if os.Getenv("MINIO_INTEGRATION_TEST") == "" {
		t.Skip("Skipping MinIO integration test. Set MINIO_INTEGRATION_TEST=1 to run.")
	}

	backend, err := s3.New(context.Background(), s3.Config{
		Region:                 "us-east-1",
		Bucket:                 bucket + "-" + time.Now().Format("20060102150405"),
		AccessKeyID:            "minioadmin",
		SecretAccessKey:        "minioadmin",
		Endpoint:               "http://localhost:9000",
		UsePathStyle:           true,
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err)
	return backend
}

func TestS3Backend_ContentLifecycle(t *testing.T) {
	backend := newMinIOBackend(t, "content")
	ctx := context.Background()

	_, err := backend.Get(ctx, sitecontent.DefaultContentKey)
	assert.ErrorIs(t, err, sitecontent.ErrObjectNotFound)

	require.NoError(t, backend.Put(ctx, sitecontent.DefaultContentKey, strings.NewReader(`{"v":1}`), sitecontent.ContentMimeType))
	require.NoError(t, backend.Put(ctx, sitecontent.DefaultContentKey, strings.NewReader(`{"v":2}`), sitecontent.ContentMimeType))

	reader, err := backend.Get(ctx, sitecontent.DefaultContentKey)
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))
}

func TestHandler_MediaFlowWithMinIO(t *testing.T) {
	media := newMinIOBackend(t, "media")
	content := newMinIOBackend(t, "content")
	ctx := context.Background()

	handler, err := sitecontent.New(sitecontent.WithContentStore(content), sitecontent.WithMediaStore(media))
	require.NoError(t, err)

	resp := handler.Handle(ctx, sitecontent.Request{
		Method: http.MethodGet,
		Path:   sitecontent.UploadURLPath,
		Query:  map[string]string{"fileName": "photo.png", "fileType": "image/png"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var upload sitecontent.UploadURLResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &upload))

	put, err := http.NewRequestWithContext(ctx, http.MethodPut, upload.UploadURL, bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	put.Header.Set("Content-Type", "image/png")
	putResp, err := http.DefaultClient.Do(put)
	require.NoError(t, err)
	putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	resp = handler.Handle(ctx, sitecontent.Request{Method: http.MethodGet, Path: sitecontent.MediaListPath})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []sitecontent.MediaItem
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "uploads/photo.png", items[0].Key)
	assert.Equal(t, int64(len("png-bytes")), items[0].Size)

	resp = handler.Handle(ctx, sitecontent.Request{
		Method: http.MethodDelete,
		Path:   sitecontent.MediaPath,
		Query:  map[string]string{"key": upload.Key},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	infos, err := media.List(ctx, sitecontent.UploadPrefix)
	require.NoError(t, err)
	assert.Empty(t, infos)
}
