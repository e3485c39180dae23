package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tendant/site-content/pkg/sitecontent"
)

// Do sends a request to the server and returns the status and body
func Do(t *testing.T, method, rawURL, contentType string, body []byte) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, rawURL, bytes.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// StoreContent posts a content document via the API. An empty key is left
// out of the body so the default document is written.
func StoreContent(t *testing.T, serverURL, key string, data any) int {
	t.Helper()

	payload := map[string]any{"data": data}
	if key != "" {
		payload["key"] = key
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	status, _ := Do(t, http.MethodPost, serverURL+"/api"+sitecontent.ContentPath, "application/json", body)
	return status
}

// GetContent fetches a content document via the API. An empty key asks for
// the default document.
func GetContent(t *testing.T, serverURL, key string) (int, []byte) {
	t.Helper()

	target := serverURL + "/api" + sitecontent.ContentPath
	if key != "" {
		target += "?" + url.Values{sitecontent.ParamKey: {key}}.Encode()
	}
	return Do(t, http.MethodGet, target, "", nil)
}

// GetUploadURL requests a presigned upload URL via the API
func GetUploadURL(t *testing.T, serverURL, fileName, fileType string) sitecontent.UploadURLResponse {
	t.Helper()

	query := url.Values{sitecontent.ParamFileName: {fileName}}
	if fileType != "" {
		query.Set(sitecontent.ParamFileType, fileType)
	}

	status, body := Do(t, http.MethodGet, serverURL+"/api"+sitecontent.UploadURLPath+"?"+query.Encode(), "", nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var resp sitecontent.UploadURLResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

// ListMedia lists uploaded media via the API
func ListMedia(t *testing.T, serverURL string) []sitecontent.MediaItem {
	t.Helper()

	status, body := Do(t, http.MethodGet, serverURL+"/api"+sitecontent.MediaListPath, "", nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var items []sitecontent.MediaItem
	require.NoError(t, json.Unmarshal(body, &items))
	return items
}

// DeleteMedia deletes an uploaded media object via the API
func DeleteMedia(t *testing.T, serverURL, key string) (int, []byte) {
	t.Helper()

	target := serverURL + "/api" + sitecontent.MediaPath + "?" + url.Values{sitecontent.ParamKey: {key}}.Encode()
	return Do(t, http.MethodDelete, target, "", nil)
}
