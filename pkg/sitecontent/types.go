package sitecontent

import (
	"time"
)

// Route paths
const (
	ContentPath   = "/content"
	UploadURLPath = "/media/upload-url"
	MediaListPath = "/media/list"
	MediaPath     = "/media"
)

// Defaults applied when a request omits a value
const (
	// DefaultContentKey is the canonical site document
	DefaultContentKey = "site-content.json"

	// DefaultFileType is used for upload URLs when fileType is omitted
	DefaultFileType = "application/octet-stream"

	// UploadPrefix namespaces every media object and bounds deletes
	UploadPrefix = "uploads/"

	// UploadURLExpiry is the lifetime of a presigned upload URL
	UploadURLExpiry = time.Hour

	// ListingContentType is reported for every listed media object; resolving
	// the real type would cost one HEAD request per object.
	ListingContentType = "image/*"

	// ContentMimeType is the content type of stored site documents
	ContentMimeType = "application/json"
)

// Query parameter names
const (
	ParamKey      = "key"
	ParamFileName = "fileName"
	ParamFileType = "fileType"
)

// Request is an inbound request descriptor produced by a hosting adapter.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   string
}

// QueryParam returns the named query parameter, or "" when absent.
func (r Request) QueryParam(name string) string {
	if r.Query == nil {
		return ""
	}
	return r.Query[name]
}

// Response is the outcome of handling a Request.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// ObjectInfo describes a stored object as returned by BlobStore.List
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// MediaItem is a media listing entry
type MediaItem struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"lastModified"`
	ContentType  string `json:"contentType"`
}

// StoreContentRequest describes the shape of a POST /content body for
// clients. The handler reads the fields individually, so an absent key and
// a non-string key are told apart.
type StoreContentRequest struct {
	Key  string `json:"key"`
	Data any    `json:"data"`
}

// UploadURLResponse is returned by GET /media/upload-url
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges a successful write or delete
type MessageResponse struct {
	Message string `json:"message"`
}
