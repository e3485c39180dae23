package sitecontent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"
)

// Handler dispatches requests over the content and media stores. It holds no
// per-request state and is safe for concurrent use if its stores are.
type Handler struct {
	content BlobStore
	media   BlobStore
	logger  *slog.Logger
}

// Option represents a functional option for configuring the handler
type Option func(*Handler)

// WithContentStore sets the store holding JSON site documents
func WithContentStore(store BlobStore) Option {
	return func(h *Handler) {
		h.content = store
	}
}

// WithMediaStore sets the store holding uploaded media
func WithMediaStore(store BlobStore) Option {
	return func(h *Handler) {
		h.media = store
	}
}

// WithLogger sets the logger used for storage diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// New creates a new handler with the given options
func New(options ...Option) (*Handler, error) {
	h := &Handler{}
	for _, option := range options {
		option(h)
	}

	if h.content == nil {
		return nil, errors.New("content store is required")
	}
	if h.media == nil {
		return nil, errors.New("media store is required")
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	return h, nil
}

// Handle performs a single dispatch pass over req. Every failure, including
// a panic in a store, is converted into a Response.
func (h *Handler) Handle(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("Unexpected error", "method", req.Method, "path", req.Path, "panic", fmt.Sprint(rec))
			resp = errorResponse(http.StatusInternalServerError, MsgInternalError)
		}
	}()

	method := strings.ToUpper(req.Method)

	switch {
	case req.Path == ContentPath && method == http.MethodGet:
		return h.getContent(ctx, req)
	case req.Path == ContentPath && method == http.MethodPost:
		return h.storeContent(ctx, req)
	case req.Path == UploadURLPath && method == http.MethodGet:
		return h.getUploadURL(ctx, req)
	case req.Path == MediaListPath && method == http.MethodGet:
		return h.listMedia(ctx)
	case req.Path == MediaPath && method == http.MethodDelete:
		return h.deleteMedia(ctx, req)
	}

	return errorResponse(http.StatusNotFound, MsgNotFound)
}

// getContent returns the raw bytes of a stored document
func (h *Handler) getContent(ctx context.Context, req Request) Response {
	key := req.QueryParam(ParamKey)
	if _, present := req.Query[ParamKey]; !present {
		key = DefaultContentKey
	}
	if !IsSafePath(key) {
		return errorResponse(http.StatusBadRequest, MsgInvalidKey)
	}

	reader, err := h.content.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return errorResponse(http.StatusNotFound, MsgContentNotFound)
		}
		return h.storageFailure("get", key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return h.storageFailure("read", key, err)
	}

	return rawResponse(http.StatusOK, string(data))
}

// storeContent overwrites a document with the request's data payload
func (h *Handler) storeContent(ctx context.Context, req Request) Response {
	key, data, ok := parseStoreContentBody(req.Body)
	if !ok {
		return errorResponse(http.StatusBadRequest, MsgInvalidBody)
	}
	if !IsSafePath(key) {
		return errorResponse(http.StatusBadRequest, MsgInvalidKey)
	}

	if err := h.content.Put(ctx, key, bytes.NewReader(data), ContentMimeType); err != nil {
		return h.storageFailure("put", key, err)
	}

	h.logger.Info("Content updated", "key", key, "size", len(data))
	return messageResponse(MsgContentUpdated)
}

// parseStoreContentBody extracts the key and the compacted data payload. An
// absent key or data falls back to DefaultContentKey and "{}"; a key that is
// present but not a string yields "" so validation rejects it.
func parseStoreContentBody(body string) (string, []byte, bool) {
	if strings.TrimSpace(body) == "" {
		body = "{}"
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil || fields == nil {
		return "", nil, false
	}

	key := DefaultContentKey
	if raw, present := fields["key"]; present {
		key = ""
		_ = json.Unmarshal(raw, &key)
	}

	data := []byte("{}")
	if raw, present := fields["data"]; present {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", nil, false
		}
		data = buf.Bytes()
	}

	return key, data, true
}

// getUploadURL issues a presigned PUT URL under the upload prefix
func (h *Handler) getUploadURL(ctx context.Context, req Request) Response {
	fileName := req.QueryParam(ParamFileName)
	if !IsSafePath(fileName) {
		return errorResponse(http.StatusBadRequest, MsgInvalidFileName)
	}

	fileType := req.QueryParam(ParamFileType)
	if fileType == "" {
		fileType = DefaultFileType
	}

	key := UploadPrefix + fileName
	url, err := h.media.PresignPut(ctx, key, fileType, UploadURLExpiry)
	if err != nil {
		return h.storageFailure("presign", key, err)
	}

	return jsonResponse(http.StatusOK, UploadURLResponse{UploadURL: url, Key: key})
}

// listMedia lists uploads newest first, skipping the folder marker
func (h *Handler) listMedia(ctx context.Context) Response {
	objects, err := h.media.List(ctx, UploadPrefix)
	if err != nil {
		h.logger.Error("Failed to list media objects", "prefix", UploadPrefix, "error", err)
		return errorResponse(http.StatusInternalServerError, MsgListFailed)
	}

	return jsonResponse(http.StatusOK, mediaItems(objects))
}

// mediaItems projects listed objects into listing entries ordered by
// last-modified descending.
func mediaItems(objects []ObjectInfo) []MediaItem {
	kept := make([]ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		if obj.Key == UploadPrefix {
			continue
		}
		kept = append(kept, obj)
	}

	slices.SortStableFunc(kept, func(a, b ObjectInfo) int {
		return b.LastModified.Compare(a.LastModified)
	})

	items := make([]MediaItem, 0, len(kept))
	for _, obj := range kept {
		items = append(items, MediaItem{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified.UTC().Format(time.RFC3339),
			ContentType:  ListingContentType,
		})
	}
	return items
}

// deleteMedia removes an object inside the upload namespace
func (h *Handler) deleteMedia(ctx context.Context, req Request) Response {
	key := req.QueryParam(ParamKey)
	if !IsUploadKey(key) {
		return errorResponse(http.StatusBadRequest, MsgInvalidDeleteKey)
	}

	if err := h.media.Delete(ctx, key); err != nil {
		return h.storageFailure("delete", key, err)
	}

	h.logger.Info("Media deleted", "key", key)
	return messageResponse(MsgMediaDeleted)
}

// storageFailure logs the underlying error and hides it from the caller
func (h *Handler) storageFailure(op, key string, err error) Response {
	h.logger.Error("Storage operation failed", "op", op, "key", key, "error", err)
	return errorResponse(http.StatusInternalServerError, MsgStorageFailed)
}
