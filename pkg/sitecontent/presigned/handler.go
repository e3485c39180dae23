package presigned

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/site-content/pkg/sitecontent"
)

// Upload error messages
const (
	MsgInvalidUploadKey = "Invalid upload key"
	MsgUnauthorized     = "Missing upload signature"
	MsgForbidden        = "Invalid or expired upload signature"
	MsgUploadFailed     = "Upload failed"
)

// UploadHandler accepts PUT requests to signed upload URLs and writes the
// body into a blob store
type UploadHandler struct {
	store  sitecontent.BlobStore
	signer *Signer
	logger *slog.Logger
}

// NewUploadHandler creates a new upload handler. A nil or keyless signer
// accepts every upload.
func NewUploadHandler(store sitecontent.BlobStore, signer *Signer, logger *slog.Logger) *UploadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandler{
		store:  store,
		signer: signer,
		logger: logger,
	}
}

// Routes serves PUT /{key...}
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Put("/*", h.HandleUpload)
	return r
}

// HandleUpload handles one upload. Success is an empty 200, as S3 answers.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if !sitecontent.IsUploadKey(key) {
		writeError(w, r, http.StatusBadRequest, MsgInvalidUploadKey)
		return
	}

	if err := h.signer.ValidateRequest(r, key); err != nil {
		h.logger.Warn("Upload signature rejected", "key", key, "err", err)
		if IsMissingCredentials(err) {
			writeError(w, r, http.StatusUnauthorized, MsgUnauthorized)
		} else {
			writeError(w, r, http.StatusForbidden, MsgForbidden)
		}
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = sitecontent.DefaultFileType
	}

	if err := h.store.Put(r.Context(), key, r.Body, contentType); err != nil {
		h.logger.Error("Upload failed", "key", key, "err", err)
		writeError(w, r, http.StatusInternalServerError, MsgUploadFailed)
		return
	}

	h.logger.Info("Upload stored", "key", key, "content_type", contentType)
	w.WriteHeader(http.StatusOK)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, sitecontent.ErrorResponse{Error: message})
}
