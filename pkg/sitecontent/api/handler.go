package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/site-content/pkg/sitecontent"
)

// MaxBodySize bounds request bodies; it matches the API Gateway payload limit.
const MaxBodySize = 6 << 20

// Dispatcher handles a single request descriptor
type Dispatcher interface {
	Handle(ctx context.Context, req sitecontent.Request) sitecontent.Response
}

var _ Dispatcher = (*sitecontent.Handler)(nil)

// Handler serves a Dispatcher over net/http
type Handler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(dispatcher Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Routes returns a router that forwards every path and method to the
// dispatcher, which owns route matching and the not-found fallback.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(h.logger))

	r.HandleFunc("/*", h.ServeHTTP)

	return r
}

// ServeHTTP converts r into a sitecontent.Request and writes the response
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, sitecontent.ErrorResponse{Error: "Request body too large"})
			return
		}
		h.logger.Error("Failed to read request body", "error", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, sitecontent.ErrorResponse{Error: sitecontent.MsgInvalidBody})
		return
	}

	req := sitecontent.Request{
		Method: r.Method,
		Path:   routePath(r),
		Query:  flattenQuery(r),
		Body:   string(body),
	}

	WriteResponse(w, h.dispatcher.Handle(r.Context(), req))
}

// WriteResponse writes resp's headers, status and body to w
func WriteResponse(w http.ResponseWriter, resp sitecontent.Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}

// routePath returns the path relative to where the router is mounted
func routePath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && len(rctx.URLParams.Keys) > 0 {
		return "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	}
	return r.URL.Path
}

// flattenQuery keeps the first value of each query parameter
func flattenQuery(r *http.Request) map[string]string {
	values := r.URL.Query()
	if len(values) == 0 {
		return nil
	}
	query := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}
	return query
}
