package sitecontent

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response messages
const (
	MsgInvalidKey       = "Invalid key format"
	MsgInvalidBody      = "Invalid request body"
	MsgContentNotFound  = "Content not found"
	MsgContentUpdated   = "Content updated successfully"
	MsgInvalidFileName  = "Invalid or missing fileName"
	MsgListFailed       = "Failed to list media objects"
	MsgInvalidDeleteKey = "Invalid key for deletion"
	MsgMediaDeleted     = "Media deleted successfully"
	MsgStorageFailed    = "Storage operation failed"
	MsgInternalError    = "Internal Server Error"
	MsgNotFound         = "Not Found"
)

// CORS header values sent with every response
const (
	CORSAllowOrigin  = "*"
	CORSAllowHeaders = "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token"
	CORSAllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
)

// ResponseHeaders returns the fixed header set attached to every response.
func ResponseHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  CORSAllowOrigin,
		"Access-Control-Allow-Headers": CORSAllowHeaders,
		"Access-Control-Allow-Methods": CORSAllowMethods,
		"Content-Type":                 ContentMimeType,
	}
}

// rawResponse passes body through unmodified.
func rawResponse(status int, body string) Response {
	return Response{
		StatusCode: status,
		Headers:    ResponseHeaders(),
		Body:       body,
	}
}

// jsonResponse serializes v as the response body. HTML escaping is off so
// presigned URLs keep their literal '&'.
func jsonResponse(status int, v any) Response {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
		return rawResponse(http.StatusInternalServerError, `{"error":"`+MsgInternalError+`"}`)
	}
	return rawResponse(status, string(bytes.TrimRight(buf.Bytes(), "\n")))
}

func errorResponse(status int, message string) Response {
	return jsonResponse(status, ErrorResponse{Error: message})
}

func messageResponse(message string) Response {
	return jsonResponse(http.StatusOK, MessageResponse{Message: message})
}
