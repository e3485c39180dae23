// Package gateway adapts API Gateway REST proxy events to the site-content
// handler, which is how the handler runs on AWS Lambda.
package gateway

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/tendant/site-content/pkg/sitecontent"
)

// Dispatcher handles a single request descriptor
type Dispatcher interface {
	Handle(ctx context.Context, req sitecontent.Request) sitecontent.Response
}

var _ Dispatcher = (*sitecontent.Handler)(nil)

// Handler converts proxy events for a Dispatcher
type Handler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewHandler creates a new proxy event handler
func NewHandler(dispatcher Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleEvent is the Lambda entrypoint. It never returns an error: every
// failure is already a response.
func (h *Handler) HandleEvent(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.logger.Debug("Event received",
		"request_id", event.RequestContext.RequestID,
		"method", event.HTTPMethod,
		"path", event.Path,
	)

	body := event.Body
	if event.IsBase64Encoded && body != "" {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			h.logger.Error("Failed to decode event body", "error", err)
			resp := sitecontent.Response{
				StatusCode: http.StatusBadRequest,
				Headers:    sitecontent.ResponseHeaders(),
				Body:       `{"error":"` + sitecontent.MsgInvalidBody + `"}`,
			}
			return toProxyResponse(resp), nil
		}
		body = string(decoded)
	}

	resp := h.dispatcher.Handle(ctx, sitecontent.Request{
		Method: event.HTTPMethod,
		Path:   event.Path,
		Query:  event.QueryStringParameters,
		Body:   body,
	})

	h.logger.Info("Event handled",
		"request_id", event.RequestContext.RequestID,
		"method", event.HTTPMethod,
		"path", event.Path,
		"status", resp.StatusCode,
	)
	return toProxyResponse(resp), nil
}

func toProxyResponse(resp sitecontent.Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}
}
