package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/wolfman30/venue-booking-agent/cmd/mainconfig"
	appconfig "github.com/wolfman30/venue-booking-agent/internal/config"
	"github.com/wolfman30/venue-booking-agent/internal/conversation"
	"github.com/wolfman30/venue-booking-agent/internal/http/middleware"
	"github.com/wolfman30/venue-booking-agent/pkg/logging"
)

type fulfiller interface {
	Handle(ctx context.Context, req conversation.WebhookRequest) (conversation.WebhookResponse, error)
}

type app struct {
	dispatcher fulfiller
	authToken  string
	logger     *logging.Logger
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	services, err := mainconfig.BuildServices(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}

	a := &app{
		dispatcher: services.Dispatcher,
		authToken:  cfg.WebhookAuthToken,
		logger:     logger,
	}
	lambda.Start(a.handle)
}

func (a *app) handle(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" || path == "/_health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}

	if path != "/webhook" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}

	if method != http.MethodPost {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusMethodNotAllowed}, nil
	}

	if !middleware.CredentialMatches(headerValue(evt.Headers, "authorization"), a.authToken) {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusUnauthorized,
			Headers:    map[string]string{"www-authenticate": `Basic realm="webhook"`},
			Body:       "unauthorized",
		}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	var req conversation.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		a.logger.Error("failed to decode webhook request", "error", err)
		return jsonResponse(http.StatusBadRequest, conversation.WebhookResponse{FulfillmentText: conversation.InternalErrorReply}), nil
	}

	resp, err := a.dispatcher.Handle(ctx, req)
	if errors.Is(err, conversation.ErrInternal) {
		return jsonResponse(http.StatusInternalServerError, resp), nil
	}
	return jsonResponse(http.StatusOK, resp), nil
}

func jsonResponse(status int, payload conversation.WebhookResponse) events.APIGatewayV2HTTPResponse {
	raw, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(raw),
	}
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(evt.Body)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
