package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/vanshika/orders/backend/internal/app"
	"github.com/vanshika/orders/backend/internal/config"
	"github.com/vanshika/orders/backend/internal/logging"
	"github.com/vanshika/orders/backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging).With("component", "lambda")

	svc, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to assemble service", "error", err)
		_ = svc.Close()
		os.Exit(1)
	}

	h := &handler{logger: logger, processor: svc.Processor}
	lambda.Start(h.handleRequest)
}

type handler struct {
	logger    *slog.Logger
	processor server.TransactionProcessor
}

func (h *handler) handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := []byte(request.Body)
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(request.Body)
		if err != nil {
			return h.respond(400, map[string]string{"message": server.MessageBadRequest})
		}
		body = decoded
	}

	req, err := server.DecodeTransactionRequest(body)
	if err != nil {
		h.logger.Warn("rejected transaction request", "error", err, "requestId", request.RequestContext.RequestID)
		status, payload := server.TransactionResponse(nil, err)
		return h.respond(status, payload)
	}

	// The workflow keeps running past the invocation deadline.
	tx, err := h.processor.Process(context.WithoutCancel(ctx), req)
	if err != nil {
		h.logger.Error("transaction processing failed", "error", err, "requestId", request.RequestContext.RequestID)
	}
	status, payload := server.TransactionResponse(tx, err)
	return h.respond(status, payload)
}

func (h *handler) respond(status int, payload any) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("encode response: %w", err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}
