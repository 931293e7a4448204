package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/orders/backend/internal/domain"
)

type processorFunc func(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error)

func (f processorFunc) Process(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error) {
	return f(ctx, req)
}

func newTestHandler(fn processorFunc) *handler {
	return &handler{logger: slog.New(slog.NewTextHandler(io.Discard, nil)), processor: fn}
}

func completed(req domain.TransactionRequest) *domain.Transaction {
	tx := domain.NewTransaction(req, 77, "user", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	_ = tx.BeginPayment()
	_ = tx.CompletePayment(tx.StartTime.Add(time.Second))
	return tx
}

func TestHandleRequest_Success(t *testing.T) {
	var got domain.TransactionRequest
	h := newTestHandler(func(_ context.Context, req domain.TransactionRequest) (*domain.Transaction, error) {
		got = req
		return completed(req), nil
	})

	resp, err := h.handleRequest(context.Background(), events.APIGatewayProxyRequest{
		Body: `{"order":{"cost":1},"paymentMethod":"paytm","payment":{}}`,
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "paytm", got.PaymentMethod)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.EqualValues(t, 77, body["transactionID"])
}

func TestHandleRequest_Base64Body(t *testing.T) {
	h := newTestHandler(func(_ context.Context, req domain.TransactionRequest) (*domain.Transaction, error) {
		return completed(req), nil
	})

	raw := `{"order":{},"paymentMethod":"paytm","payment":{}}`
	resp, err := h.handleRequest(context.Background(), events.APIGatewayProxyRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(raw)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestHandleRequest_BadRequest(t *testing.T) {
	called := false
	h := newTestHandler(func(context.Context, domain.TransactionRequest) (*domain.Transaction, error) {
		called = true
		return nil, nil
	})

	resp, err := h.handleRequest(context.Background(), events.APIGatewayProxyRequest{Body: `{"order":{}}`})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Bad Request"}`, resp.Body)
	assert.False(t, called)
}

func TestHandleRequest_ProcessingError(t *testing.T) {
	h := newTestHandler(func(context.Context, domain.TransactionRequest) (*domain.Transaction, error) {
		return nil, errors.Join(domain.ErrFraudCheckUnavailable, errors.New("timeout"))
	})

	resp, err := h.handleRequest(context.Background(), events.APIGatewayProxyRequest{
		Body: `{"order":{},"paymentMethod":"paytm","payment":{}}`,
	})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Something Bad Happened"}`, resp.Body)
}

func TestHandleRequest_DetachesFromInvocationContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var workflowErr error
	h := newTestHandler(func(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error) {
		workflowErr = ctx.Err()
		return completed(req), nil
	})

	resp, err := h.handleRequest(ctx, events.APIGatewayProxyRequest{
		Body: `{"order":{},"paymentMethod":"paytm","payment":{}}`,
	})
	require.NoError(t, err)
	assert.NoError(t, workflowErr)
	assert.Equal(t, 200, resp.StatusCode)
}
