package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPTransport_PostsJSONAndDecodesResponse(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"message":{"isFraud":false}}`))
	}))
	defer srv.Close()

	transport, err := NewHTTPTransport(discardLogger(), srv.Client(), srv.URL)
	require.NoError(t, err)

	resp, err := transport.Send(context.Background(), map[string]any{"transactionID": 7})
	require.NoError(t, err)

	assert.EqualValues(t, 7, received["transactionID"])
	assert.EqualValues(t, 200, resp["code"])
}

func TestHTTPTransport_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	transport, err := NewHTTPTransport(discardLogger(), nil, srv.URL)
	require.NoError(t, err)

	resp, err := transport.Send(context.Background(), map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestHTTPTransport_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"message":"declined"}`))
	}))
	defer srv.Close()

	transport, err := NewHTTPTransport(discardLogger(), srv.Client(), srv.URL)
	require.NoError(t, err)

	body, err := transport.Send(context.Background(), struct{}{})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusPaymentRequired, statusErr.Code)
	assert.Equal(t, "declined", body["message"])
}

func TestHTTPTransport_NonSuccessPlainTextBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Payment Required", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	transport, err := NewHTTPTransport(discardLogger(), srv.Client(), srv.URL)
	require.NoError(t, err)

	body, err := transport.Send(context.Background(), struct{}{})
	require.Error(t, err)
	assert.Nil(t, body)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusPaymentRequired, statusErr.Code)
	assert.Nil(t, statusErr.Body)
}

func TestHTTPTransport_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	transport, err := NewHTTPTransport(discardLogger(), srv.Client(), srv.URL)
	require.NoError(t, err)

	_, err = transport.Send(context.Background(), struct{}{})
	require.Error(t, err)
}

func TestNewHTTPTransport_RequiresURL(t *testing.T) {
	_, err := NewHTTPTransport(discardLogger(), nil, "")
	assert.ErrorIs(t, err, ErrMissingEndpoint)
}

type recordingPublisher struct {
	exchange string
	key      string
	msgs     []amqp.Publishing
	err      error
	closed   bool
}

func (p *recordingPublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.exchange = exchange
	p.key = key
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func TestAMQPTransport_PublishesPersistentJSON(t *testing.T) {
	pub := &recordingPublisher{}
	transport := newAMQPTransport(pub, "order-alerts", "alerts.fraud")

	resp, err := transport.Send(context.Background(), map[string]any{"alertTypes": []string{"sms"}})
	require.NoError(t, err)
	assert.Nil(t, resp)

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, "order-alerts", pub.exchange)
	assert.Equal(t, "alerts.fraud", pub.key)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.NotEmpty(t, msg.MessageId)
	assert.JSONEq(t, `{"alertTypes":["sms"]}`, string(msg.Body))

	require.NoError(t, transport.Close())
	assert.True(t, pub.closed)
}

func TestAMQPTransport_PublishError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("channel closed")}
	transport := newAMQPTransport(pub, "x", "y")

	_, err := transport.Send(context.Background(), "payload")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
}
