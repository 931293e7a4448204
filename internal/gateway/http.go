package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 60 * time.Second

// StatusError reports a non-2xx answer from an HTTP service. Body holds the
// decoded JSON payload when the service sent one.
type StatusError struct {
	URL  string
	Code int
	Body map[string]any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.URL, e.Code)
}

// HTTPTransport posts JSON messages to a single endpoint.
type HTTPTransport struct {
	client *http.Client
	url    string
	logger *slog.Logger
}

// NewHTTPTransport builds a transport for url. A nil client gets a default
// client with a 60 second timeout.
func NewHTTPTransport(logger *slog.Logger, client *http.Client, url string) (*HTTPTransport, error) {
	if url == "" {
		return nil, ErrMissingEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPTransport{client: client, url: url, logger: logger}, nil
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, msg any) (map[string]any, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("http transport request failed", "url", t.url, "error", err)
		return nil, fmt.Errorf("post %s: %w", t.url, err)
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Error pages are often not JSON; the status code still decides.
		if err != nil {
			body = nil
		}
		return body, &StatusError{URL: t.url, Code: resp.StatusCode, Body: body}
	}
	if err != nil {
		return nil, fmt.Errorf("decode response from %s: %w", t.url, err)
	}
	return body, nil
}

func decodeBody(r io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body, nil
}
