// Package gateway carries JSON messages to external services on behalf of the
// fraud checkers, alert senders and payment processors.
package gateway

import (
	"context"
	"errors"
)

// Transport delivers a message to some external service. Implementations
// return the decoded response body when the protocol has one; fire-and-forget
// transports return a nil map.
type Transport interface {
	Send(ctx context.Context, msg any) (map[string]any, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, msg any) (map[string]any, error)

// Send implements Transport.
func (f TransportFunc) Send(ctx context.Context, msg any) (map[string]any, error) {
	return f(ctx, msg)
}

// ErrMissingEndpoint indicates a transport was configured without a target.
var ErrMissingEndpoint = errors.New("gateway endpoint is required")
