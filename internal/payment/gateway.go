package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vanshika/orders/backend/internal/domain"
	"github.com/vanshika/orders/backend/internal/gateway"
)

// GatewayProcessor forwards payments to an external provider.
type GatewayProcessor struct {
	Method    string
	transport gateway.Transport
}

// NewGatewayProcessor returns a processor that posts payments for method
// through transport.
func NewGatewayProcessor(method string, transport gateway.Transport) *GatewayProcessor {
	return &GatewayProcessor{Method: method, transport: transport}
}

type gatewayPayment struct {
	PaymentMethod string  `json:"paymentMethod"`
	Payment       Details `json:"payment"`
}

// Pay implements Processor.
func (p *GatewayProcessor) Pay(ctx context.Context, details Details) error {
	resp, err := p.transport.Send(ctx, gatewayPayment{PaymentMethod: p.Method, Payment: details})
	if err != nil {
		var statusErr *gateway.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusPaymentRequired {
			return fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, p.Method)
		}
		return fmt.Errorf("%w: %v", domain.ErrPaymentGatewayUnavailable, err)
	}

	if code, ok := resp["code"].(float64); ok && int(code) == http.StatusPaymentRequired {
		return fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, p.Method)
	}
	if msg, ok := resp["message"].(map[string]any); ok {
		if approved, ok := msg["approved"].(bool); ok && !approved {
			return fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, p.Method)
		}
	}
	return nil
}
