// Package alert notifies downstream consumers about fraudulent transactions.
package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vanshika/orders/backend/internal/domain"
	"github.com/vanshika/orders/backend/internal/gateway"
)

// Sender delivers a fraud alert. Failures wrap domain.ErrAlertDeliveryFailed.
type Sender interface {
	Send(ctx context.Context, tx *domain.Transaction) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, tx *domain.Transaction) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, tx *domain.Transaction) error {
	return f(ctx, tx)
}

// DefaultAlertTypes lists the channels requested from the alert service.
var DefaultAlertTypes = []string{"sms", "email"}

// Message is the envelope published for every alert.
type Message struct {
	AlertTypes []string        `json:"alertTypes"`
	Message    domain.Snapshot `json:"message"`
}

// NewMessage builds the alert envelope for tx.
func NewMessage(tx *domain.Transaction, alertTypes []string) Message {
	if len(alertTypes) == 0 {
		alertTypes = DefaultAlertTypes
	}
	return Message{AlertTypes: alertTypes, Message: tx.Snapshot()}
}

// LogSender records alerts in the service log only.
type LogSender struct {
	logger     *slog.Logger
	alertTypes []string
}

// NewLogSender returns a sender that writes alerts to logger. Empty
// alertTypes use DefaultAlertTypes.
func NewLogSender(logger *slog.Logger, alertTypes ...string) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger, alertTypes: alertTypes}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, tx *domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAlertDeliveryFailed, err)
	}
	msg := NewMessage(tx, s.alertTypes)
	s.logger.Warn("fraud alert",
		"transactionId", tx.ID,
		"userId", tx.UserID,
		"paymentMethod", tx.PaymentMethod,
		"alertTypes", msg.AlertTypes,
	)
	return nil
}

// GatewaySender publishes the alert envelope through a transport, either an
// HTTP alert service or a message broker.
type GatewaySender struct {
	transport  gateway.Transport
	alertTypes []string
}

// NewGatewaySender wraps transport. Empty alertTypes use DefaultAlertTypes.
func NewGatewaySender(transport gateway.Transport, alertTypes ...string) *GatewaySender {
	return &GatewaySender{transport: transport, alertTypes: alertTypes}
}

// Send implements Sender. The response body, if any, is ignored.
func (s *GatewaySender) Send(ctx context.Context, tx *domain.Transaction) error {
	if _, err := s.transport.Send(ctx, NewMessage(tx, s.alertTypes)); err != nil {
		return fmt.Errorf("%w: transaction %d: %v", domain.ErrAlertDeliveryFailed, tx.ID, err)
	}
	return nil
}
