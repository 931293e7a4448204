package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPOptions configures the broker transport.
type AMQPOptions struct {
	URL          string
	Exchange     string
	ExchangeType string
	RoutingKey   string
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPTransport publishes JSON messages to a RabbitMQ exchange. It has no
// response, so Send always returns a nil map on success.
type AMQPTransport struct {
	mu         sync.Mutex
	channel    publisher
	conn       *amqp.Connection
	exchange   string
	routingKey string
}

// DialAMQP connects to the broker and declares a durable exchange.
func DialAMQP(opts AMQPOptions) (*AMQPTransport, error) {
	if opts.URL == "" {
		return nil, ErrMissingEndpoint
	}
	if opts.ExchangeType == "" {
		opts.ExchangeType = amqp.ExchangeTopic
	}

	conn, err := amqp.Dial(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(opts.Exchange, opts.ExchangeType, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", opts.Exchange, err)
	}

	t := newAMQPTransport(ch, opts.Exchange, opts.RoutingKey)
	t.conn = conn
	return t, nil
}

func newAMQPTransport(ch publisher, exchange, routingKey string) *AMQPTransport {
	return &AMQPTransport{channel: ch, exchange: exchange, routingKey: routingKey}
}

// Send implements Transport.
func (t *AMQPTransport) Send(ctx context.Context, msg any) (map[string]any, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	// amqp channels must not be published to concurrently.
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.channel.PublishWithContext(ctx, t.exchange, t.routingKey, false, false, publishing); err != nil {
		return nil, fmt.Errorf("publish to %s/%s: %w", t.exchange, t.routingKey, err)
	}
	return nil, nil
}

// Close releases the channel and connection.
func (t *AMQPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var errs []error
	if t.channel != nil {
		errs = append(errs, t.channel.Close())
	}
	if t.conn != nil {
		errs = append(errs, t.conn.Close())
	}
	return errors.Join(errs...)
}
