// Package payment resolves and invokes payment processors by method tag.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/vanshika/orders/backend/internal/domain"
)

// Details is the opaque payment payload supplied with a transaction request.
type Details = json.RawMessage

// Processor charges a payment. Failures wrap domain.ErrPaymentDeclined or
// domain.ErrPaymentGatewayUnavailable.
type Processor interface {
	Pay(ctx context.Context, details Details) error
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, details Details) error

// Pay implements Processor.
func (f ProcessorFunc) Pay(ctx context.Context, details Details) error {
	return f(ctx, details)
}

// SimulatedProcessor stands in for a real payment provider. It waits a random
// delay and always succeeds unless the context ends first.
type SimulatedProcessor struct {
	Name     string
	MinDelay time.Duration
	MaxDelay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulatedProcessor builds a named simulated processor.
func NewSimulatedProcessor(name string, minDelay, maxDelay time.Duration) *SimulatedProcessor {
	return &SimulatedProcessor{
		Name:     name,
		MinDelay: minDelay,
		MaxDelay: maxDelay,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Pay implements Processor.
func (p *SimulatedProcessor) Pay(ctx context.Context, _ Details) error {
	delay := p.delay()
	if delay <= 0 {
		return unavailable(ctx.Err())
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return unavailable(ctx.Err())
	case <-timer.C:
		return nil
	}
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrPaymentGatewayUnavailable, err)
}

func (p *SimulatedProcessor) delay() time.Duration {
	if p.MaxDelay <= p.MinDelay {
		return p.MinDelay
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rnd == nil {
		p.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return p.MinDelay + time.Duration(p.rnd.Int63n(int64(p.MaxDelay-p.MinDelay)+1))
}
