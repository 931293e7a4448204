// Package fraud decides whether a transaction should be treated as fraudulent.
package fraud

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/vanshika/orders/backend/internal/domain"
	"github.com/vanshika/orders/backend/internal/gateway"
)

// Checker classifies a transaction. An error means no verdict could be
// reached and wraps domain.ErrFraudCheckUnavailable.
type Checker interface {
	IsFraud(ctx context.Context, tx *domain.Transaction) (bool, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, tx *domain.Transaction) (bool, error)

// IsFraud implements Checker.
func (f CheckerFunc) IsFraud(ctx context.Context, tx *domain.Transaction) (bool, error) {
	return f(ctx, tx)
}

// DefaultRate is the fraud probability used when RandomChecker.Rate is unset.
const DefaultRate = 0.5

// RandomChecker is an in-process stand-in for a fraud service.
type RandomChecker struct {
	Rate     float64
	MinDelay time.Duration
	MaxDelay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomChecker seeds a checker. A zero seed uses the current time.
func NewRandomChecker(rate float64, minDelay, maxDelay time.Duration, seed int64) *RandomChecker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomChecker{
		Rate:     rate,
		MinDelay: minDelay,
		MaxDelay: maxDelay,
		rnd:      rand.New(rand.NewSource(seed)),
	}
}

// IsFraud implements Checker.
func (c *RandomChecker) IsFraud(ctx context.Context, _ *domain.Transaction) (bool, error) {
	delay, roll := c.draw()
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, fmt.Errorf("%w: %v", domain.ErrFraudCheckUnavailable, ctx.Err())
		case <-timer.C:
		}
	}

	rate := c.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	return roll < rate, nil
}

func (c *RandomChecker) draw() (time.Duration, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	delay := c.MinDelay
	if c.MaxDelay > c.MinDelay {
		delay += time.Duration(c.rnd.Int63n(int64(c.MaxDelay-c.MinDelay) + 1))
	}
	return delay, c.rnd.Float64()
}

// Static returns a checker that always answers verdict.
func Static(verdict bool) Checker {
	return CheckerFunc(func(context.Context, *domain.Transaction) (bool, error) {
		return verdict, nil
	})
}

// ExternalChecker asks a remote fraud service for a verdict. The service
// receives the transaction snapshot and answers
// {"code":200,"message":{"isFraud":bool}}.
type ExternalChecker struct {
	transport gateway.Transport
}

// NewExternalChecker wraps transport.
func NewExternalChecker(transport gateway.Transport) *ExternalChecker {
	return &ExternalChecker{transport: transport}
}

// IsFraud implements Checker.
func (c *ExternalChecker) IsFraud(ctx context.Context, tx *domain.Transaction) (bool, error) {
	resp, err := c.transport.Send(ctx, tx.Snapshot())
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrFraudCheckUnavailable, err)
	}
	return parseVerdict(resp)
}

func parseVerdict(resp map[string]any) (bool, error) {
	if resp == nil {
		return false, fmt.Errorf("%w: empty response", domain.ErrFraudCheckUnavailable)
	}
	if raw, ok := resp["code"]; ok {
		code, isNum := raw.(float64)
		if !isNum || int(code) != 200 {
			return false, fmt.Errorf("%w: response code %v", domain.ErrFraudCheckUnavailable, raw)
		}
	}
	msg, ok := resp["message"].(map[string]any)
	if !ok {
		return false, fmt.Errorf("%w: response has no message object", domain.ErrFraudCheckUnavailable)
	}
	verdict, ok := msg["isFraud"].(bool)
	if !ok {
		return false, fmt.Errorf("%w: isFraud missing or not a boolean", domain.ErrFraudCheckUnavailable)
	}
	return verdict, nil
}
