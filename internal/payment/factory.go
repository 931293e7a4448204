package payment

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Method tags understood by the default factory.
const (
	MethodPaytm      = "paytm"
	MethodICICIDebit = "icici-debit"
	MethodAcceptAll  = "accept-all"
)

// Constructor builds a processor for a resolved tag.
type Constructor func() Processor

// Factory maps payment method tags to processor constructors. Unknown tags
// resolve to the fallback constructor.
type Factory struct {
	mu       sync.RWMutex
	byTag    map[string]Constructor
	fallback Constructor
}

// NewFactory returns a factory whose unknown tags resolve to fallback.
func NewFactory(fallback Constructor) *Factory {
	return &Factory{byTag: make(map[string]Constructor), fallback: fallback}
}

// Register binds tag to ctor, replacing any earlier binding. Tags are matched
// case-insensitively.
func (f *Factory) Register(tag string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byTag[normalizeTag(tag)] = ctor
}

// Resolve returns a processor for tag. It never fails.
func (f *Factory) Resolve(tag string) Processor {
	f.mu.RLock()
	ctor, ok := f.byTag[normalizeTag(tag)]
	fallback := f.fallback
	f.mu.RUnlock()
	if ok {
		return ctor()
	}
	if fallback == nil {
		return ProcessorFunc(acceptAll)
	}
	return fallback()
}

// Tags lists the registered method tags in sorted order.
func (f *Factory) Tags() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	tags := make([]string, 0, len(f.byTag))
	for tag := range f.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Options tunes the simulated processors built by NewDefaultFactory.
type Options struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// NewDefaultFactory registers the simulated paytm and icici-debit processors
// with an accept-all fallback.
func NewDefaultFactory(opts Options) *Factory {
	simulated := func(name string) Constructor {
		p := NewSimulatedProcessor(name, opts.MinDelay, opts.MaxDelay)
		return func() Processor { return p }
	}
	f := NewFactory(simulated(MethodAcceptAll))
	f.Register(MethodPaytm, simulated(MethodPaytm))
	f.Register(MethodICICIDebit, simulated(MethodICICIDebit))
	return f
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func acceptAll(context.Context, Details) error { return nil }
