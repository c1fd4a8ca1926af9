// Package bus provides an in-process implementation of domain.Bus for
// single-instance deployments and tests.
package bus

import (
	"context"
	"path"
	"sync"

	"github.com/Jackster042/live-score/internal/domain"
)

type patternSub struct {
	pattern string
	handler domain.BusHandler
}

// Memory is an in-memory Bus. Handlers run synchronously on the
// publisher's goroutine, which preserves the local-first ordering that
// tests assert on.
type Memory struct {
	mu          sync.RWMutex
	subscribers map[string][]domain.BusHandler
	patterns    []patternSub
}

// NewMemory creates an empty in-memory bus.
func NewMemory() *Memory {
	return &Memory{subscribers: make(map[string][]domain.BusHandler)}
}

// Publish delivers payload to all matching subscribers. It never fails.
func (m *Memory) Publish(_ context.Context, channel string, payload []byte) error {
	m.mu.RLock()
	handlers := append([]domain.BusHandler(nil), m.subscribers[channel]...)
	for _, ps := range m.patterns {
		if ok, _ := path.Match(ps.pattern, channel); ok {
			handlers = append(handlers, ps.handler)
		}
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(channel, payload)
	}
	return nil
}

// Subscribe registers handler for a single channel.
func (m *Memory) Subscribe(_ context.Context, channel string, handler domain.BusHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[channel] = append(m.subscribers[channel], handler)
	return nil
}

// SubscribePattern registers handler for all channels matching a glob
// pattern.
func (m *Memory) SubscribePattern(_ context.Context, pattern string, handler domain.BusHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, patternSub{pattern: pattern, handler: handler})
	return nil
}
