package events

import (
	"context"
	"log"
	"sync"
)

// MemoryBus is an in-process bus for tests and single-node development. It
// delivers synchronously in publish order, which keeps test assertions
// deterministic. Handler errors are logged and swallowed, matching the broker
// contract that a failed consumer never fails the publisher.
type MemoryBus struct {
	mu       sync.Mutex
	handlers map[string][]Handler
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]Handler)}
}

func (b *MemoryBus) Publish(ctx context.Context, event string, payload interface{}) error {
	body, err := newEnvelope(event, payload)
	if err != nil {
		return err
	}

	envelope, err := decodeEnvelope(body)
	if err != nil {
		return err
	}

	b.mu.Lock()
	handlers := append([]Handler(nil), b.handlers[event]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(envelope.Data); err != nil {
			log.Printf("🔥 Handler for %s failed: %v", event, err)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(event string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[string][]Handler)
	return nil
}
