package events

import (
	"context"
	"sync"
)

// MemoryBus delivers events to in-process subscribers.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	nextID   uint64
	closed   bool
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[uint64]Handler)}
}

// Publish hands the event to every current subscriber without blocking on
// them.
func (b *MemoryBus) Publish(ctx context.Context, evt TransactionRecorded) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	// Handlers outlive the publishing request.
	ctx = context.WithoutCancel(ctx)
	for _, h := range b.handlers {
		go h(ctx, evt)
	}
	return nil
}

func (b *MemoryBus) Subscribe(handler Handler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	b.nextID++
	id := b.nextID
	b.handlers[id] = handler
	return &memorySubscription{bus: b, id: id}, nil
}

// Subscribers reports how many handlers are registered.
func (b *MemoryBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.handlers = make(map[uint64]Handler)
	return nil
}

func (b *MemoryBus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, id)
}

type memorySubscription struct {
	bus *MemoryBus
	id  uint64
}

func (s *memorySubscription) Unsubscribe() error {
	s.bus.unsubscribe(s.id)
	return nil
}
