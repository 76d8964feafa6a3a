// Package lock serializes work on a shared key across goroutines or hosts.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotAcquired is returned when another holder owns the key.
var ErrNotAcquired = errors.New("lock held by another process")

// Release gives a lock back. Releasing an expired or foreign lock is a no-op.
type Release func(ctx context.Context) error

// Locker acquires exclusive, expiring locks. Acquire does not wait: it fails
// with ErrNotAcquired when the key is held.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

// Memory is an in-process Locker.
type Memory struct {
	mu    sync.Mutex
	held  map[string]memoryLease
	clock func() time.Time
	seq   uint64
}

type memoryLease struct {
	id        uint64
	expiresAt time.Time
}

type MemoryOption func(*Memory)

// WithClock sets the time source for testability.
func WithClock(clock func() time.Time) MemoryOption {
	return func(m *Memory) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{held: make(map[string]memoryLease), clock: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	if lease, ok := m.held[key]; ok && now.Before(lease.expiresAt) {
		return nil, ErrNotAcquired
	}
	m.seq++
	id := m.seq
	m.held[key] = memoryLease{id: id, expiresAt: now.Add(ttl)}

	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if lease, ok := m.held[key]; ok && lease.id == id {
			delete(m.held, key)
		}
		return nil
	}, nil
}

// Noop grants every lock. Used when runs cannot overlap.
type Noop struct{}

func (Noop) Acquire(context.Context, string, time.Duration) (Release, error) {
	return func(context.Context) error { return nil }, nil
}
