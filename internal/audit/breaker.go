package audit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSinkOpen is returned while a guarded sink is skipping writes.
var ErrSinkOpen = errors.New("audit sink circuit open")

// Breaker trips after consecutive sink failures so a dead broker does not
// stall every emit of a multi-framework run.
type Breaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration
	clock     func() time.Time

	failures  int
	openUntil time.Time
	open      bool
}

// NewBreaker creates a breaker. Non-positive values fall back to 3 failures
// and a one minute cooldown.
func NewBreaker(threshold int, cooldown time.Duration, clock func() time.Time) *Breaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	if clock == nil {
		clock = time.Now
	}
	return &Breaker{threshold: threshold, cooldown: cooldown, clock: clock}
}

// Allow reports whether a write may be attempted. After the cooldown the
// breaker half-opens and lets the next write through.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return true
	}
	if b.clock().After(b.openUntil) {
		b.open = false
		b.failures = b.threshold - 1
		return true
	}
	return false
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.open = false
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.open = true
		b.openUntil = b.clock().Add(b.cooldown)
	}
}

func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Guarded wraps sink with b. While open, writes fail fast with ErrSinkOpen.
func Guarded(sink Sink, b *Breaker) Sink {
	return SinkFunc(func(ctx context.Context, e Event) error {
		if !b.Allow() {
			return ErrSinkOpen
		}
		if err := sink.Write(ctx, e); err != nil {
			b.RecordFailure()
			return err
		}
		b.RecordSuccess()
		return nil
	})
}
