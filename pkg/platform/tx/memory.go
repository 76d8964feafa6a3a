package tx

import (
	"context"
	"sync"
)

// Snapshotter is implemented by in-memory stores that can take part in a
// MemoryRunner transaction. Snapshot captures the current state and returns
// a function that puts it back.
type Snapshotter interface {
	Snapshot() (restore func())
}

type memoryKey struct{}

// MemoryRunner gives in-memory stores all-or-nothing semantics: it serializes
// transactions behind one lock and restores every participant's snapshot when
// fn fails.
type MemoryRunner struct {
	mu    sync.Mutex
	parts []Snapshotter
}

func NewMemoryRunner(parts ...Snapshotter) *MemoryRunner {
	return &MemoryRunner{parts: parts}
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryKey{}) == r {
		return fn(ctx)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	restores := make([]func(), 0, len(r.parts))
	for _, p := range r.parts {
		restores = append(restores, p.Snapshot())
	}

	if err := fn(context.WithValue(ctx, memoryKey{}, r)); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}
