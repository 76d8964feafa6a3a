package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuardedSink(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker(2, time.Minute, func() time.Time { return now })

	calls := 0
	failing := true
	sink := Guarded(SinkFunc(func(context.Context, Event) error {
		calls++
		if failing {
			return errors.New("broker down")
		}
		return nil
	}), b)
	ctx := context.Background()
	e := Event{Action: ActionFrameworkSynced}

	assert.Error(t, sink.Write(ctx, e))
	assert.False(t, b.IsOpen())
	assert.Error(t, sink.Write(ctx, e))
	assert.True(t, b.IsOpen())

	// Open: the wrapped sink is not called.
	assert.ErrorIs(t, sink.Write(ctx, e), ErrSinkOpen)
	assert.Equal(t, 2, calls)

	// Half-open after the cooldown; one more failure re-opens.
	now = now.Add(2 * time.Minute)
	assert.Error(t, sink.Write(ctx, e))
	assert.Equal(t, 3, calls)
	assert.True(t, b.IsOpen())

	now = now.Add(2 * time.Minute)
	failing = false
	assert.NoError(t, sink.Write(ctx, e))
	assert.False(t, b.IsOpen())
	assert.NoError(t, sink.Write(ctx, e))
	assert.Equal(t, 5, calls)
}

func TestNewBreakerDefaults(t *testing.T) {
	b := NewBreaker(0, 0, nil)
	assert.Equal(t, 3, b.threshold)
	assert.Equal(t, time.Minute, b.cooldown)
	assert.True(t, b.Allow())
}
