package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Emitter is what domain services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Sink persists or forwards events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event) error

func (f SinkFunc) Write(ctx context.Context, event Event) error { return f(ctx, event) }

// DefaultSinkTimeout bounds a single sink write.
const DefaultSinkTimeout = 10 * time.Second

// Publisher fills in identity and time and fans an event out to every sink.
// All sinks are attempted; their failures are joined. Each write runs under
// its own deadline so a stuck sink cannot hold the caller.
type Publisher struct {
	sinks       []Sink
	logger      *slog.Logger
	clock       func() time.Time
	newID       func() string
	sinkTimeout time.Duration
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithClock sets the time source for testability.
func WithClock(clock func() time.Time) Option {
	return func(p *Publisher) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithSink adds a destination.
func WithSink(s Sink) Option {
	return func(p *Publisher) {
		if s != nil {
			p.sinks = append(p.sinks, s)
		}
	}
}

// WithSinkTimeout overrides DefaultSinkTimeout.
func WithSinkTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.sinkTimeout = d
		}
	}
}

func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{clock: time.Now, newID: uuid.NewString, sinkTimeout: DefaultSinkTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Action == "" {
		return errors.New("audit event requires Action")
	}
	if event.ID == "" {
		event.ID = p.newID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()
	}
	if event.UserName == "" {
		event.UserName = SystemUser
	}

	var errs []error
	for i, s := range p.sinks {
		if err := p.write(ctx, s, event); err != nil {
			if p.logger != nil {
				p.logger.ErrorContext(ctx, "audit sink failed",
					"sink", i,
					"action", event.Action,
					"error", err,
				)
			}
			errs = append(errs, fmt.Errorf("audit sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) write(ctx context.Context, s Sink, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, p.sinkTimeout)
	defer cancel()
	return s.Write(ctx, event)
}

// LogSink writes events to a structured logger.
func LogSink(logger *slog.Logger) Sink {
	return SinkFunc(func(ctx context.Context, e Event) error {
		logger.InfoContext(ctx, "audit",
			"id", e.ID,
			"action", e.Action,
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
			"user", e.UserName,
			"details", e.Details,
		)
		return nil
	})
}
