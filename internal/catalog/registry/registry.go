package registry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	dErrors "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/domain-errors"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/sentinel"
)

// FrameworkStore is the persistence the registry needs. Implementations take
// part in any transaction carried by ctx.
type FrameworkStore interface {
	FindByCode(ctx context.Context, code string) (*models.Framework, error)
	Create(ctx context.Context, fw *models.Framework) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Registry ensures exactly one catalogue entry exists per framework code.
type Registry struct {
	frameworks FrameworkStore
	logger     *slog.Logger
	clock      func() time.Time
	newID      func() uuid.UUID
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithClock sets the time source for testability.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithIDGenerator sets the surrogate key source for testability.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(r *Registry) {
		if newID != nil {
			r.newID = newID
		}
	}
}

func New(frameworks FrameworkStore, opts ...Option) *Registry {
	r := &Registry{frameworks: frameworks, clock: time.Now, newID: uuid.New}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ensure returns the framework for code, creating it from d when absent.
// An existing framework is returned unchanged unless refresh is set, in which
// case only UpdatedAt is written. created reports whether an insert happened.
func (r *Registry) Ensure(ctx context.Context, code string, d models.Descriptor, refresh bool) (fw *models.Framework, created bool, err error) {
	code = models.NormalizeCode(code)
	if err := models.ValidateCode(code); err != nil {
		return nil, false, err
	}

	existing, err := r.frameworks.FindByCode(ctx, code)
	switch {
	case err == nil:
		if refresh {
			if err := r.touch(ctx, existing); err != nil {
				return nil, false, err
			}
		}
		return existing, false, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, false, dErrors.Wrap(err, dErrors.CodeStore, "failed to load framework")
	}

	fw, err = models.NewFramework(r.newID(), code, d, r.clock())
	if err != nil {
		return nil, false, err
	}
	if err := r.frameworks.Create(ctx, fw); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, false, dErrors.Wrap(err, dErrors.CodeConflict, "framework "+code+" was created concurrently")
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeStore, "failed to create framework")
	}
	r.log(ctx, "framework created", "framework", code)
	return fw, true, nil
}

// Require returns an existing framework and fails when it is absent. Used by
// supplement runs that only add to a framework loaded earlier.
func (r *Registry) Require(ctx context.Context, code string, refresh bool) (*models.Framework, error) {
	code = models.NormalizeCode(code)
	if err := models.ValidateCode(code); err != nil {
		return nil, err
	}
	fw, err := r.frameworks.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "framework %s not found; load the base framework first", code)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStore, "failed to load framework")
	}
	if refresh {
		if err := r.touch(ctx, fw); err != nil {
			return nil, err
		}
	}
	return fw, nil
}

func (r *Registry) touch(ctx context.Context, fw *models.Framework) error {
	now := r.clock()
	if err := r.frameworks.Touch(ctx, fw.ID, now); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStore, "failed to refresh framework")
	}
	fw.Touch(now)
	return nil
}

func (r *Registry) log(ctx context.Context, msg string, args ...any) {
	if r.logger != nil {
		r.logger.InfoContext(ctx, msg, args...)
	}
}
