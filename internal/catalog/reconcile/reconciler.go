// Package reconcile makes the stored requirements of a framework match a
// supplied list of definitions without ever creating duplicates.
package reconcile

//go:generate mockgen -source=reconciler.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	dErrors "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/domain-errors"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/tx"
)

const tracerName = "github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/reconcile"

// RequirementStore is the requirement persistence the reconciler needs.
// Implementations take part in any transaction carried by ctx.
type RequirementStore interface {
	FindByRequirementID(ctx context.Context, frameworkID uuid.UUID, requirementID string) (*models.Requirement, error)
	InsertBatch(ctx context.Context, reqs []*models.Requirement) error
	UpdateBatch(ctx context.Context, reqs []*models.Requirement) error
	CountByFramework(ctx context.Context, frameworkID uuid.UUID) (int, error)
}

// FrameworkResolver yields the framework a run writes into.
type FrameworkResolver interface {
	Ensure(ctx context.Context, code string, d models.Descriptor, refresh bool) (*models.Framework, bool, error)
	Require(ctx context.Context, code string, refresh bool) (*models.Framework, error)
}

type Reconciler struct {
	frameworks   FrameworkResolver
	requirements RequirementStore
	tx           tx.Runner
	logger       *slog.Logger
	tracer       trace.Tracer
	clock        func() time.Time
	newID        func() uuid.UUID
}

type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(r *Reconciler) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithClock sets the time source for testability.
func WithClock(clock func() time.Time) Option {
	return func(r *Reconciler) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithIDGenerator sets the surrogate key source for testability.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(r *Reconciler) {
		if newID != nil {
			r.newID = newID
		}
	}
}

func New(frameworks FrameworkResolver, requirements RequirementStore, runner tx.Runner, opts ...Option) *Reconciler {
	r := &Reconciler{
		frameworks:   frameworks,
		requirements: requirements,
		tx:           runner,
		tracer:       otel.Tracer(tracerName),
		clock:        time.Now,
		newID:        uuid.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile validates every definition, resolves the framework and writes
// the definitions in batches. In PerBatch mode a failure returns the counters
// of the batches committed before it; in AllOrNothing mode it returns a zero
// Result.
func (r *Reconciler) Reconcile(ctx context.Context, job Job) (res Result, err error) {
	code := models.NormalizeCode(job.Code)
	opts := job.Options

	ctx, span := r.tracer.Start(ctx, "catalog.reconcile", trace.WithAttributes(
		attribute.String("framework.code", code),
		attribute.Int("definitions", len(job.Definitions)),
		attribute.String("mode", opts.Mode.String()),
		attribute.String("transaction", opts.Transaction.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.Int("created", res.Created),
				attribute.Int("updated", res.Updated),
				attribute.Int("skipped", res.Skipped),
			)
		}
		span.End()
	}()

	if err := models.ValidateCode(code); err != nil {
		return Result{}, err
	}
	if err := models.ValidateDefinitions(job.Definitions); err != nil {
		return Result{}, err
	}
	job.Code = code

	if opts.Transaction == AllOrNothing {
		err = r.tx.RunInTx(ctx, func(ctx context.Context) error {
			var runErr error
			res, runErr = r.runAll(ctx, job)
			return runErr
		})
		if err != nil {
			return Result{}, err
		}
		r.log(ctx, "requirements reconciled", job, res)
		return res, nil
	}

	res, err = r.runPerBatch(ctx, job)
	if err != nil {
		return res, err
	}
	r.log(ctx, "requirements reconciled", job, res)
	return res, nil
}

func (r *Reconciler) runAll(ctx context.Context, job Job) (Result, error) {
	res := Result{Total: len(job.Definitions)}
	st, skip, err := r.prepare(ctx, job, &res)
	if err != nil || skip {
		return res, err
	}
	for _, chunk := range chunks(job.Definitions, job.Options.batchSize()) {
		counts, err := r.processChunk(ctx, st, chunk)
		if err != nil {
			return Result{}, err
		}
		res.add(counts)
	}
	return res, nil
}

func (r *Reconciler) runPerBatch(ctx context.Context, job Job) (Result, error) {
	res := Result{Total: len(job.Definitions)}
	var (
		st   *run
		skip bool
	)
	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		st, skip, err = r.prepare(ctx, job, &res)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	if skip {
		return res, nil
	}

	for i, chunk := range chunks(job.Definitions, job.Options.batchSize()) {
		var counts Result
		err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
			var err error
			counts, err = r.processChunk(ctx, st, chunk)
			return err
		})
		if err != nil {
			if r.logger != nil {
				r.logger.WarnContext(ctx, "reconcile batch failed; earlier batches stay committed",
					"framework", job.Code,
					"batch", i+1,
					"committed_batches", res.Batches,
					"error", err,
				)
			}
			return res, err
		}
		res.add(counts)
	}
	return res, nil
}

// prepare resolves the framework and decides whether the run is skipped.
func (r *Reconciler) prepare(ctx context.Context, job Job, res *Result) (*run, bool, error) {
	opts := job.Options
	var (
		fw  *models.Framework
		err error
	)
	if opts.RequireFramework {
		fw, err = r.frameworks.Require(ctx, job.Code, opts.RefreshFramework)
	} else {
		fw, res.FrameworkCreated, err = r.frameworks.Ensure(ctx, job.Code, job.Framework, opts.RefreshFramework)
	}
	if err != nil {
		return nil, false, err
	}

	if opts.SkipIfPopulated && !res.FrameworkCreated {
		n, err := r.requirements.CountByFramework(ctx, fw.ID)
		if err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeStore, "failed to count requirements")
		}
		if n > 0 {
			res.SkippedRun = true
			if r.logger != nil {
				r.logger.InfoContext(ctx, "framework already populated; skipping", "framework", job.Code, "existing", n)
			}
			return nil, true, nil
		}
	}

	return &run{
		fw:    fw,
		mode:  opts.Mode,
		now:   r.clock,
		newID: r.newID,
		seen:  make(map[string]struct{}, len(job.Definitions)),
	}, false, nil
}

func (r *Reconciler) log(ctx context.Context, msg string, job Job, res Result) {
	if r.logger == nil {
		return
	}
	r.logger.InfoContext(ctx, msg,
		"framework", job.Code,
		"mode", job.Options.Mode.String(),
		"transaction", job.Options.Transaction.String(),
		"created", res.Created,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"batches", res.Batches,
		"framework_created", res.FrameworkCreated,
	)
}
