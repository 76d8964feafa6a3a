// Package service runs framework synchronization for operators: it holds the
// per-framework lock, drives the reconciler and reports the outcome through
// metrics and audit events.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/audit"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/metrics"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/reconcile"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/lock"
	dErrors "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/domain-errors"
)

// DefaultLockTTL bounds one sync run when no TTL is configured.
const DefaultLockTTL = 10 * time.Minute

type Reconciler interface {
	Reconcile(ctx context.Context, job reconcile.Job) (reconcile.Result, error)
}

type FrameworkLister interface {
	List(ctx context.Context) ([]*models.Framework, error)
}

type RequirementCounter interface {
	CountByFramework(ctx context.Context, frameworkID uuid.UUID) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Report is the outcome of one framework sync.
type Report struct {
	Code   string
	Result reconcile.Result
}

// FrameworkSummary is a catalogue listing row.
type FrameworkSummary struct {
	Framework    *models.Framework
	Requirements int
}

// Service orchestrates framework synchronization.
type Service struct {
	reconciler     Reconciler
	frameworks     FrameworkLister
	requirements   RequirementCounter
	locker         lock.Locker
	lockTTL        time.Duration
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLocker serializes runs per framework code. ttl <= 0 keeps the default.
func WithLocker(l lock.Locker, ttl time.Duration) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func New(reconciler Reconciler, frameworks FrameworkLister, requirements RequirementCounter, opts ...Option) *Service {
	s := &Service{
		reconciler:   reconciler,
		frameworks:   frameworks,
		requirements: requirements,
		locker:       lock.Noop{},
		lockTTL:      DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync reconciles one framework. A run for a code that is already being
// synchronized elsewhere fails with a conflict. Audit failures are logged and
// do not fail the run.
func (s *Service) Sync(ctx context.Context, job reconcile.Job) (reconcile.Result, error) {
	code := models.NormalizeCode(job.Code)
	if err := models.ValidateCode(code); err != nil {
		return reconcile.Result{}, err
	}
	job.Code = code

	release, err := s.locker.Acquire(ctx, "framework:"+code, s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return reconcile.Result{}, dErrors.Newf(dErrors.CodeConflict, "framework %s is already being synchronized", code)
		}
		return reconcile.Result{}, dErrors.Wrap(err, dErrors.CodeStore, "failed to acquire sync lock")
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logWarn(ctx, "failed to release sync lock", "framework", code, "error", err)
		}
	}()

	start := time.Now()
	res, err := s.reconciler.Reconcile(ctx, job)
	s.observe(code, start, res, err)
	s.emit(ctx, code, job, res, err)
	return res, err
}

// SyncAll runs the jobs in order and stops at the first failure. The reports
// of the jobs that ran, including the failed one, are returned with the error.
func (s *Service) SyncAll(ctx context.Context, jobs []reconcile.Job) ([]Report, error) {
	reports := make([]Report, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return reports, dErrors.Wrap(err, dErrors.CodeTimeout, "sync interrupted")
		}
		res, err := s.Sync(ctx, job)
		reports = append(reports, Report{Code: models.NormalizeCode(job.Code), Result: res})
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// List returns every framework with its requirement count, ordered by code.
func (s *Service) List(ctx context.Context) ([]FrameworkSummary, error) {
	fws, err := s.frameworks.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStore, "failed to list frameworks")
	}
	out := make([]FrameworkSummary, 0, len(fws))
	for _, fw := range fws {
		n, err := s.requirements.CountByFramework(ctx, fw.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStore, "failed to count requirements")
		}
		out = append(out, FrameworkSummary{Framework: fw, Requirements: n})
	}
	return out, nil
}

func (s *Service) observe(code string, start time.Time, res reconcile.Result, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSync(code, start)
	outcome := metrics.OutcomeSuccess
	switch {
	case err != nil:
		outcome = metrics.OutcomeFailed
	case res.SkippedRun:
		outcome = metrics.OutcomeSkipped
	}
	s.metrics.RecordRun(code, outcome, res.Created, res.Updated, res.Skipped)
	if res.FrameworkCreated {
		s.metrics.IncrementFrameworkCreated()
	}
}

func (s *Service) emit(ctx context.Context, code string, job reconcile.Job, res reconcile.Result, runErr error) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		EntityType: audit.EntityFramework,
		EntityID:   code,
		Action:     audit.ActionFrameworkSynced,
		Details: map[string]string{
			"mode":        job.Options.Mode.String(),
			"transaction": job.Options.Transaction.String(),
			"created":     strconv.Itoa(res.Created),
			"updated":     strconv.Itoa(res.Updated),
			"skipped":     strconv.Itoa(res.Skipped),
			"batches":     strconv.Itoa(res.Batches),
		},
	}
	if res.SkippedRun {
		event.Details["skipped_run"] = "true"
	}
	if runErr != nil {
		event.Action = audit.ActionFrameworkSyncFailed
		event.Details["error_code"] = string(dErrors.CodeOf(runErr))
	}
	// A failed run may have rolled back; the audit write must not depend on it.
	if err := s.auditPublisher.Emit(context.WithoutCancel(ctx), event); err != nil {
		s.logWarn(ctx, "failed to record sync audit event", "framework", code, "error", err)
	}
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, args...)
	}
}
