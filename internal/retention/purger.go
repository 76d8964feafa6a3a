// Package retention enforces the audit-log retention policy: entries older
// than the retention period are counted, previewed and, once an operator
// confirms, deleted in one store operation.
package retention

//go:generate mockgen -source=purger.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/audit"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention/metrics"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention/models"
	dErrors "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/domain-errors"
)

const tracerName = "github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention"

// SampleSize bounds the preview of matching entries.
const SampleSize = 5

// Store is the audit-log persistence the purger needs. Every method matches
// entries with CreatedAt strictly before cutoff.
type Store interface {
	CountOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*models.AuditLogEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Outcome is how a purge ended.
type Outcome string

const (
	OutcomeNothingToPurge Outcome = "nothing_to_purge"
	OutcomeDryRun         Outcome = "dry_run"
	OutcomeDeclined       Outcome = "declined"
	OutcomePurged         Outcome = "purged"
)

// Preview is what the operator sees before confirming.
type Preview struct {
	Policy Policy
	Cutoff time.Time
	Count  int
	Sample []*models.AuditLogEntry
}

// Result reports a purge.
type Result struct {
	Outcome Outcome
	Preview
	// WouldDelete is Count on a dry run.
	WouldDelete int
	Deleted     int
	Elapsed     time.Duration
}

type Purger struct {
	store          Store
	confirmer      Confirmer
	logger         *slog.Logger
	tracer         trace.Tracer
	clock          func() time.Time
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
}

type Option func(*Purger)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Purger) {
		p.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(p *Purger) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithClock sets the time source for testability.
func WithClock(clock func() time.Time) Option {
	return func(p *Purger) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Purger) {
		p.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(p *Purger) {
		p.auditPublisher = publisher
	}
}

// WithConfirmer sets the confirmation gate. Without one every purge that
// needs confirmation is declined.
func WithConfirmer(c Confirmer) Option {
	return func(p *Purger) {
		if c != nil {
			p.confirmer = c
		}
	}
}

func New(store Store, opts ...Option) *Purger {
	p := &Purger{
		store:     store,
		confirmer: Decline,
		tracer:    otel.Tracer(tracerName),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Purge applies policy. A retention below the floor fails with a
// *PolicyViolation before the store is touched. A declined confirmation is an
// outcome, not an error.
func (p *Purger) Purge(ctx context.Context, policy Policy) (res Result, err error) {
	ctx, span := p.tracer.Start(ctx, "retention.purge", trace.WithAttributes(
		attribute.Int("retention_days", policy.RetentionDays),
		attribute.Bool("dry_run", policy.DryRun),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.String("outcome", string(res.Outcome)),
				attribute.Int("matched", res.Count),
				attribute.Int("deleted", res.Deleted),
			)
		}
		span.End()
	}()

	if err := policy.Validate(); err != nil {
		return Result{}, err
	}

	now := p.clock()
	res.Policy = policy
	res.Cutoff = now.Add(-time.Duration(policy.RetentionDays) * 24 * time.Hour)

	res.Count, err = p.store.CountOlderThan(ctx, res.Cutoff)
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeStore, "failed to count audit log entries")
	}
	if res.Count == 0 {
		return p.finish(ctx, res, OutcomeNothingToPurge), nil
	}

	res.Sample, err = p.store.ListOlderThan(ctx, res.Cutoff, SampleSize)
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeStore, "failed to sample audit log entries")
	}

	if policy.DryRun {
		res.WouldDelete = res.Count
		return p.finish(ctx, res, OutcomeDryRun), nil
	}

	if !policy.AssumeYes {
		ok, err := p.confirmer.Confirm(ctx, res.Preview)
		if err != nil {
			return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "confirmation failed")
		}
		if !ok {
			return p.finish(ctx, res, OutcomeDeclined), nil
		}
	}

	start := p.clock()
	res.Deleted, err = p.store.DeleteOlderThan(ctx, res.Cutoff)
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeStore, "failed to delete audit log entries")
	}
	res.Elapsed = p.clock().Sub(start)

	if p.metrics != nil {
		p.metrics.RecordPurge(res.Deleted, res.Elapsed, p.clock())
	}
	p.emit(ctx, res)
	return p.finish(ctx, res, OutcomePurged), nil
}

func (p *Purger) finish(ctx context.Context, res Result, outcome Outcome) Result {
	res.Outcome = outcome
	if p.metrics != nil {
		p.metrics.RecordRun(string(outcome), res.Count)
	}
	if p.logger != nil {
		p.logger.InfoContext(ctx, "audit log retention finished",
			"outcome", string(outcome),
			"retention_days", res.Policy.RetentionDays,
			"cutoff", res.Cutoff,
			"matched", res.Count,
			"deleted", res.Deleted,
			"elapsed", res.Elapsed,
		)
	}
	return res
}

// emit records the purge in the audit log itself. The event is written after
// the delete and is newer than the cutoff, so it survives this purge.
func (p *Purger) emit(ctx context.Context, res Result) {
	if p.auditPublisher == nil {
		return
	}
	err := p.auditPublisher.Emit(ctx, audit.Event{
		EntityType: audit.EntityAuditLog,
		Action:     audit.ActionAuditLogPurged,
		Details: map[string]string{
			"retention_days": strconv.Itoa(res.Policy.RetentionDays),
			"cutoff":         res.Cutoff.UTC().Format(time.RFC3339),
			"deleted":        strconv.Itoa(res.Deleted),
		},
	})
	if err != nil && p.logger != nil {
		p.logger.WarnContext(ctx, "failed to record purge audit event", "error", err)
	}
}
