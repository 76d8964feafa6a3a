package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/audit"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/metrics"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/reconcile"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/registry"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/service"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/service/mocks"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/sources"
	frameworkstore "github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/store/framework"
	requirementstore "github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/store/requirement"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/lock"
	dErrors "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/domain-errors"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/tx"
)

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	reconciler *mocks.MockReconciler
	frameworks *mocks.MockFrameworkLister
	counter    *mocks.MockRequirementCounter
	publisher  *mocks.MockAuditPublisher
	metrics    *metrics.Metrics
	locker     *lock.Memory
	service    *service.Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.reconciler = mocks.NewMockReconciler(s.ctrl)
	s.frameworks = mocks.NewMockFrameworkLister(s.ctrl)
	s.counter = mocks.NewMockRequirementCounter(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.locker = lock.NewMemory()
	s.service = service.New(s.reconciler, s.frameworks, s.counter,
		service.WithAuditPublisher(s.publisher),
		service.WithMetrics(s.metrics),
		service.WithLocker(s.locker, time.Minute),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestSyncRecordsSuccess() {
	ctx := context.Background()
	job := reconcile.Job{Code: " DORA ", Options: reconcile.Options{Mode: reconcile.ModeUpsert}}
	res := reconcile.Result{Created: 4, Updated: 1, Skipped: 2, Total: 7, Batches: 1, FrameworkCreated: true}

	s.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, j reconcile.Job) (reconcile.Result, error) {
			s.Equal("DORA", j.Code)
			return res, nil
		})
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(audit.ActionFrameworkSynced, e.Action)
			s.Equal(audit.EntityFramework, e.EntityType)
			s.Equal("DORA", e.EntityID)
			s.Equal("4", e.Details["created"])
			s.Equal("upsert", e.Details["mode"])
			return nil
		})

	got, err := s.service.Sync(ctx, job)
	s.Require().NoError(err)
	s.Equal(res, got)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SyncRuns.WithLabelValues("DORA", metrics.OutcomeSuccess)))
	s.Equal(4.0, testutil.ToFloat64(s.metrics.Requirements.WithLabelValues("DORA", "created")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.FrameworksCreated))

	_, err = s.locker.Acquire(ctx, "framework:DORA", time.Minute)
	s.NoError(err, "lock released after the run")
}

func (s *ServiceSuite) TestSyncRecordsFailure() {
	ctx := context.Background()
	runErr := dErrors.Wrap(errors.New("disk full"), dErrors.CodeStore, "failed to insert requirements")
	partial := reconcile.Result{Created: 50, Total: 120, Batches: 1}

	s.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(partial, runErr)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(audit.ActionFrameworkSyncFailed, e.Action)
			s.Equal(string(dErrors.CodeStore), e.Details["error_code"])
			return nil
		})

	got, err := s.service.Sync(ctx, reconcile.Job{Code: "ISO27001"})
	s.ErrorIs(err, runErr)
	s.Equal(partial, got)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SyncRuns.WithLabelValues("ISO27001", metrics.OutcomeFailed)))
}

func (s *ServiceSuite) TestSkippedRunIsReported() {
	s.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(reconcile.Result{Total: 12, SkippedRun: true}, nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal("true", e.Details["skipped_run"])
			return nil
		})

	_, err := s.service.Sync(context.Background(), reconcile.Job{Code: "NIS2"})
	s.Require().NoError(err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SyncRuns.WithLabelValues("NIS2", metrics.OutcomeSkipped)))
}

func (s *ServiceSuite) TestAuditFailureDoesNotFailSync() {
	s.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(reconcile.Result{Created: 1, Total: 1, Batches: 1}, nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit store down"))

	res, err := s.service.Sync(context.Background(), reconcile.Job{Code: "SOC2"})
	s.Require().NoError(err)
	s.Equal(1, res.Created)
}

func (s *ServiceSuite) TestSyncRefusesWhileLocked() {
	ctx := context.Background()
	release, err := s.locker.Acquire(ctx, "framework:NIS2", time.Minute)
	s.Require().NoError(err)
	defer func() { _ = release(ctx) }()

	_, err = s.service.Sync(ctx, reconcile.Job{Code: "NIS2"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestSyncRejectsEmptyCode() {
	_, err := s.service.Sync(context.Background(), reconcile.Job{Code: "  "})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSyncAllStopsAtFirstFailure() {
	ctx := context.Background()
	runErr := dErrors.New(dErrors.CodeNotFound, "framework DORA not found; load the base framework first")

	gomock.InOrder(
		s.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(reconcile.Result{Created: 3, Total: 3, Batches: 1}, nil),
		s.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(reconcile.Result{}, runErr),
	)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	reports, err := s.service.SyncAll(ctx, []reconcile.Job{{Code: "ISO27001"}, {Code: "DORA"}, {Code: "GDPR"}})
	s.ErrorIs(err, runErr)
	s.Require().Len(reports, 2)
	s.Equal("ISO27001", reports[0].Code)
	s.Equal(3, reports[0].Result.Created)
	s.Equal("DORA", reports[1].Code)
}

func (s *ServiceSuite) TestList() {
	ctx := context.Background()
	iso := &models.Framework{ID: uuid.New(), Code: "ISO27001"}
	nis2 := &models.Framework{ID: uuid.New(), Code: "NIS2"}

	s.frameworks.EXPECT().List(gomock.Any()).Return([]*models.Framework{iso, nis2}, nil)
	s.counter.EXPECT().CountByFramework(gomock.Any(), iso.ID).Return(93, nil)
	s.counter.EXPECT().CountByFramework(gomock.Any(), nis2.ID).Return(0, nil)

	got, err := s.service.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(93, got[0].Requirements)
	s.Equal("NIS2", got[1].Framework.Code)

	s.frameworks.EXPECT().List(gomock.Any()).Return(nil, errors.New("connection reset"))
	_, err = s.service.List(ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeStore))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// TestBuiltinCatalogueSync drives the embedded modules through the real
// reconciler on memory stores.
func TestBuiltinCatalogueSync(t *testing.T) {
	ctx := context.Background()
	frameworks := frameworkstore.NewInMemory()
	requirements := requirementstore.NewInMemory()
	runner := tx.NewMemoryRunner(frameworks, requirements)
	rec := reconcile.New(registry.New(frameworks), requirements, runner)

	var events []audit.Event
	publisher := audit.NewPublisher(audit.WithSink(audit.SinkFunc(func(_ context.Context, e audit.Event) error {
		events = append(events, e)
		return nil
	})))
	svc := service.New(rec, frameworks, requirements, service.WithAuditPublisher(publisher))

	mods, err := sources.Builtin()
	if err != nil {
		t.Fatal(err)
	}
	jobs := make([]reconcile.Job, 0, len(mods))
	for _, m := range mods {
		job, err := m.Job(reconcile.Options{})
		if err != nil {
			t.Fatal(err)
		}
		jobs = append(jobs, job)
	}

	reports, err := svc.SyncAll(ctx, jobs)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if len(reports) != len(mods) || len(events) != len(mods) {
		t.Fatalf("got %d reports and %d events, want %d", len(reports), len(events), len(mods))
	}

	reports, err = svc.SyncAll(ctx, jobs)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	for _, r := range reports {
		if r.Result.Created != 0 {
			t.Errorf("%s: rerun created %d requirements", r.Code, r.Result.Created)
		}
	}

	summaries, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, m := range mods {
		total += len(m.Requirements)
	}
	got := 0
	for _, sum := range summaries {
		got += sum.Requirements
	}
	if got != total {
		t.Errorf("catalogue holds %d requirements, want %d", got, total)
	}
	if len(summaries) != len(mods)-1 {
		t.Errorf("got %d frameworks, want %d (supplement shares its base)", len(summaries), len(mods)-1)
	}
}
