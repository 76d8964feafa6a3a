package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/audit"
	catalogmetrics "github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/metrics"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/reconcile"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/registry"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/service"
	frameworkstore "github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/store/framework"
	requirementstore "github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/store/requirement"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/config"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/kafka"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/lock"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/logger"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/metrics"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/redis"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/sqldb"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention"
	retentionmetrics "github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention/metrics"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention/store/auditlog"
	dErrors "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/domain-errors"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/tx"
)

type frameworkStore interface {
	registry.FrameworkStore
	service.FrameworkLister
}

type requirementStore interface {
	reconcile.RequirementStore
	service.RequirementCounter
}

type auditLogStore interface {
	retention.Store
	audit.Appender
}

// app holds the wired dependencies of one CLI invocation.
type app struct {
	cfg        config.Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	frameworks frameworkStore
	reqs       requirementStore
	runner     tx.Runner
	auditLog   auditLogStore
	publisher  *audit.Publisher
	locker     lock.Locker
	closers    []func(ctx context.Context) error
}

// loadConfig reads the .env files and environment. It touches no backend.
func loadConfig(envFiles []string) (config.Config, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return config.Config{}, codeError(exitInvalid, "configuration: %s", err)
	}
	return cfg, nil
}

// openApp connects every configured backend.
func openApp(ctx context.Context, s streams, cfg config.Config) (*app, error) {
	log, err := logger.New(s.errOut, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, codeError(exitInvalid, "configuration: %s", err)
	}

	a := &app{cfg: cfg, logger: log, registry: metrics.NewRegistry()}
	if err := a.wire(ctx); err != nil {
		_ = a.close(ctx)
		return nil, dErrors.Wrap(err, dErrors.CodeStore, "failed to connect backends")
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	var db *sqldb.DB
	switch a.cfg.Store.Backend {
	case config.BackendMemory:
		fw, req := frameworkstore.NewInMemory(), requirementstore.NewInMemory()
		a.frameworks, a.reqs = fw, req
		a.runner = tx.NewMemoryRunner(fw, req)
	default:
		dialect, dsn := sqldb.SQLite, a.cfg.Store.SQLitePath
		if a.cfg.Store.Backend == config.BackendPostgres {
			dialect, dsn = sqldb.Postgres, a.cfg.Store.DatabaseURL
		}
		var err error
		db, err = sqldb.Open(ctx, dialect, dsn)
		if err != nil {
			return err
		}
		a.onClose(func(context.Context) error { return db.Close() })
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		a.frameworks = frameworkstore.NewSQL(db.DB, db.Dialect)
		a.reqs = requirementstore.NewSQL(db.DB, db.Dialect)
		a.runner = tx.NewSQLRunner(db.DB, a.cfg.Store.TxTimeout)
	}

	switch a.cfg.Audit.Backend {
	case config.BackendSQL:
		a.auditLog = auditlog.NewSQL(db.DB, db.Dialect)
	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.cfg.Audit.MongoURI))
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		a.onClose(client.Disconnect)
		if err := client.Ping(ctx, nil); err != nil {
			return fmt.Errorf("ping mongo: %w", err)
		}
		st := auditlog.NewMongo(client.Database(a.cfg.Audit.MongoDatabase).Collection(auditlog.CollectionName))
		if err := st.EnsureIndexes(ctx); err != nil {
			return err
		}
		a.auditLog = st
	default:
		a.auditLog = auditlog.NewInMemory()
	}

	sinks := []audit.Option{
		audit.WithLogger(a.logger),
		audit.WithSink(audit.StoreSink(a.auditLog)),
	}
	if a.cfg.Log.Level == "debug" {
		sinks = append(sinks, audit.WithSink(audit.LogSink(a.logger)))
	}
	if len(a.cfg.Kafka.Brokers) > 0 {
		sink, err := kafka.NewSink(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		a.onClose(func(context.Context) error { sink.Close(); return nil })
		sinks = append(sinks, audit.WithSink(audit.Guarded(sink, audit.NewBreaker(3, time.Minute, nil))))
	}
	a.publisher = audit.NewPublisher(sinks...)

	a.locker = lock.NewMemory()
	rc, err := redis.New(ctx, a.cfg.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		a.onClose(func(context.Context) error { return rc.Close() })
		a.locker = lock.NewRedis(rc.Client)
	}
	return nil
}

func (a *app) onClose(fn func(ctx context.Context) error) {
	a.closers = append(a.closers, fn)
}

func (a *app) catalog() *service.Service {
	rec := reconcile.New(
		registry.New(a.frameworks, registry.WithLogger(a.logger)),
		a.reqs,
		a.runner,
		reconcile.WithLogger(a.logger),
	)
	return service.New(rec, a.frameworks, a.reqs,
		service.WithLogger(a.logger),
		service.WithAuditPublisher(a.publisher),
		service.WithMetrics(catalogmetrics.New(a.registry)),
		service.WithLocker(a.locker, a.cfg.LockTTL),
	)
}

func (a *app) purger(confirmer retention.Confirmer) *retention.Purger {
	return retention.New(a.auditLog,
		retention.WithLogger(a.logger),
		retention.WithConfirmer(confirmer),
		retention.WithMetrics(retentionmetrics.New(a.registry)),
		retention.WithAuditPublisher(a.publisher),
	)
}

// close pushes run metrics when a Pushgateway is configured and releases
// every connection in reverse order.
func (a *app) close(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	if url := a.cfg.Metrics.PushgatewayURL; url != "" {
		if err := metrics.Push(ctx, url, a.cfg.Metrics.Job, a.registry); err != nil {
			a.logger.WarnContext(ctx, "metrics push failed", "error", err)
		}
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	return errors.Join(errs...)
}

// withApp loads the configuration, opens the app, runs fn and closes it.
func withApp(ctx context.Context, s streams, flags *rootFlags, fn func(a *app) error) error {
	cfg, err := loadConfig(flags.envFiles)
	if err != nil {
		return err
	}
	return runApp(ctx, s, cfg, fn)
}

func runApp(ctx context.Context, s streams, cfg config.Config, fn func(a *app) error) error {
	a, err := openApp(ctx, s, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(ctx); err != nil {
			a.logger.WarnContext(ctx, "shutdown failed", "error", err)
		}
	}()
	return fn(a)
}
