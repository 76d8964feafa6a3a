package auditlog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/sqldb"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/sentinel"
)

type store interface {
	Append(ctx context.Context, entry *models.AuditLogEntry) error
	CountOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*models.AuditLogEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type StoreSuite struct {
	suite.Suite
	newStore func(t *testing.T) store
	store    store
	now      time.Time
}

func (s *StoreSuite) SetupTest() {
	s.store = s.newStore(s.T())
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StoreSuite) append(age time.Duration, action string) *models.AuditLogEntry {
	e := &models.AuditLogEntry{
		EntityType: "Asset",
		EntityID:   "42",
		Action:     action,
		UserName:   "alice@example.com",
		CreatedAt:  s.now.Add(-age),
	}
	s.Require().NoError(s.store.Append(context.Background(), e))
	return e
}

func (s *StoreSuite) TestCutoffIsStrict() {
	ctx := context.Background()
	day := 24 * time.Hour
	cutoff := s.now.Add(-365 * day)

	old := s.append(366*day, "delete")
	s.append(364*day, "update")
	s.append(365*day, "create")

	n, err := s.store.CountOlderThan(ctx, cutoff)
	s.Require().NoError(err)
	s.Equal(1, n)

	list, err := s.store.ListOlderThan(ctx, cutoff, 5)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(old.ID, list[0].ID)
	s.True(old.CreatedAt.Equal(list[0].CreatedAt))
	s.Equal("alice@example.com", list[0].UserName)
}

func (s *StoreSuite) TestListOrdersOldestFirstAndLimits() {
	ctx := context.Background()
	for i := 10; i >= 1; i-- {
		s.append(time.Duration(400+i)*24*time.Hour, "update")
	}
	list, err := s.store.ListOlderThan(ctx, s.now, 5)
	s.Require().NoError(err)
	s.Require().Len(list, 5)
	for i := 1; i < len(list); i++ {
		s.True(list[i-1].CreatedAt.Before(list[i].CreatedAt))
	}
	s.True(list[0].CreatedAt.Equal(s.now.Add(-410 * 24 * time.Hour)))

	all, err := s.store.ListOlderThan(ctx, s.now, 0)
	s.Require().NoError(err)
	s.Len(all, 10)
}

func (s *StoreSuite) TestDeleteOlderThan() {
	ctx := context.Background()
	day := 24 * time.Hour
	s.append(800*day, "create")
	s.append(500*day, "update")
	s.append(10*day, "update")

	n, err := s.store.DeleteOlderThan(ctx, s.now.Add(-365*day))
	s.Require().NoError(err)
	s.Equal(2, n)

	left, err := s.store.CountOlderThan(ctx, s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(1, left)

	n, err = s.store.DeleteOlderThan(ctx, s.now.Add(-365*day))
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *StoreSuite) TestAppendAssignsIDAndRejectsDuplicates() {
	ctx := context.Background()
	e := s.append(time.Hour, "login")
	s.NotEmpty(e.ID)

	dup := *e
	err := s.store.Append(ctx, &dup)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(*testing.T) store { return NewInMemory() }})
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(t *testing.T) store {
		ctx := context.Background()
		db, err := sqldb.Open(ctx, sqldb.SQLite, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		require.NoError(t, db.Migrate(ctx))
		return NewSQL(db.DB, db.Dialect)
	}})
}

func TestSQLStorePostgresQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := NewSQL(db, sqldb.Postgres)
	ctx := context.Background()
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_log WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	n, err := st.CountOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	mock.ExpectQuery(`FROM audit_log WHERE created_at < \$1 ORDER BY created_at, id LIMIT \$2`).
		WithArgs(cutoff, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "entity_type", "entity_id", "action", "user_name", "created_at"}).
			AddRow("a1", "Risk", "9", "delete", "bob", cutoff.Add(-time.Hour)))
	list, err := st.ListOlderThan(ctx, cutoff, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Risk", list[0].EntityType)

	mock.ExpectExec(`DELETE FROM audit_log WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))
	n, err = st.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	mock.ExpectExec(`DELETE FROM audit_log`).WillReturnError(assert.AnError)
	_, err = st.DeleteOlderThan(ctx, cutoff)
	assert.ErrorIs(t, err, assert.AnError)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mt.Run("count", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}))
		n, err := NewMongo(mt.Coll).CountOlderThan(context.Background(), cutoff)
		require.NoError(mt, err)
		assert.Equal(mt, 3, n)
	})

	mt.Run("list decodes entries", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "e1"},
				{Key: "entity_type", Value: "Document"},
				{Key: "action", Value: "update"},
				{Key: "user_name", Value: "carol"},
				{Key: "created_at", Value: cutoff.Add(-48 * time.Hour)},
			},
		))
		list, err := NewMongo(mt.Coll).ListOlderThan(context.Background(), cutoff, 5)
		require.NoError(mt, err)
		require.Len(mt, list, 1)
		assert.Equal(mt, "e1", list[0].ID)
		assert.Equal(mt, "carol", list[0].UserName)
		assert.True(mt, list[0].CreatedAt.Equal(cutoff.Add(-48*time.Hour)))
	})

	mt.Run("delete reports count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(4)}))
		n, err := NewMongo(mt.Coll).DeleteOlderThan(context.Background(), cutoff)
		require.NoError(mt, err)
		assert.Equal(mt, 4, n)
	})

	mt.Run("duplicate append conflicts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))
		err := NewMongo(mt.Coll).Append(context.Background(), &models.AuditLogEntry{
			ID: "e1", EntityType: "Asset", Action: "create", CreatedAt: cutoff,
		})
		assert.ErrorIs(mt, err, sentinel.ErrConflict)
	})

	mt.Run("append assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		e := &models.AuditLogEntry{EntityType: "Asset", Action: "create", CreatedAt: cutoff}
		require.NoError(mt, NewMongo(mt.Coll).Append(context.Background(), e))
		assert.NotEmpty(mt, e.ID)
	})
}
