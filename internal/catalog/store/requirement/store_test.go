package requirement

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/mapping"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	frameworkstore "github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/store/framework"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/sqldb"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/sentinel"
)

type store interface {
	FindByRequirementID(ctx context.Context, frameworkID uuid.UUID, requirementID string) (*models.Requirement, error)
	InsertBatch(ctx context.Context, reqs []*models.Requirement) error
	UpdateBatch(ctx context.Context, reqs []*models.Requirement) error
	CountByFramework(ctx context.Context, frameworkID uuid.UUID) (int, error)
	ListByFramework(ctx context.Context, frameworkID uuid.UUID) ([]*models.Requirement, error)
}

type fixture struct {
	store store
	// addFramework makes fw satisfy the store's foreign key, if it has one.
	addFramework func(fw *models.Framework)
}

type StoreSuite struct {
	suite.Suite
	setup func(t *testing.T) fixture
	fx    fixture
	fw    *models.Framework
	now   time.Time
}

func (s *StoreSuite) SetupTest() {
	s.fx = s.setup(s.T())
	s.now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	fw, err := models.NewFramework(uuid.New(), "NIS2", models.Descriptor{}, s.now)
	s.Require().NoError(err)
	s.fw = fw
	s.fx.addFramework(fw)
}

func (s *StoreSuite) requirement(id string) *models.Requirement {
	return models.NewRequirement(uuid.New(), s.fw, models.Definition{
		ID:       id,
		Title:    "Requirement " + id,
		Category: "Governance",
		Priority: models.PriorityHigh,
		DataSourceMapping: mapping.MustNew(
			mapping.Entry{Key: mapping.KeyISOControls, Value: mapping.List("5.1", "5.2")},
			mapping.Entry{Key: mapping.KeyLegalRequirement, Value: mapping.String("Art. 21")},
			mapping.Entry{Key: mapping.KeyIncidentManagement, Value: mapping.Bool(true)},
		),
	}, s.now)
}

func (s *StoreSuite) TestInsertAndFind() {
	ctx := context.Background()
	r := s.requirement("NIS2-20.1")
	s.Require().NoError(s.fx.store.InsertBatch(ctx, []*models.Requirement{r, s.requirement("NIS2-20.2")}))

	got, err := s.fx.store.FindByRequirementID(ctx, s.fw.ID, "NIS2-20.1")
	s.Require().NoError(err)
	s.Equal(r.ID, got.ID)
	s.Equal("NIS2", got.FrameworkCode)
	s.Equal(models.PriorityHigh, got.Priority)
	s.Equal(models.RequirementTypeCore, got.Type)
	s.True(r.DataSourceMapping.Equal(got.DataSourceMapping))
	s.Equal([]string{mapping.KeyISOControls, mapping.KeyLegalRequirement, mapping.KeyIncidentManagement}, got.DataSourceMapping.Keys())

	n, err := s.fx.store.CountByFramework(ctx, s.fw.ID)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *StoreSuite) TestMappingKeyOrderSurvivesStorage() {
	ctx := context.Background()
	r := s.requirement("NIS2-23.1")
	// Longest key first, so a store that normalises key order would reverse it.
	r.DataSourceMapping = mapping.MustNew(
		mapping.Entry{Key: mapping.KeyLegalRequirement, Value: mapping.String("Art. 23")},
		mapping.Entry{Key: mapping.KeyAuditEvidence, Value: mapping.Bool(true)},
		mapping.Entry{Key: mapping.KeyISOControls, Value: mapping.List("5.24", "5.26")},
	)
	s.Require().NoError(s.fx.store.InsertBatch(ctx, []*models.Requirement{r}))

	got, err := s.fx.store.FindByRequirementID(ctx, s.fw.ID, "NIS2-23.1")
	s.Require().NoError(err)
	s.Equal([]string{mapping.KeyLegalRequirement, mapping.KeyAuditEvidence, mapping.KeyISOControls}, got.DataSourceMapping.Keys())
	s.True(r.DataSourceMapping.Equal(got.DataSourceMapping))

	got.ApplyDefinition(models.Definition{
		ID:                "NIS2-23.1",
		Title:             got.Title,
		Priority:          got.Priority,
		DataSourceMapping: r.DataSourceMapping,
	}, s.now.Add(time.Hour))
	s.Require().NoError(s.fx.store.UpdateBatch(ctx, []*models.Requirement{got}))
	again, err := s.fx.store.FindByRequirementID(ctx, s.fw.ID, "NIS2-23.1")
	s.Require().NoError(err)
	s.True(r.DataSourceMapping.Equal(again.DataSourceMapping))
}

func (s *StoreSuite) TestFindUnknown() {
	_, err := s.fx.store.FindByRequirementID(context.Background(), s.fw.ID, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestInsertDuplicateNaturalKeyConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.fx.store.InsertBatch(ctx, []*models.Requirement{s.requirement("A.5.1")}))

	err := s.fx.store.InsertBatch(ctx, []*models.Requirement{s.requirement("A.5.2"), s.requirement("A.5.1")})
	s.ErrorIs(err, sentinel.ErrConflict)

	n, err := s.fx.store.CountByFramework(ctx, s.fw.ID)
	s.Require().NoError(err)
	s.Equal(1, n, "a failed batch writes nothing")
}

func (s *StoreSuite) TestUpdateOverwritesDescriptiveFields() {
	ctx := context.Background()
	r := s.requirement("A.8.1")
	s.Require().NoError(s.fx.store.InsertBatch(ctx, []*models.Requirement{r}))

	later := s.now.Add(time.Hour)
	r.ApplyDefinition(models.Definition{
		ID:       "A.8.1",
		Title:    "User endpoint devices",
		Priority: models.PriorityCritical,
		Type:     models.RequirementTypeDetailed,
		Parent:   "A.8",
	}, later)
	s.Require().NoError(s.fx.store.UpdateBatch(ctx, []*models.Requirement{r}))

	got, err := s.fx.store.FindByRequirementID(ctx, s.fw.ID, "A.8.1")
	s.Require().NoError(err)
	s.Equal(r.ID, got.ID)
	s.Equal("User endpoint devices", got.Title)
	s.Equal(models.PriorityCritical, got.Priority)
	s.Equal(models.RequirementTypeDetailed, got.Type)
	s.Equal("A.8", got.ParentRequirementID)
	s.True(got.DataSourceMapping.IsEmpty())
	s.True(later.Equal(got.UpdatedAt))
	s.True(s.now.Equal(got.CreatedAt))
}

func (s *StoreSuite) TestUpdateUnknownFails() {
	err := s.fx.store.UpdateBatch(context.Background(), []*models.Requirement{s.requirement("ghost")})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestListByFrameworkOrdered() {
	ctx := context.Background()
	s.Require().NoError(s.fx.store.InsertBatch(ctx, []*models.Requirement{
		s.requirement("C"), s.requirement("A"), s.requirement("B"),
	}))
	list, err := s.fx.store.ListByFramework(ctx, s.fw.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("A", list[0].RequirementID)
	s.Equal("C", list[2].RequirementID)

	empty, err := s.fx.store.ListByFramework(ctx, uuid.New())
	s.Require().NoError(err)
	s.Empty(empty)
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &StoreSuite{setup: func(*testing.T) fixture {
		return fixture{store: NewInMemory(), addFramework: func(*models.Framework) {}}
	}})
}

func TestSQLiteStoreSuite(t *testing.T) {
	suite.Run(t, &StoreSuite{setup: func(t *testing.T) fixture {
		ctx := context.Background()
		db, err := sqldb.Open(ctx, sqldb.SQLite, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		require.NoError(t, db.Migrate(ctx))
		frameworks := frameworkstore.NewSQL(db.DB, db.Dialect)
		return fixture{
			store: NewSQL(db.DB, db.Dialect),
			addFramework: func(fw *models.Framework) {
				require.NoError(t, frameworks.Create(ctx, fw))
			},
		}
	}})
}

func TestInMemorySnapshotRestore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	fw, err := models.NewFramework(uuid.New(), "DORA", models.Descriptor{}, time.Now())
	require.NoError(t, err)
	def := models.Definition{ID: "DORA-5", Title: "ICT risk framework", Priority: models.PriorityCritical}
	require.NoError(t, s.InsertBatch(ctx, []*models.Requirement{models.NewRequirement(uuid.New(), fw, def, time.Now())}))

	restore := s.Snapshot()
	def2 := def
	def2.ID = "DORA-6"
	require.NoError(t, s.InsertBatch(ctx, []*models.Requirement{models.NewRequirement(uuid.New(), fw, def2, time.Now())}))
	restore()

	n, err := s.CountByFramework(ctx, fw.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLStoreInsertBatchPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	fw, err := models.NewFramework(uuid.New(), "SOC2", models.Descriptor{}, time.Now())
	require.NoError(t, err)
	reqs := []*models.Requirement{
		models.NewRequirement(uuid.New(), fw, models.Definition{ID: "CC1.1", Title: "Integrity", Priority: models.PriorityHigh}, time.Now()),
		models.NewRequirement(uuid.New(), fw, models.Definition{ID: "CC1.2", Title: "Oversight", Priority: models.PriorityHigh}, time.Now()),
	}

	mock.ExpectExec(`INSERT INTO compliance_requirements \(.*\) VALUES \(\$1, .*\$13\), \(\$14, .*\$26\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	st := NewSQL(db, sqldb.Postgres)
	require.NoError(t, st.InsertBatch(context.Background(), reqs))
	require.NoError(t, st.InsertBatch(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreUpdateBatchStopsOnMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	fw, err := models.NewFramework(uuid.New(), "SOC2", models.Descriptor{}, time.Now())
	require.NoError(t, err)
	r := models.NewRequirement(uuid.New(), fw, models.Definition{ID: "CC2.1", Title: "Information", Priority: models.PriorityMedium}, time.Now())

	mock.ExpectExec(`UPDATE compliance_requirements`).WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewSQL(db, sqldb.Postgres).UpdateBatch(context.Background(), []*models.Requirement{r, r})
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
