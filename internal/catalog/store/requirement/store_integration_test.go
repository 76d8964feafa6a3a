//go:build integration

package requirement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	frameworkstore "github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/store/framework"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/testutil/containers"
)

func TestPostgresStoreSuite(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	suite.Run(t, &StoreSuite{setup: func(t *testing.T) fixture {
		ctx := context.Background()
		require.NoError(t, pg.TruncateTables(ctx, "compliance_requirements", "compliance_frameworks"))
		frameworks := frameworkstore.NewSQL(pg.DB.DB, pg.DB.Dialect)
		return fixture{
			store: NewSQL(pg.DB.DB, pg.DB.Dialect),
			addFramework: func(fw *models.Framework) {
				require.NoError(t, frameworks.Create(ctx, fw))
			},
		}
	}})
}
