//go:build integration

package auditlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/testutil/containers"
)

func TestPostgresStoreSuite(t *testing.T) {
	pg := containers.GetManager().GetPostgres(t)
	suite.Run(t, &StoreSuite{newStore: func(t *testing.T) store {
		require.NoError(t, pg.TruncateTables(context.Background(), "audit_log"))
		return NewSQL(pg.DB.DB, pg.DB.Dialect)
	}})
}
