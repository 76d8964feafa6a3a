package sqldb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := `UPDATE t SET a = ?, b = ? WHERE id = ?`
	assert.Equal(t, `UPDATE t SET a = $1, b = $2 WHERE id = $3`, Postgres.Rebind(q))
	assert.Equal(t, q, SQLite.Rebind(q))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect(" PostgreSQL ")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	d, err = ParseDialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	_, err = ParseDialect("mysql")
	assert.Error(t, err)
}

func TestTimestampScan(t *testing.T) {
	want := time.Date(2025, 3, 1, 12, 30, 0, 123000, time.UTC)

	for name, src := range map[string]any{
		"time":    want.In(time.FixedZone("CET", 3600)),
		"micros":  want.UnixMicro(),
		"rfc3339": want.Format(time.RFC3339Nano),
		"bytes":   []byte(want.Format(time.RFC3339Nano)),
	} {
		t.Run(name, func(t *testing.T) {
			var got time.Time
			require.NoError(t, ScanTime(&got).Scan(src))
			assert.True(t, want.Equal(got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	var got time.Time
	assert.Error(t, ScanTime(&got).Scan(3.14))
}

func TestTimeArgKeepsOrderingInSQLite(t *testing.T) {
	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.FixedZone("X", 5*3600))
	late := early.Add(time.Microsecond)
	assert.Less(t, SQLite.TimeArg(early).(int64), SQLite.TimeArg(late).(int64))
	assert.Equal(t, time.UTC, Postgres.TimeArg(early).(time.Time).Location())
}

func TestMigrateSQLiteIsRepeatable(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))

	var applied int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 2, applied)

	for _, table := range []string{"compliance_frameworks", "compliance_requirements", "audit_log"} {
		var n int
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestUniqueViolationFromSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, `CREATE TABLE u (k TEXT UNIQUE)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO u (k) VALUES ('a')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO u (k) VALUES ('a')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(assert.AnError))
}
