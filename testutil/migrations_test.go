package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleet-ledger/migrations"
	"github.com/pkordes/fleet-ledger/testutil"
)

var ledgerTables = []string{"trip_rows", "vehicle_rows"}

// TestMigrations applies every migration to a clean schema, checks the
// ledger tables and the ordering index, then rolls everything back.
// Skipped when TEST_DATABASE_URL is not set.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := migrations.NewProvider(db)
	require.NoError(t, err)

	// The repo tests may already have migrated this database.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	applied, err := migrations.Up(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(ledgerTables), applied)

	for _, table := range ledgerTables {
		assert.True(t, tableExists(t, db, table), "expected table %q", table)
	}
	assert.True(t, indexExists(t, db, "trip_rows_position_idx"), "trip order must be unique")

	applied, err = migrations.Up(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, applied, "second Up is a no-op")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err)
	for _, table := range ledgerTables {
		assert.False(t, tableExists(t, db, table), "expected table %q to be dropped", table)
	}
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}

func indexExists(t *testing.T, db *sql.DB, index string) bool {
	t.Helper()
	const q = `SELECT EXISTS (SELECT 1 FROM pg_indexes WHERE schemaname = 'public' AND indexname = $1)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, index).Scan(&exists))
	return exists
}
