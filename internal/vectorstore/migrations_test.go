package vectorstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMigrations(t *testing.T) {
	db, err := openDatabase(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, ApplyMigrations(ctx, db))

	var version string
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&version))
	assert.Equal(t, CurrentSchemaVersion, version)

	// the records table is queryable after migration
	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count))
	assert.Zero(t, count)

	// reapplying is a no-op
	require.NoError(t, ApplyMigrations(ctx, db))
	var versions int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&versions))
	assert.Equal(t, 1, versions)
}
