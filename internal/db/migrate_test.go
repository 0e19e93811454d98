package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUpDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate_test.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := db.MigrateVersion("migrations")
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, db.MigrateUp("migrations"))

	version, dirty, err = db.MigrateVersion("migrations")
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Idempotent: a second Up is a no-op.
	require.NoError(t, db.MigrateUp("migrations"))

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='grid_runs'`,
	).Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, db.MigrateDown("migrations"))
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='grid_runs'`,
	).Scan(&count))
	assert.Equal(t, 0, count)
}
