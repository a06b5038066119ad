package migration

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_IdempotentAndStatus(t *testing.T) {
	ctx := context.Background()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	runner := NewRunner()

	before, err := runner.Status(ctx, db)
	require.NoError(t, err)
	require.Len(t, before, len(Migrations()))
	for _, s := range before {
		assert.False(t, s.Applied, s.Version)
	}

	require.NoError(t, runner.Run(ctx, db))
	require.NoError(t, runner.Run(ctx, db))

	after, err := runner.Status(ctx, db)
	require.NoError(t, err)
	for _, s := range after {
		assert.True(t, s.Applied, s.Version)
		assert.NotNil(t, s.AppliedAt)
	}
	assert.Equal(t, "003", runner.Version())

	var tables int
	require.NoError(t, db.GetContext(ctx, &tables,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('datasets', 'calculations')`))
	assert.Equal(t, 2, tables)
}

func TestRunner_DetectsEditedMigration(t *testing.T) {
	ctx := context.Background()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	require.NoError(t, NewRunner().Run(ctx, db))
	_, err = db.ExecContext(ctx, `UPDATE schema_migrations SET checksum = 'stale' WHERE version = '001'`)
	require.NoError(t, err)

	assert.Error(t, NewRunner().Run(ctx, db))
}
