package postgres_test

import (
	"context"
	"database/sql"
	"detector/pkg/storage/postgres"
	"testing"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/riverqueue/river/rivertest"
	"github.com/stretchr/testify/require"
)

type testJobArgs struct {
	ItemID string `json:"itemId"`
}

func (testJobArgs) Kind() string { return "test_job" }

func migrateRiver(t *testing.T, pg *postgres.PgSQL) {
	t.Helper()
	migrator, err := rivermigrate.New(riverdatabasesql.New(pg.DB.(*sql.DB)), nil)
	require.NoError(t, err)
	versions := migrator.AllVersions()
	_, err = migrator.Migrate(t.Context(), rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{
		TargetVersion: versions[len(versions)-1].Version,
	})
	require.NoError(t, err)
}

func TestPgSQL_AddJob(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	migrateRiver(t, pg)

	ctx := context.Background()

	t.Run("inside tx", func(t *testing.T) {
		tx, err := pg.Begin(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback() }()

		inserted, err := tx.AddJob(ctx, testJobArgs{ItemID: "a"}, &river.InsertOpts{MaxAttempts: 1})
		require.NoError(t, err)
		require.True(t, inserted)

		rivertest.RequireInsertedTx[*riverdatabasesql.Driver](ctx, t,
			tx.(*postgres.PgSQL).DB.(*sql.Tx),
			&testJobArgs{}, &rivertest.RequireInsertedOpts{MaxAttempts: 1})
	})

	t.Run("outside tx", func(t *testing.T) {
		inserted, err := pg.AddJob(ctx, testJobArgs{ItemID: "b"}, nil)
		require.NoError(t, err)
		require.True(t, inserted)

		rivertest.RequireInserted[*riverdatabasesql.Driver](ctx, t,
			riverdatabasesql.New(pg.DB.(*sql.DB)),
			&testJobArgs{}, nil)
	})

	t.Run("unique duplicate", func(t *testing.T) {
		opts := &river.InsertOpts{UniqueOpts: river.UniqueOpts{ByArgs: true}}

		inserted, err := pg.AddJob(ctx, testJobArgs{ItemID: "c"}, opts)
		require.NoError(t, err)
		require.True(t, inserted)

		inserted, err = pg.AddJob(ctx, testJobArgs{ItemID: "c"}, opts)
		require.NoError(t, err)
		require.False(t, inserted)
	})
}
