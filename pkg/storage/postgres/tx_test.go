package postgres_test

import (
	"context"
	"database/sql"
	"detector/pkg/domain"
	"detector/pkg/storage"
	"detector/pkg/storage/postgres"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func waitingItem(userID domain.UserID, name string) domain.Item {
	return domain.Item{
		UserID:    userID,
		Filename:  name,
		MediaType: "image/png",
		Size:      10,
		Status:    domain.ItemStatusWaiting,
	}
}

func TestPgSQL_Transactions(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	userID := domain.UserID(uuid.New())

	t.Run("begin twice", func(t *testing.T) {
		tx, err := pg.Begin(ctx)
		require.NoError(t, err)

		inner, ok := tx.(*postgres.PgSQL)
		require.True(t, ok)
		_, isTx := inner.DB.(*sql.Tx)
		require.True(t, isTx)

		_, err = inner.Begin(ctx)
		require.ErrorIs(t, err, storage.ErrAlreadyInTx)

		require.NoError(t, tx.Rollback())
	})

	t.Run("commit and rollback outside tx", func(t *testing.T) {
		require.ErrorIs(t, pg.Commit(), storage.ErrNotInTx)
		require.ErrorIs(t, pg.Rollback(), storage.ErrNotInTx)
	})

	t.Run("commit persists", func(t *testing.T) {
		tx, err := pg.Begin(ctx)
		require.NoError(t, err)

		item, err := tx.StoreItem(ctx, waitingItem(userID, "commit.png"))
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		got, err := pg.GetItem(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
	})

	t.Run("rollback discards", func(t *testing.T) {
		tx, err := pg.Begin(ctx)
		require.NoError(t, err)

		item, err := tx.StoreItem(ctx, waitingItem(userID, "rollback.png"))
		require.NoError(t, err)
		require.NoError(t, tx.Rollback())

		got, err := pg.GetItem(ctx, item.ID)
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("with tx", func(t *testing.T) {
		var committed, rolledBack *domain.Item
		err := pg.WithTx(ctx, func(s storage.AllStorage) error {
			var err error
			committed, err = s.StoreItem(ctx, waitingItem(userID, "ok.png"))

			return err
		})
		require.NoError(t, err)

		boom := errors.New("boom")
		err = pg.WithTx(ctx, func(s storage.AllStorage) error {
			var err error
			rolledBack, err = s.StoreItem(ctx, waitingItem(userID, "fail.png"))
			require.NoError(t, err)

			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := pg.GetItem(ctx, committed.ID)
		require.NoError(t, err)
		require.NotNil(t, got)

		got, err = pg.GetItem(ctx, rolledBack.ID)
		require.NoError(t, err)
		require.Nil(t, got)
	})
}
