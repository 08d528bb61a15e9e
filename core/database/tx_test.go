package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestInTx(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT)").Error)

	count := func() int64 {
		var n int64
		require.NoError(t, db.Table("things").Count(&n).Error)
		return n
	}

	t.Run("Commit", func(t *testing.T) {
		err := InTx(context.Background(), db, func(ctx context.Context) error {
			return Conn(ctx, db).Exec("INSERT INTO things (name) VALUES ('a')").Error
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count())
	})

	t.Run("Rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := InTx(context.Background(), db, func(ctx context.Context) error {
			if err := Conn(ctx, db).Exec("INSERT INTO things (name) VALUES ('b')").Error; err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int64(1), count())
	})

	t.Run("Nested Joins Outer", func(t *testing.T) {
		err := db.Transaction(func(tx *gorm.DB) error {
			ctx := WithTx(context.Background(), tx)
			return InTx(ctx, db, func(inner context.Context) error {
				return Conn(inner, db).Exec("INSERT INTO things (name) VALUES ('c')").Error
			})
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), count())
	})
}

func TestAfterCommit(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	t.Run("Runs After Commit", func(t *testing.T) {
		ran := false
		err := InTx(context.Background(), db, func(ctx context.Context) error {
			AfterCommit(ctx, func() { ran = true })
			assert.False(t, ran, "hook must wait for the commit")
			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("Dropped On Rollback", func(t *testing.T) {
		ran := false
		err := InTx(context.Background(), db, func(ctx context.Context) error {
			AfterCommit(ctx, func() { ran = true })
			return errors.New("boom")
		})
		assert.Error(t, err)
		assert.False(t, ran)
	})

	t.Run("Nested Waits For Outer", func(t *testing.T) {
		ran := false
		err := InTx(context.Background(), db, func(outer context.Context) error {
			if err := InTx(outer, db, func(inner context.Context) error {
				AfterCommit(inner, func() { ran = true })
				return nil
			}); err != nil {
				return err
			}
			assert.False(t, ran)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("No Transaction", func(t *testing.T) {
		ran := false
		AfterCommit(context.Background(), func() { ran = true })
		assert.True(t, ran)
	})
}
