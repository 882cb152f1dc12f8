package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDB(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		db, err := OpenDB(DBParams{Path: filepath.Join(t.TempDir(), "test.db"), MaxConns: 2})
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, db.timeout, "default timeout")

		var mode string
		require.NoError(t, db.db.Get(&mode, "PRAGMA journal_mode"))
		assert.Equal(t, "wal", mode)
		var fk int
		require.NoError(t, db.db.Get(&fk, "PRAGMA foreign_keys"))
		assert.Equal(t, 1, fk)
		require.NoError(t, db.Close())
	})

	t.Run("invalid path", func(t *testing.T) {
		db, err := OpenDB(DBParams{Path: "/invalid/path/that/does/not/exist/test.db"})
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDB_SubmitTimeout(t *testing.T) {
	db, err := OpenDB(DBParams{Path: filepath.Join(t.TempDir(), "test.db"), MaxConns: 1, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	defer db.Close()

	var completed atomic.Bool
	err = db.submit(context.Background(), "slow op", func(ctx context.Context, q sqlx.ExtContext) error {
		time.Sleep(200 * time.Millisecond)
		completed.Store(true)
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, err.Error(), "slow op")
	assert.False(t, completed.Load())

	// abandoned work still runs to completion
	assert.Eventually(t, completed.Load, time.Second, 10*time.Millisecond)
}

func TestDB_SubmitCanceled(t *testing.T) {
	db, err := OpenDB(DBParams{Path: filepath.Join(t.TempDir(), "test.db"), MaxConns: 1, Timeout: time.Second})
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = db.submit(ctx, "op", func(ctx context.Context, q sqlx.ExtContext) error {
		time.Sleep(50 * time.Millisecond)
		return ctx.Err() // work context is never canceled
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDB_SubmitBounded(t *testing.T) {
	db, err := OpenDB(DBParams{Path: filepath.Join(t.TempDir(), "test.db"), MaxConns: 2, Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer db.Close()

	var active, maxActive atomic.Int32
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			errs <- db.submit(context.Background(), "op", func(ctx context.Context, q sqlx.ExtContext) error {
				n := active.Add(1)
				for {
					m := maxActive.Load()
					if n <= m || maxActive.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				active.Add(-1)
				return nil
			})
		}()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-errs)
	}
	assert.LessOrEqual(t, maxActive.Load(), int32(2))
}

func TestDB_InTxRollback(t *testing.T) {
	db, err := OpenDB(DBParams{Path: filepath.Join(t.TempDir(), "test.db"), MaxConns: 2, Timeout: time.Second})
	require.NoError(t, err)
	defer db.Close()
	_, err = db.db.Exec("CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	err = db.inTx(context.Background(), "insert", func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO t (v) VALUES (1)"); err != nil {
			return err
		}
		return errors.New("failed after insert")
	})
	require.EqualError(t, err, "failed after insert")

	err = db.inTx(context.Background(), "insert", func(ctx context.Context, tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO t (v) VALUES (2)")
		return err
	})
	require.NoError(t, err)

	var vals []int
	require.NoError(t, db.db.Select(&vals, "SELECT v FROM t"))
	assert.Equal(t, []int{2}, vals)
}
